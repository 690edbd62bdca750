// Package api exposes the user service over HTTP. Handlers decode and
// validate JSON requests, call service.UserService and translate its
// sentinel errors into status codes and client-safe messages.
//
// Subpackage shared holds the response helpers and context keys;
// subpackage middleware holds authentication, tracing and request logging.
package api
