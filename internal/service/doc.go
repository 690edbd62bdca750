// Package service implements the user account use cases: sign up, login,
// status transitions, profile edits and lookups. It coordinates the user
// store, the token issuer, the password hasher and the optional login
// limiter, and it is the only layer that decides which store outcomes count
// as failures.
package service
