// Package auth issues and validates access tokens and hashes passwords.
package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrWrongTokenType indicates a token of a different type was presented
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWeakSecret is returned when the signing secret is shorter than 32 characters
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")

	// ErrPasswordMismatch is returned by PasswordHasher.Compare when the password is wrong
	ErrPasswordMismatch = errors.New("password does not match")
)
