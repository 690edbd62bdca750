package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/account-api/internal/store"
)

// Sentinel errors returned by UserService. Callers check them with errors.Is;
// the API layer maps them to HTTP status codes.
var (
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateNickname indicates the nickname is already taken.
	ErrDuplicateNickname = errors.New("nickname already in use")

	// ErrDuplicatePhoneNumber indicates the phone number is already registered.
	ErrDuplicatePhoneNumber = errors.New("phone number already in use")

	// ErrPasswordMismatch indicates the supplied password does not match the stored hash.
	ErrPasswordMismatch = errors.New("password does not match")

	// ErrUpdateFailed indicates a single-row update did not touch exactly one row.
	ErrUpdateFailed = fmt.Errorf("%w: user", store.ErrUpdateFailed)

	// ErrTooManyAttempts indicates login is temporarily blocked for the account.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// UserServiceError carries the failing operation alongside the cause.
type UserServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
func NewUserServiceError(operation, message string, err error) *UserServiceError {
	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TooManyAttemptsError reports a throttled login and when it may be retried.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrTooManyAttempts, e.RetryAfter)
}

// Is makes errors.Is(err, ErrTooManyAttempts) match.
func (e *TooManyAttemptsError) Is(target error) bool {
	return target == ErrTooManyAttempts
}
