package store

import (
	"errors"
	"fmt"
)

// Base errors shared by every store implementation. Entity-specific errors
// below wrap one of these, so callers can match either level with errors.Is.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity rejects a write before it reaches the database.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed means an update did not touch exactly one row.
	ErrUpdateFailed = errors.New("update failed")

	ErrTransactionFailed = errors.New("transaction failed")
)

var (
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrEmailExists       = fmt.Errorf("%w: email", ErrDuplicate)
	ErrNicknameExists    = fmt.Errorf("%w: nickname", ErrDuplicate)
	ErrPhoneNumberExists = fmt.Errorf("%w: phone number", ErrDuplicate)
)

// IsNotFoundError reports whether err is in the not-found family.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any unique-field conflict.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
