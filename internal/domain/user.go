package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID        = errors.New("user ID cannot be empty")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmptyEmail         = errors.New("email cannot be empty")
	ErrPasswordTooShort   = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong    = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrEmptyNickname      = errors.New("nickname cannot be empty")
	ErrNicknameTooLong    = errors.New("nickname must be at most 25 characters long")
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	ErrEmptyPhoneNumber   = errors.New("phone number cannot be empty")
	ErrInvalidUserStatus  = errors.New("invalid user status")
)

const (
	minPasswordLength = 12
	maxPasswordLength = 72 // bcrypt ignores bytes past 72
	maxNicknameLength = 25

	// Column widths of users.email and users.phone_number.
	maxEmailLength       = 254
	maxPhoneNumberLength = 20
)

var phoneNumberPattern = regexp.MustCompile(`^\+?[0-9][0-9-]{7,18}[0-9]$`)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	// UserStatusActive is the state of every newly registered account.
	UserStatusActive UserStatus = "active"
	// UserStatusDormant marks an account that has gone quiet.
	UserStatusDormant UserStatus = "dormant"
	// UserStatusDeleted marks a soft-deleted account. The row is kept.
	UserStatusDeleted UserStatus = "deleted"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusDormant, UserStatusDeleted:
		return true
	}
	return false
}

// ParseUserStatus converts a raw string into a UserStatus.
func ParseUserStatus(raw string) (UserStatus, error) {
	status := UserStatus(raw)
	if !status.Valid() {
		return "", NewValidationError("status", "must be one of active, dormant, deleted", ErrInvalidUserStatus)
	}
	return status, nil
}

// User represents a registered account.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Nickname       string     `json:"nickname,omitempty"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	Password       string     `json:"-"` // Plaintext password, only set during signup
	HashedPassword string     `json:"-"`
	Status         UserStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewUser creates a new active User with the given email, password and optional nickname.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, password, nickname string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Nickname:  nickname,
		Password:  password,
		Status:    UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return fieldError("id", ErrEmptyUserID)
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.Password != "" {
		if len(u.Password) < minPasswordLength {
			return fieldError("password", ErrPasswordTooShort)
		}
		if len(u.Password) > maxPasswordLength {
			return fieldError("password", ErrPasswordTooLong)
		}
	} else if u.HashedPassword == "" {
		return fieldError("password", ErrEmptyPassword)
	}

	if u.Nickname != "" {
		if err := ValidateNickname(u.Nickname); err != nil {
			return err
		}
	}

	if u.PhoneNumber != "" {
		if err := ValidatePhoneNumber(u.PhoneNumber); err != nil {
			return err
		}
	}

	if !u.Status.Valid() {
		return fieldError("status", ErrInvalidUserStatus)
	}

	return nil
}

// ValidateEmail checks that email is present, at most 254 bytes, and parses
// as a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return fieldError("email", ErrEmptyEmail)
	}
	if len(email) > maxEmailLength {
		return fieldError("email", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldError("email", ErrInvalidEmail)
	}
	return nil
}

// ValidateNickname checks nickname length in runes.
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return fieldError("nickname", ErrEmptyNickname)
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return fieldError("nickname", ErrNicknameTooLong)
	}
	return nil
}

// ValidatePhoneNumber checks the phone number against the accepted pattern:
// digits and dashes, optional leading plus, 9 to 20 characters in total.
func ValidatePhoneNumber(phoneNumber string) error {
	if phoneNumber == "" {
		return fieldError("phone_number", ErrEmptyPhoneNumber)
	}
	if len(phoneNumber) > maxPhoneNumberLength || !phoneNumberPattern.MatchString(phoneNumber) {
		return fieldError("phone_number", ErrInvalidPhoneNumber)
	}
	return nil
}

// fieldError wraps a validation sentinel with the name of the offending field.
func fieldError(field string, err error) error {
	return NewValidationError(field, "is invalid", err)
}

// UserFilter narrows a user listing. Empty fields do not filter.
type UserFilter struct {
	Nickname string
	Email    string
	Status   UserStatus
	Limit    int
	Offset   int
}
