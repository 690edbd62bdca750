package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/account-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must carry a HashedPassword.
	// Returns ErrEmailExists, ErrNicknameExists or ErrPhoneNumberExists when
	// a unique column collides.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetIDByEmail resolves the ID of a non-deleted user by email.
	// Returns ErrUserNotFound if no such user exists.
	GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error)

	// GetPasswordHash returns the stored password hash for the user.
	// Returns ErrUserNotFound if the user does not exist.
	GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error)

	// HasDuplicateEmail reports whether any user already uses the email.
	HasDuplicateEmail(ctx context.Context, email string) (bool, error)

	// HasDuplicateNickname reports whether any user already uses the nickname.
	HasDuplicateNickname(ctx context.Context, nickname string) (bool, error)

	// HasDuplicatePhoneNumber reports whether any user already uses the phone number.
	HasDuplicatePhoneNumber(ctx context.Context, phoneNumber string) (bool, error)

	// UpdateStatus sets the user's status and returns the number of affected rows.
	// This and the other update methods leave soft-deleted users untouched, so
	// those report zero rows.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (int64, error)

	// UpdateNickname sets the user's nickname and returns the number of affected rows.
	UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) (int64, error)

	// UpdatePhoneNumber sets the user's phone number and returns the number of affected rows.
	UpdatePhoneNumber(ctx context.Context, id uuid.UUID, phoneNumber string) (int64, error)

	// List returns users matching the filter ordered by creation time.
	// Nickname and email match as case-insensitive substrings, status matches exactly.
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
