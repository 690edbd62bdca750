package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user without nickname", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("test@example.com", "password1234567", "")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "password1234567", user.Password)
		assert.Empty(t, user.Nickname)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("valid user with nickname", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("test@example.com", "password1234567", "kuit")
		require.NoError(t, err)
		assert.Equal(t, "kuit", user.Nickname)
	})

	tests := []struct {
		name     string
		email    string
		password string
		nickname string
		wantErr  error
	}{
		{"empty email", "", "password1234567", "", ErrEmptyEmail},
		{"invalid email", "invalidemail", "password1234567", "", ErrInvalidEmail},
		{"display name email", "Bob <bob@example.com>", "password1234567", "", ErrInvalidEmail},
		{"empty password", "test@example.com", "", "", ErrEmptyPassword},
		{"short password", "test@example.com", "short", "", ErrPasswordTooShort},
		{"long password", "test@example.com", strings.Repeat("a", 73), "", ErrPasswordTooLong},
		{"long nickname", "test@example.com", "password1234567", strings.Repeat("n", 26), ErrNicknameTooLong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tc.email, tc.password, tc.nickname)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := func() User {
		return User{
			ID:             uuid.New(),
			Email:          "test@example.com",
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			Status:         UserStatusDormant,
		}
	}

	t.Run("stored user with hash only", func(t *testing.T) {
		t.Parallel()
		u := valid()
		assert.NoError(t, u.Validate())
	})

	t.Run("nil id", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.ID = uuid.Nil
		assert.ErrorIs(t, u.Validate(), ErrEmptyUserID)
	})

	t.Run("no password and no hash", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.HashedPassword = ""
		assert.ErrorIs(t, u.Validate(), ErrEmptyPassword)
	})

	t.Run("bad phone number", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.PhoneNumber = "call me"
		assert.ErrorIs(t, u.Validate(), ErrInvalidPhoneNumber)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		u := valid()
		u.Status = "banned"
		assert.ErrorIs(t, u.Validate(), ErrInvalidUserStatus)
	})
}

func TestValidatePhoneNumber(t *testing.T) {
	t.Parallel()

	valid := []string{"010-1234-5678", "01012345678", "+821012345678", "555-123-4567"}
	for _, phone := range valid {
		assert.NoError(t, ValidatePhoneNumber(phone), phone)
	}

	assert.ErrorIs(t, ValidatePhoneNumber(""), ErrEmptyPhoneNumber)
	assert.NoError(t, ValidatePhoneNumber("+1234567890123456789"))
	invalid := []string{"12345", "010-1234-567a", "-0101234567", "0101234567-", "++821012345678", "+12345678901234567890"}
	for _, phone := range invalid {
		assert.ErrorIs(t, ValidatePhoneNumber(phone), ErrInvalidPhoneNumber, phone)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("neo@example.com"))
	assert.ErrorIs(t, ValidateEmail(""), ErrEmptyEmail)
	assert.ErrorIs(t, ValidateEmail("Neo <neo@example.com>"), ErrInvalidEmail)

	local := strings.Repeat("a", 64)
	atLimit := local + "@" + strings.Join([]string{
		strings.Repeat("b", 63), strings.Repeat("c", 63), strings.Repeat("d", 57),
	}, ".") + ".com"
	require.Len(t, atLimit, 254)
	assert.NoError(t, ValidateEmail(atLimit))

	tooLong := local + "@" + strings.Join([]string{
		strings.Repeat("b", 63), strings.Repeat("c", 63), strings.Repeat("d", 63), strings.Repeat("e", 20),
	}, ".") + ".com"
	assert.Greater(t, len(tooLong), 254)
	assert.ErrorIs(t, ValidateEmail(tooLong), ErrInvalidEmail)
}

func TestValidateNickname(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateNickname("쿠잇"))
	assert.NoError(t, ValidateNickname(strings.Repeat("가", 25)))
	assert.ErrorIs(t, ValidateNickname(""), ErrEmptyNickname)
	assert.ErrorIs(t, ValidateNickname(strings.Repeat("가", 26)), ErrNicknameTooLong)
}

func TestParseUserStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"active", "dormant", "deleted"} {
		status, err := ParseUserStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, UserStatus(raw), status)
	}

	_, err := ParseUserStatus("ACTIVE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidUserStatus)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "status", vErr.Field)
}

func TestValidationErrorsNameField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err   error
		field string
	}{
		{ValidateEmail("nope"), "email"},
		{ValidateNickname(""), "nickname"},
		{ValidatePhoneNumber("12"), "phone_number"},
	}

	for _, tc := range tests {
		require.Error(t, tc.err)
		assert.ErrorIs(t, tc.err, ErrValidation)

		var vErr *ValidationError
		require.True(t, errors.As(tc.err, &vErr))
		assert.Equal(t, tc.field, vErr.Field)
	}
}
