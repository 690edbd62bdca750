package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/account-api/internal/domain"
)

// SignUpRequest defines the payload for the registration endpoint.
type SignUpRequest struct {
	Email    string `json:"email"              validate:"required,max=254,email"`
	Password string `json:"password"           validate:"required,min=12,max=72"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=25"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,max=254,email"`
	Password string `json:"password" validate:"required"`
}

// ModifyNicknameRequest defines the payload for PATCH /users/{id}/nickname.
type ModifyNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,max=25"`
}

// ModifyPhoneNumberRequest defines the payload for PATCH /users/{id}/phone-number.
// The format itself is checked by the domain rules.
type ModifyPhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
}

// AuthResponse is returned by sign up and login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
	// ExpiresAt is the RFC 3339 expiry of Token.
	ExpiresAt string `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Nickname    string    `json:"nickname,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserListResponse is returned by GET /users.
type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// UserIDResponse is returned by the email lookup.
type UserIDResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		PhoneNumber: u.PhoneNumber,
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func usersToResponse(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}
