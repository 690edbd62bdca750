package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenTypeAccess is the type claim carried by access tokens.
const TokenTypeAccess = "access"

// JWTService defines operations for managing JWT access tokens.
type JWTService interface {
	// CreateToken signs an access token for the user identified by email and userID.
	CreateToken(ctx context.Context, email string, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime returns how long newly created tokens stay valid.
	TokenLifetime() time.Duration
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Email is the address the user authenticated with.
	Email string `json:"email,omitempty"`

	// TokenType indicates the purpose of the token.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
