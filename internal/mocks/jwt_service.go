package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/account-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// CreateTokenFn allows test cases to mock the CreateToken behavior
	CreateTokenFn func(ctx context.Context, email string, userID uuid.UUID) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	Err         error
	ValidateErr error
	Claims      *auth.Claims
	Lifetime    time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

// CreateToken implements auth.JWTService
func (m *MockJWTService) CreateToken(ctx context.Context, email string, userID uuid.UUID) (string, error) {
	if m.CreateTokenFn != nil {
		return m.CreateTokenFn(ctx, email, userID)
	}
	return m.Token, m.Err
}

// ValidateToken implements auth.JWTService
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// TokenLifetime implements auth.JWTService. Zero means one hour.
func (m *MockJWTService) TokenLifetime() time.Duration {
	if m.Lifetime == 0 {
		return time.Hour
	}
	return m.Lifetime
}
