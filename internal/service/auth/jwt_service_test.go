package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/account-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, secret string, lifetime time.Duration, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(secret, lifetime, fixedClock(now))
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, svc.TokenLifetime())

	_, err = NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 15})
	assert.ErrorIs(t, err, ErrWeakSecret)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestCreateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()
	svc := newTestService(t, testSecret, lifetime, fixedTime)

	token, err := svc.CreateToken(context.Background(), "user@example.com", userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	again, err := svc.CreateToken(context.Background(), "user@example.com", userID)
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "each token carries a unique jti")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()

	signRaw := func(t *testing.T, claims jwtCustomClaims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		now     time.Time
		wantErr error
	}{
		{
			name: "valid token",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, lifetime, fixedTime).
					CreateToken(context.Background(), "a@example.com", userID)
				require.NoError(t, err)
				return tok
			},
			now: fixedTime.Add(30 * time.Minute),
		},
		{
			name: "within clock skew after expiry",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, lifetime, fixedTime).
					CreateToken(context.Background(), "a@example.com", userID)
				require.NoError(t, err)
				return tok
			},
			now: fixedTime.Add(lifetime + time.Minute),
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, testSecret, lifetime, fixedTime).
					CreateToken(context.Background(), "a@example.com", userID)
				require.NoError(t, err)
				return tok
			},
			now:     fixedTime.Add(lifetime + 5*time.Minute),
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				return signRaw(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			now:     fixedTime,
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "wrong signature",
			token: func(t *testing.T) string {
				tok, err := newTestService(t, wrongSecret, lifetime, fixedTime).
					CreateToken(context.Background(), "a@example.com", userID)
				require.NoError(t, err)
				return tok
			},
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return signRaw(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS512, []byte(testSecret))
			},
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong token type",
			token: func(t *testing.T) string {
				return signRaw(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			now:     fixedTime,
			wantErr: ErrWrongTokenType,
		},
		{
			name: "missing user id",
			token: func(t *testing.T) string {
				return signRaw(t, jwtCustomClaims{
					TokenType: TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(t *testing.T) string { return "not.a.jwt" },
			now:     fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty token",
			token:   func(t *testing.T) string { return "" },
			now:     fixedTime,
			wantErr: ErrMissingToken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			token := tc.token(t)
			validator := newTestService(t, testSecret, lifetime, tc.now)

			claims, err := validator.ValidateToken(context.Background(), token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
