package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/mocks"
	"github.com/phrazzld/account-api/internal/platform/metrics"
	"github.com/phrazzld/account-api/internal/service"
	"github.com/phrazzld/account-api/internal/service/auth"
)

const validToken = "valid-token"

// newTestApp builds an application around a mocked user service. Requests
// bearing validToken authenticate as userID.
func newTestApp(t *testing.T, userID uuid.UUID) (*application, *mocks.UserService) {
	t.Helper()

	svc := &mocks.UserService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != validToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID}, nil
		},
	}

	reg := prometheus.NewRegistry()
	app := &application{
		config: &config.Config{
			Server: config.ServerConfig{ShutdownTimeoutSeconds: 1},
			CORS:   config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}},
		},
		logger:      slog.New(slog.DiscardHandler),
		userService: svc,
		jwtService:  jwt,
		registry:    reg,
		httpMetrics: metrics.NewHTTPMetrics(reg),
	}
	return app, svc
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, uuid.New())

	rr := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))
}

func TestRouter_SignUpIsPublic(t *testing.T) {
	t.Parallel()
	app, svc := newTestApp(t, uuid.New())

	newID := uuid.New()
	svc.On("SignUp", mock.Anything, service.SignUpInput{
		Email:    "neo@example.com",
		Password: "correct-horse-battery",
	}).Return(&service.AuthResult{UserID: newID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()

	body := `{"email":"neo@example.com","password":"correct-horse-battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, newID.String(), resp["user_id"])
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	app, _ := newTestApp(t, userID)
	router := app.setupRouter()

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users/lookup?email=neo@example.com"},
		{http.MethodPatch, "/api/users/" + userID.String() + "/dormant"},
		{http.MethodPatch, "/api/users/" + userID.String() + "/deleted"},
		{http.MethodPatch, "/api/users/" + userID.String() + "/nickname"},
		{http.MethodPatch, "/api/users/" + userID.String() + "/phone-number"},
	}
	for _, rt := range routes {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	app, svc := newTestApp(t, userID)

	svc.On("GetUser", mock.Anything, userID).Return(&domain.User{
		ID:     userID,
		Email:  "neo@example.com",
		Status: domain.UserStatusActive,
	}, nil).Once()
	svc.On("MarkDormant", mock.Anything, userID).Return(nil).Once()

	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/users/"+userID.String()+"/dormant", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, uuid.New())

	req := httptest.NewRequest(http.MethodOptions, "/api/users/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, uuid.New())
	router := app.setupRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `account_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
