package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/mocks"
	"github.com/phrazzld/account-api/internal/service"
	"github.com/phrazzld/account-api/internal/store"
)

// newTestRouter mounts the handler the way the server does, authenticating
// every protected request as userID.
func newTestRouter(t *testing.T, userID uuid.UUID) (*mocks.UserService, http.Handler) {
	t.Helper()

	svc := &mocks.UserService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	h := NewUserHandler(svc, nil)
	r := chi.NewRouter()
	r.Post("/users", h.SignUp)
	r.Post("/users/login", h.Login)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if userID != uuid.Nil {
					req = req.WithContext(shared.WithUserID(req.Context(), userID))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/users", h.ListUsers)
		r.Get("/users/me", h.GetMe)
		r.Get("/users/lookup", h.LookupUserID)
		r.Patch("/users/{id}/dormant", h.MarkDormant)
		r.Patch("/users/{id}/deleted", h.MarkDeleted)
		r.Patch("/users/{id}/nickname", h.ModifyNickname)
		r.Patch("/users/{id}/phone-number", h.ModifyPhoneNumber)
	})
	return svc, r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Error
}

func TestUserHandler_SignUp(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, uuid.Nil)
		svc.On("SignUp", mock.Anything, service.SignUpInput{
			Email:    "neo@example.com",
			Password: "correct-horse-battery",
			Nickname: "neo",
		}).Return(&service.AuthResult{UserID: userID, Token: "tok", ExpiresAt: expiresAt}, nil).Once()

		rr := doRequest(t, h, http.MethodPost, "/users", SignUpRequest{
			Email:    "neo@example.com",
			Password: "correct-horse-battery",
			Nickname: "neo",
		})

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "2026-01-02T03:04:05Z", resp.ExpiresAt)
	})

	t.Run("password too short", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, uuid.Nil)

		rr := doRequest(t, h, http.MethodPost, "/users", SignUpRequest{
			Email:    "neo@example.com",
			Password: "short",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid password: too short", decodeError(t, rr))
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, uuid.Nil)

		rr := doRequest(t, h, http.MethodPost, "/users", `{"email":"neo@example.com","admin":true}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, rr))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, uuid.Nil)
		svc.On("SignUp", mock.Anything, mock.Anything).Return(nil, service.ErrDuplicateEmail).Once()

		rr := doRequest(t, h, http.MethodPost, "/users", SignUpRequest{
			Email:    "neo@example.com",
			Password: "correct-horse-battery",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Email already exists", decodeError(t, rr))
	})

	t.Run("duplicate nickname", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, uuid.Nil)
		svc.On("SignUp", mock.Anything, mock.Anything).Return(nil, service.ErrDuplicateNickname).Once()

		rr := doRequest(t, h, http.MethodPost, "/users", SignUpRequest{
			Email:    "neo@example.com",
			Password: "correct-horse-battery",
			Nickname: "neo",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Nickname already exists", decodeError(t, rr))
	})
}

func TestUserHandler_Login(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, uuid.Nil)
		svc.On("Login", mock.Anything, "neo@example.com", "correct-horse-battery").
			Return(&service.AuthResult{UserID: userID, Token: "tok", ExpiresAt: time.Now()}, nil).Once()

		rr := doRequest(t, h, http.MethodPost, "/users/login", LoginRequest{
			Email:    "neo@example.com",
			Password: "correct-horse-battery",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "tok", resp.Token)
	})

	failures := []struct {
		name string
		err  error
	}{
		{"wrong password", service.ErrPasswordMismatch},
		{"unknown email", fmt.Errorf("resolve user: %w", store.ErrUserNotFound)},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, h := newTestRouter(t, uuid.Nil)
			svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			rr := doRequest(t, h, http.MethodPost, "/users/login", LoginRequest{
				Email:    "neo@example.com",
				Password: "nope",
			})

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Invalid credentials", decodeError(t, rr))
		})
	}

	t.Run("throttled", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, uuid.Nil)
		svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.TooManyAttemptsError{RetryAfter: 90 * time.Second}).Once()

		rr := doRequest(t, h, http.MethodPost, "/users/login", LoginRequest{
			Email:    "neo@example.com",
			Password: "nope",
		})

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "90", rr.Header().Get("Retry-After"))
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, uuid.Nil)

		rr := doRequest(t, h, http.MethodPost, "/users/login", LoginRequest{Password: "x"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid email: required field", decodeError(t, rr))
	})
}

func TestUserHandler_StatusChanges(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name   string
		path   string
		method string
	}{
		{"dormant", "/users/%s/dormant", "MarkDormant"},
		{"deleted", "/users/%s/deleted", "MarkDeleted"},
	}

	for _, tc := range tests {
		t.Run(tc.name+" self", func(t *testing.T) {
			t.Parallel()
			svc, h := newTestRouter(t, userID)
			svc.On(tc.method, mock.Anything, userID).Return(nil).Once()

			rr := doRequest(t, h, http.MethodPatch, fmt.Sprintf(tc.path, userID), nil)
			assert.Equal(t, http.StatusNoContent, rr.Code)
		})

		t.Run(tc.name+" other account", func(t *testing.T) {
			t.Parallel()
			_, h := newTestRouter(t, userID)

			rr := doRequest(t, h, http.MethodPatch, fmt.Sprintf(tc.path, uuid.New()), nil)
			assert.Equal(t, http.StatusForbidden, rr.Code)
		})

		t.Run(tc.name+" update failed", func(t *testing.T) {
			t.Parallel()
			svc, h := newTestRouter(t, userID)
			svc.On(tc.method, mock.Anything, userID).Return(service.ErrUpdateFailed).Once()

			rr := doRequest(t, h, http.MethodPatch, fmt.Sprintf(tc.path, userID), nil)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, "Failed to update user", decodeError(t, rr))
		})
	}

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, userID)

		rr := doRequest(t, h, http.MethodPatch, "/users/not-a-uuid/dormant", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid id", decodeError(t, rr))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, uuid.Nil)

		rr := doRequest(t, h, http.MethodPatch, fmt.Sprintf("/users/%s/dormant", userID), nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_ModifyNickname(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	path := fmt.Sprintf("/users/%s/nickname", userID)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ModifyNickname", mock.Anything, userID, "trinity").Return(nil).Once()

		rr := doRequest(t, h, http.MethodPatch, path, ModifyNicknameRequest{Nickname: "trinity"})
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ModifyNickname", mock.Anything, userID, "trinity").Return(service.ErrDuplicateNickname).Once()

		rr := doRequest(t, h, http.MethodPatch, path, ModifyNicknameRequest{Nickname: "trinity"})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Nickname already exists", decodeError(t, rr))
	})

	t.Run("missing nickname", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, userID)

		rr := doRequest(t, h, http.MethodPatch, path, ModifyNicknameRequest{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid nickname: required field", decodeError(t, rr))
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, userID)

		rr := doRequest(t, h, http.MethodPatch, path, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, rr))
	})
}

func TestUserHandler_ModifyPhoneNumber(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	path := fmt.Sprintf("/users/%s/phone-number", userID)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ModifyPhoneNumber", mock.Anything, userID, "010-1234-5678").Return(nil).Once()

		rr := doRequest(t, h, http.MethodPatch, path, ModifyPhoneNumberRequest{PhoneNumber: "010-1234-5678"})
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ModifyPhoneNumber", mock.Anything, userID, "12ab").
			Return(domain.NewValidationError("phone_number", "is invalid", domain.ErrInvalidPhoneNumber)).Once()

		rr := doRequest(t, h, http.MethodPatch, path, ModifyPhoneNumberRequest{PhoneNumber: "12ab"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid phone_number", decodeError(t, rr))
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ModifyPhoneNumber", mock.Anything, userID, "010-1234-5678").
			Return(service.ErrDuplicatePhoneNumber).Once()

		rr := doRequest(t, h, http.MethodPatch, path, ModifyPhoneNumberRequest{PhoneNumber: "010-1234-5678"})
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Phone number already exists", decodeError(t, rr))
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("passes filters through", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		users := []*domain.User{
			{ID: uuid.New(), Email: "a@example.com", Nickname: "neo", Status: domain.UserStatusDormant},
		}
		svc.On("ListUsers", mock.Anything, service.ListUsersParams{
			Nickname: "ne",
			Email:    "example",
			Status:   "dormant",
			Limit:    10,
			Offset:   20,
		}).Return(users, nil).Once()

		rr := doRequest(t, h, http.MethodGet, "/users?nickname=ne&email=example&status=dormant&limit=10&offset=20", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp UserListResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp.Users, 1)
		assert.Equal(t, "neo", resp.Users[0].Nickname)
		assert.Equal(t, "dormant", resp.Users[0].Status)
		assert.Equal(t, 10, resp.Limit)
		assert.Equal(t, 20, resp.Offset)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("ListUsers", mock.Anything, service.ListUsersParams{}).Return([]*domain.User{}, nil).Once()

		rr := doRequest(t, h, http.MethodGet, "/users", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"users":[],"limit":%d,"offset":0}`, service.DefaultListLimit), rr.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, userID)

		rr := doRequest(t, h, http.MethodGet, "/users?limit=ten", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid limit", decodeError(t, rr))
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		_, statusErr := domain.ParseUserStatus("banned")
		svc.On("ListUsers", mock.Anything, mock.Anything).Return(nil, statusErr).Once()

		rr := doRequest(t, h, http.MethodGet, "/users?status=banned", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid status", decodeError(t, rr))
	})
}

func TestUserHandler_GetMe(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("GetUser", mock.Anything, userID).Return(&domain.User{
			ID:             userID,
			Email:          "neo@example.com",
			HashedPassword: "secret-hash",
			Status:         domain.UserStatusActive,
		}, nil).Once()

		rr := doRequest(t, h, http.MethodGet, "/users/me", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret-hash")
		var resp UserResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.ID)
		assert.Equal(t, "active", resp.Status)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("GetUser", mock.Anything, userID).Return(nil, store.ErrUserNotFound).Once()

		rr := doRequest(t, h, http.MethodGet, "/users/me", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", decodeError(t, rr))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, uuid.Nil)

		rr := doRequest(t, h, http.MethodGet, "/users/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestUserHandler_LookupUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		found := uuid.New()
		svc.On("GetUserIDByEmail", mock.Anything, "neo@example.com").Return(found, nil).Once()

		rr := doRequest(t, h, http.MethodGet, "/users/lookup?email=neo@example.com", nil)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp UserIDResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, found, resp.UserID)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		_, h := newTestRouter(t, userID)

		rr := doRequest(t, h, http.MethodGet, "/users/lookup", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid email", decodeError(t, rr))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc, h := newTestRouter(t, userID)
		svc.On("GetUserIDByEmail", mock.Anything, "ghost@example.com").Return(uuid.Nil, store.ErrUserNotFound).Once()

		rr := doRequest(t, h, http.MethodGet, "/users/lookup?email=ghost@example.com", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
