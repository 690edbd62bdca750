package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/service"
	"github.com/phrazzld/account-api/internal/store"
)

// UserHandler serves the /users endpoints.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler. If logger is nil, slog.Default() is used.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// SignUp handles POST /users.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SignUpRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.userService.SignUp(r.Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	log.Info("user signed up", slog.String("user_id", result.UserID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, authResponse(result))
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, service.ErrPasswordMismatch) {
			err = errors.Join(errInvalidCredentials, err)
		}
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	log.Info("user logged in", slog.String("user_id", result.UserID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(result))
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// ListUsers handles GET /users?nickname=&email=&status=&limit=&offset=.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	params := service.ListUsersParams{
		Nickname: strings.TrimSpace(q.Get("nickname")),
		Email:    strings.TrimSpace(q.Get("email")),
		Status:   strings.TrimSpace(q.Get("status")),
		Limit:    limit,
		Offset:   offset,
	}
	users, err := h.userService.ListUsers(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserListResponse{
		Users:  usersToResponse(users),
		Limit:  service.ClampListLimit(limit),
		Offset: max(offset, 0),
	})
}

// LookupUserID handles GET /users/lookup?email=.
func (h *UserHandler) LookupUserID(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		HandleAPIError(w, r, domain.NewValidationError("email", "is required", domain.ErrEmptyEmail), "")
		return
	}

	userID, err := h.userService.GetUserIDByEmail(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to look up user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserIDResponse{UserID: userID})
}

// MarkDormant handles PATCH /users/{id}/dormant.
func (h *UserHandler) MarkDormant(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleSelfPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.userService.MarkDormant(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkDeleted handles PATCH /users/{id}/deleted.
func (h *UserHandler) MarkDeleted(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleSelfPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.userService.MarkDeleted(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ModifyNickname handles PATCH /users/{id}/nickname.
func (h *UserHandler) ModifyNickname(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleSelfPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ModifyNicknameRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.userService.ModifyNickname(r.Context(), userID, req.Nickname); err != nil {
		HandleAPIError(w, r, err, "Failed to update nickname")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ModifyPhoneNumber handles PATCH /users/{id}/phone-number.
func (h *UserHandler) ModifyPhoneNumber(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleSelfPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ModifyPhoneNumberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if err := h.userService.ModifyPhoneNumber(r.Context(), userID, req.PhoneNumber); err != nil {
		HandleAPIError(w, r, err, "Failed to update phone number")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		UserID:    res.UserID,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
