package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/service/auth"
	"github.com/phrazzld/account-api/internal/store"
)

const tracerName = "github.com/phrazzld/account-api/internal/service"

// Listing page sizes.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ClampListLimit applies the listing page size rules: non-positive limits
// become DefaultListLimit and larger ones are capped at MaxListLimit.
func ClampListLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// UserService provides the user account operations.
type UserService interface {
	// SignUp registers a new account and issues its first access token.
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)

	// Login checks the password for email and issues a fresh access token.
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	// MarkDormant moves the account to the dormant status.
	MarkDormant(ctx context.Context, userID uuid.UUID) error

	// MarkDeleted soft-deletes the account.
	MarkDeleted(ctx context.Context, userID uuid.UUID) error

	// ModifyNickname replaces the account's nickname.
	ModifyNickname(ctx context.Context, userID uuid.UUID, nickname string) error

	// ModifyPhoneNumber replaces the account's phone number.
	ModifyPhoneNumber(ctx context.Context, userID uuid.UUID, phoneNumber string) error

	// ListUsers returns accounts matching params, oldest first.
	ListUsers(ctx context.Context, params ListUsersParams) ([]*domain.User, error)

	// GetUserIDByEmail resolves the id of a non-deleted account.
	GetUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)

	// GetUser retrieves an account by id.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// LoginLimiter throttles login attempts per key.
type LoginLimiter interface {
	// Allow records an attempt and reports whether it is permitted. When it
	// is not, the duration says how long until the next attempt may succeed.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)

	// Reset forgets the attempts recorded for key.
	Reset(ctx context.Context, key string) error
}

// SignUpInput carries the fields accepted at registration.
type SignUpInput struct {
	Email    string
	Password string
	Nickname string
}

// ListUsersParams filters a user listing. Nickname and Email match as
// case-insensitive substrings; an empty Status means active.
type ListUsersParams struct {
	Nickname string
	Email    string
	Status   string
	Limit    int
	Offset   int
}

// AuthResult is returned by SignUp and Login.
type AuthResult struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	db        *sql.DB
	tokens    auth.JWTService
	hasher    auth.PasswordHasher
	limiter   LoginLimiter
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Ensure UserServiceImpl implements UserService
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService. limiter may be nil, which
// disables login throttling.
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	tokens auth.JWTService,
	hasher auth.PasswordHasher,
	limiter LoginLimiter,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore: userStore,
		db:        db,
		tokens:    tokens,
		hasher:    hasher,
		limiter:   limiter,
		logger:    logger.With("component", "user_service"),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}, nil
}

func (s *UserServiceImpl) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "UserService."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp implements UserService.SignUp
func (s *UserServiceImpl) SignUp(ctx context.Context, input SignUpInput) (result *AuthResult, err error) {
	ctx, span := s.startSpan(ctx, "SignUp")
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("sign up")

	email := normalizeEmail(input.Email)
	user, err := domain.NewUser(email, input.Password, input.Nickname)
	if err != nil {
		log.Debug("sign up rejected by validation", "error", err)
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		return nil, NewUserServiceError("sign up", "failed to hash password", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		taken, err := txStore.HasDuplicateEmail(ctx, user.Email)
		if err != nil {
			return NewUserServiceError("sign up", "failed to check email", err)
		}
		if taken {
			return ErrDuplicateEmail
		}

		if user.Nickname != "" {
			taken, err = txStore.HasDuplicateNickname(ctx, user.Nickname)
			if err != nil {
				return NewUserServiceError("sign up", "failed to check nickname", err)
			}
			if taken {
				return ErrDuplicateNickname
			}
		}

		if err := txStore.Create(ctx, user); err != nil {
			return mapDuplicate(err, "sign up", "failed to create user")
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			log.Debug("sign up rejected", "reason", err.Error())
		} else {
			log.Error("failed to sign up user", "error", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	result, err = s.issueToken(ctx, user.Email, user.ID)
	if err != nil {
		log.Error("failed to issue token after sign up", "error", err, "user_id", user.ID)
		return nil, err
	}

	log.Info("user signed up", "user_id", user.ID)
	return result, nil
}

// Login implements UserService.Login
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("login")

	email = normalizeEmail(email)

	if s.limiter != nil {
		allowed, retryAfter, limitErr := s.limiter.Allow(ctx, email)
		switch {
		case limitErr != nil:
			log.Warn("login limiter unavailable, allowing attempt", "error", limitErr)
		case !allowed:
			log.Info("login throttled", "retry_after", retryAfter)
			return nil, &TooManyAttemptsError{RetryAfter: retryAfter}
		}
	}

	userID, err := s.userStore.GetIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
		} else {
			log.Error("failed to resolve user for login", "error", err)
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	hash, err := s.userStore.GetPasswordHash(ctx, userID)
	if err != nil {
		log.Error("failed to load password hash", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := s.hasher.Compare(hash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login password mismatch", "user_id", userID)
			return nil, ErrPasswordMismatch
		}
		log.Error("failed to compare password", "error", err, "user_id", userID)
		return nil, NewUserServiceError("login", "failed to compare password", err)
	}

	span.SetAttributes(attribute.String("user.id", userID.String()))

	result, err = s.issueToken(ctx, email, userID)
	if err != nil {
		log.Error("failed to issue token on login", "error", err, "user_id", userID)
		return nil, err
	}

	if s.limiter != nil {
		if resetErr := s.limiter.Reset(ctx, email); resetErr != nil {
			log.Warn("failed to reset login attempts", "error", resetErr, "user_id", userID)
		}
	}

	log.Info("user logged in", "user_id", userID)
	return result, nil
}

func (s *UserServiceImpl) issueToken(ctx context.Context, email string, userID uuid.UUID) (*AuthResult, error) {
	issuedAt := s.now()
	token, err := s.tokens.CreateToken(ctx, email, userID)
	if err != nil {
		return nil, NewUserServiceError("issue token", "failed to create token", err)
	}
	return &AuthResult{
		UserID:    userID,
		Token:     token,
		ExpiresAt: issuedAt.Add(s.tokens.TokenLifetime()).UTC(),
	}, nil
}

// MarkDormant implements UserService.MarkDormant
func (s *UserServiceImpl) MarkDormant(ctx context.Context, userID uuid.UUID) error {
	return s.changeStatus(ctx, "MarkDormant", userID, domain.UserStatusDormant)
}

// MarkDeleted implements UserService.MarkDeleted
func (s *UserServiceImpl) MarkDeleted(ctx context.Context, userID uuid.UUID) error {
	return s.changeStatus(ctx, "MarkDeleted", userID, domain.UserStatusDeleted)
}

func (s *UserServiceImpl) changeStatus(ctx context.Context, op string, userID uuid.UUID, status domain.UserStatus) (err error) {
	ctx, span := s.startSpan(ctx, op, attribute.String("user.id", userID.String()))
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("change user status", "operation", op, "user_id", userID, "status", status)

	affected, err := s.userStore.UpdateStatus(ctx, userID, status)
	if err != nil {
		log.Error("failed to update user status", "error", err, "user_id", userID)
		return NewUserServiceError("update status", "store update failed", err)
	}
	return checkSingleRow(log, affected, userID)
}

// ModifyNickname implements UserService.ModifyNickname
func (s *UserServiceImpl) ModifyNickname(ctx context.Context, userID uuid.UUID, nickname string) (err error) {
	ctx, span := s.startSpan(ctx, "ModifyNickname", attribute.String("user.id", userID.String()))
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("modify nickname", "user_id", userID)

	if err := domain.ValidateNickname(nickname); err != nil {
		return err
	}

	taken, err := s.userStore.HasDuplicateNickname(ctx, nickname)
	if err != nil {
		log.Error("failed to check nickname", "error", err, "user_id", userID)
		return NewUserServiceError("modify nickname", "failed to check nickname", err)
	}
	if taken {
		return ErrDuplicateNickname
	}

	affected, err := s.userStore.UpdateNickname(ctx, userID, nickname)
	if err != nil {
		mapped := mapDuplicate(err, "modify nickname", "store update failed")
		if !isDuplicate(mapped) {
			log.Error("failed to update nickname", "error", err, "user_id", userID)
		}
		return mapped
	}
	return checkSingleRow(log, affected, userID)
}

// ModifyPhoneNumber implements UserService.ModifyPhoneNumber
func (s *UserServiceImpl) ModifyPhoneNumber(ctx context.Context, userID uuid.UUID, phoneNumber string) (err error) {
	ctx, span := s.startSpan(ctx, "ModifyPhoneNumber", attribute.String("user.id", userID.String()))
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("modify phone number", "user_id", userID)

	if err := domain.ValidatePhoneNumber(phoneNumber); err != nil {
		return err
	}

	taken, err := s.userStore.HasDuplicatePhoneNumber(ctx, phoneNumber)
	if err != nil {
		log.Error("failed to check phone number", "error", err, "user_id", userID)
		return NewUserServiceError("modify phone number", "failed to check phone number", err)
	}
	if taken {
		return ErrDuplicatePhoneNumber
	}

	affected, err := s.userStore.UpdatePhoneNumber(ctx, userID, phoneNumber)
	if err != nil {
		mapped := mapDuplicate(err, "modify phone number", "store update failed")
		if !isDuplicate(mapped) {
			log.Error("failed to update phone number", "error", err, "user_id", userID)
		}
		return mapped
	}
	return checkSingleRow(log, affected, userID)
}

// checkSingleRow turns any affected-row count other than one into ErrUpdateFailed.
func checkSingleRow(log *slog.Logger, affected int64, userID uuid.UUID) error {
	if affected != 1 {
		log.Error("update did not affect exactly one row",
			"rows_affected", affected,
			"user_id", userID)
		return fmt.Errorf("%w: %d rows affected", ErrUpdateFailed, affected)
	}
	return nil
}

// ListUsers implements UserService.ListUsers
func (s *UserServiceImpl) ListUsers(ctx context.Context, params ListUsersParams) (users []*domain.User, err error) {
	ctx, span := s.startSpan(ctx, "ListUsers")
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("list users",
		"nickname", params.Nickname,
		"email", params.Email,
		"status", params.Status)

	status := domain.UserStatusActive
	if params.Status != "" {
		status, err = domain.ParseUserStatus(params.Status)
		if err != nil {
			return nil, err
		}
	}

	users, err = s.userStore.List(ctx, domain.UserFilter{
		Nickname: params.Nickname,
		Email:    params.Email,
		Status:   status,
		Limit:    ClampListLimit(params.Limit),
		Offset:   max(params.Offset, 0),
	})
	if err != nil {
		log.Error("failed to list users", "error", err)
		return nil, NewUserServiceError("list users", "store query failed", err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

// GetUserIDByEmail implements UserService.GetUserIDByEmail
func (s *UserServiceImpl) GetUserIDByEmail(ctx context.Context, email string) (id uuid.UUID, err error) {
	ctx, span := s.startSpan(ctx, "GetUserIDByEmail")
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("get user id by email")

	id, err = s.userStore.GetIDByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to retrieve user id by email: %w", err)
	}
	return id, nil
}

// GetUser implements UserService.GetUser
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (user *domain.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUser", attribute.String("user.id", userID.String()))
	defer func() { endSpan(span, err) }()

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Info("get user", "user_id", userID)

	user, err = s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to retrieve user", "error", err, "user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// mapDuplicate translates store duplicate errors into the service's own
// duplicate sentinels. Anything else is wrapped as a UserServiceError.
func mapDuplicate(err error, operation, message string) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return ErrDuplicateEmail
	case errors.Is(err, store.ErrNicknameExists):
		return ErrDuplicateNickname
	case errors.Is(err, store.ErrPhoneNumberExists):
		return ErrDuplicatePhoneNumber
	}
	return NewUserServiceError(operation, message, err)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateNickname) ||
		errors.Is(err, ErrDuplicatePhoneNumber)
}
