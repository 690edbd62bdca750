package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/store"
)

const userColumns = `id, email, nickname, phone_number, hashed_password, status, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that is managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO users (id, email, nickname, phone_number, hashed_password, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		nullableString(user.Nickname),
		nullableString(user.PhoneNumber),
		user.HashedPassword,
		string(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		mapped := mapUserUniqueViolation(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("unique violation during user creation",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		} else {
			log.Error("failed to create user",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
		return mapped
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getOne(ctx, query, email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to query user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// GetIDByEmail implements store.UserStore.GetIDByEmail
func (s *PostgresUserStore) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT id FROM users WHERE email = $1 AND status <> $2`

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, query, email, string(domain.UserStatusDeleted)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrUserNotFound
		}
		log.Error("failed to query user id by email", slog.String("error", err.Error()))
		return uuid.Nil, MapError(err)
	}
	return id, nil
}

// GetPasswordHash implements store.UserStore.GetPasswordHash
func (s *PostgresUserStore) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hashed_password FROM users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrUserNotFound
		}
		log.Error("failed to query password hash",
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}
	return hash, nil
}

// HasDuplicateEmail implements store.UserStore.HasDuplicateEmail
func (s *PostgresUserStore) HasDuplicateEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// HasDuplicateNickname implements store.UserStore.HasDuplicateNickname
func (s *PostgresUserStore) HasDuplicateNickname(ctx context.Context, nickname string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE nickname = $1)`, nickname)
}

// HasDuplicatePhoneNumber implements store.UserStore.HasDuplicatePhoneNumber
func (s *PostgresUserStore) HasDuplicatePhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE phone_number = $1)`, phoneNumber)
}

func (s *PostgresUserStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var found bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		log.Error("failed to check for existing user", slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return found, nil
}

// UpdateStatus implements store.UserStore.UpdateStatus
func (s *PostgresUserStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidUserStatus)
	}
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $3`
	return s.update(ctx, "status", query, string(status), id)
}

// UpdateNickname implements store.UserStore.UpdateNickname
func (s *PostgresUserStore) UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) (int64, error) {
	query := `UPDATE users SET nickname = $1, updated_at = NOW() WHERE id = $2 AND status <> $3`
	return s.update(ctx, "nickname", query, nickname, id)
}

// UpdatePhoneNumber implements store.UserStore.UpdatePhoneNumber
func (s *PostgresUserStore) UpdatePhoneNumber(ctx context.Context, id uuid.UUID, phoneNumber string) (int64, error) {
	query := `UPDATE users SET phone_number = $1, updated_at = NOW() WHERE id = $2 AND status <> $3`
	return s.update(ctx, "phone_number", query, phoneNumber, id)
}

// update applies a single-column change. Soft-deleted rows are never
// touched, so they report zero affected rows.
func (s *PostgresUserStore) update(ctx context.Context, field, query string, value any, id uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, value, id, string(domain.UserStatusDeleted))
	if err != nil {
		mapped := mapUserUniqueViolation(err)
		log.Error("failed to update user",
			slog.String("field", field),
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()))
		return 0, mapped
	}

	n, err := CheckRowsAffected(result)
	if err != nil {
		return 0, err
	}

	log.Debug("user updated",
		slog.String("field", field),
		slog.String("user_id", id.String()),
		slog.Int64("rows_affected", n))
	return n, nil
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate user rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("listed users", slog.Int("count", len(users)))
	return users, nil
}

// buildListQuery renders the filtered listing query with positional arguments.
func buildListQuery(filter domain.UserFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Nickname != "" {
		conditions = append(conditions, "nickname ILIKE "+arg("%"+escapeLike(filter.Nickname)+"%"))
	}
	if filter.Email != "" {
		conditions = append(conditions, "email ILIKE "+arg("%"+escapeLike(filter.Email)+"%"))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + userColumns + ` FROM users`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY created_at, id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET " + arg(filter.Offset))
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user        domain.User
		nickname    sql.NullString
		phoneNumber sql.NullString
		status      string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&nickname,
		&phoneNumber,
		&user.HashedPassword,
		&status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Nickname = nickname.String
	user.PhoneNumber = phoneNumber.String
	user.Status = domain.UserStatus(status)
	return &user, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
