package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/store"
)

// UserStore is a testify mock of store.UserStore. WithTx returns the mock
// itself unless an explicit expectation is registered for it.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

// Create mocks store.UserStore.Create
func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID mocks store.UserStore.GetByID
func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail mocks store.UserStore.GetByEmail
func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetIDByEmail mocks store.UserStore.GetIDByEmail
func (m *UserStore) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// GetPasswordHash mocks store.UserStore.GetPasswordHash
func (m *UserStore) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// HasDuplicateEmail mocks store.UserStore.HasDuplicateEmail
func (m *UserStore) HasDuplicateEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// HasDuplicateNickname mocks store.UserStore.HasDuplicateNickname
func (m *UserStore) HasDuplicateNickname(ctx context.Context, nickname string) (bool, error) {
	args := m.Called(ctx, nickname)
	return args.Bool(0), args.Error(1)
}

// HasDuplicatePhoneNumber mocks store.UserStore.HasDuplicatePhoneNumber
func (m *UserStore) HasDuplicatePhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	args := m.Called(ctx, phoneNumber)
	return args.Bool(0), args.Error(1)
}

// UpdateStatus mocks store.UserStore.UpdateStatus
func (m *UserStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

// UpdateNickname mocks store.UserStore.UpdateNickname
func (m *UserStore) UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) (int64, error) {
	args := m.Called(ctx, id, nickname)
	return args.Get(0).(int64), args.Error(1)
}

// UpdatePhoneNumber mocks store.UserStore.UpdatePhoneNumber
func (m *UserStore) UpdatePhoneNumber(ctx context.Context, id uuid.UUID, phoneNumber string) (int64, error) {
	args := m.Called(ctx, id, phoneNumber)
	return args.Get(0).(int64), args.Error(1)
}

// List mocks store.UserStore.List
func (m *UserStore) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	args := m.Called(ctx, filter)
	if users, ok := args.Get(0).([]*domain.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx mocks store.UserStore.WithTx
func (m *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	for _, call := range m.ExpectedCalls {
		if call.Method == "WithTx" {
			args := m.Called(tx)
			return args.Get(0).(store.UserStore)
		}
	}
	return m
}
