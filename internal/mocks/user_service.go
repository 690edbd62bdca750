package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/service"
)

// UserService is a testify mock of service.UserService.
type UserService struct {
	mock.Mock
}

var _ service.UserService = (*UserService)(nil)

func authResult(args mock.Arguments) (*service.AuthResult, error) {
	if res, ok := args.Get(0).(*service.AuthResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// SignUp mocks service.UserService.SignUp
func (m *UserService) SignUp(ctx context.Context, input service.SignUpInput) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, input))
}

// Login mocks service.UserService.Login
func (m *UserService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, email, password))
}

// MarkDormant mocks service.UserService.MarkDormant
func (m *UserService) MarkDormant(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MarkDeleted mocks service.UserService.MarkDeleted
func (m *UserService) MarkDeleted(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// ModifyNickname mocks service.UserService.ModifyNickname
func (m *UserService) ModifyNickname(ctx context.Context, userID uuid.UUID, nickname string) error {
	return m.Called(ctx, userID, nickname).Error(0)
}

// ModifyPhoneNumber mocks service.UserService.ModifyPhoneNumber
func (m *UserService) ModifyPhoneNumber(ctx context.Context, userID uuid.UUID, phoneNumber string) error {
	return m.Called(ctx, userID, phoneNumber).Error(0)
}

// ListUsers mocks service.UserService.ListUsers
func (m *UserService) ListUsers(ctx context.Context, params service.ListUsersParams) ([]*domain.User, error) {
	args := m.Called(ctx, params)
	if users, ok := args.Get(0).([]*domain.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetUserIDByEmail mocks service.UserService.GetUserIDByEmail
func (m *UserService) GetUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// GetUser mocks service.UserService.GetUser
func (m *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}
