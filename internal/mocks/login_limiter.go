package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// LoginLimiter is a testify mock of service.LoginLimiter.
type LoginLimiter struct {
	mock.Mock
}

// Allow mocks service.LoginLimiter.Allow
func (m *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

// Reset mocks service.LoginLimiter.Reset
func (m *LoginLimiter) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
