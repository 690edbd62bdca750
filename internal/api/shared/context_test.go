package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := WithTraceID(context.Background(), "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))

	generated := GetTraceID(WithTraceID(context.Background(), ""))
	assert.Len(t, generated, TraceIDLength*2)
	_, err := hex.DecodeString(generated)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNewTraceID_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewTraceID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate trace id %s", id)
		seen[id] = struct{}{}
	}
}

func TestUserIDFromContext(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	_, ok = UserIDFromContext(context.WithValue(context.Background(), UserIDContextKey, id.String()))
	assert.False(t, ok, "string values are not accepted")
}
