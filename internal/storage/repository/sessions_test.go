package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_SessionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "maria@example.com", "hash", "María")

	expiresAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	id, err := storage.CreateSession(ctx, uid, "token-1", expiresAt)
	require.NoError(t, err)
	require.NotZero(t, id)

	sess, found, err := storage.GetSessionByToken(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, uid, sess.UserUID)
	assert.WithinDuration(t, expiresAt, sess.ExpiresAt, time.Second)

	_, found, err = storage.GetSessionByToken(ctx, "unknown-token")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := storage.DeleteSessionByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Повторное удаление идемпотентно
	deleted, err = storage.DeleteSessionByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	_, found, err = storage.GetSessionByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found)
}
