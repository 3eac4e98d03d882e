package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mype-assistant/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		Addr:     mr.Addr(),
		Password: "",
		DB:       0,
		User:     "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	want := testStruct{Name: "maria", Age: 34}
	require.NoError(t, cache.Set("key1", want, time.Minute))

	var got testStruct
	found, err := cache.Get("key1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestGet_Missing(t *testing.T) {
	cache := setupTestCache(t)

	var got testStruct
	found, err := cache.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("key1", testStruct{Name: "jose"}, time.Minute))
	require.NoError(t, cache.Invalidate("key1"))

	var got testStruct
	found, err := cache.Get("key1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
