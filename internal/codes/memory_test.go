package codes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "somchai@nsru.ac.th")
	require.NoError(t, err)
	assert.False(t, ok)

	entry := Entry{Code: "123456", ExpiresAt: time.Now().Add(5 * time.Minute)}
	require.NoError(t, store.Set(ctx, "somchai@nsru.ac.th", entry, 5*time.Minute))

	got, ok, err := store.Get(ctx, "somchai@nsru.ac.th")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "123456", got.Code)

	require.NoError(t, store.Delete(ctx, "somchai@nsru.ac.th"))
	_, ok, err = store.Get(ctx, "somchai@nsru.ac.th")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreSetReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := Entry{Code: "111111", ExpiresAt: time.Now().Add(5 * time.Minute)}
	second := Entry{Code: "222222", ExpiresAt: time.Now().Add(5 * time.Minute)}
	require.NoError(t, store.Set(ctx, "somchai@nsru.ac.th", first, 5*time.Minute))
	require.NoError(t, store.Set(ctx, "somchai@nsru.ac.th", second, 5*time.Minute))

	got, ok, err := store.Get(ctx, "somchai@nsru.ac.th")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "222222", got.Code)
}

func TestMemoryStoreReturnsExpiredEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// The store never judges expiry itself; the caller checks ExpiresAt so
	// it can tell "expired" apart from "never issued".
	entry := Entry{Code: "123456", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Set(ctx, "somchai@nsru.ac.th", entry, time.Minute))

	got, ok, err := store.Get(ctx, "somchai@nsru.ac.th")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.ExpiresAt.Before(time.Now()))
}

func TestMemoryStoreDeleteMissingIsNoop(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "nobody@nsru.ac.th"))
}
