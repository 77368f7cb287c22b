package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "s1", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "s1", "k", "v"))

	got, err := store.Get(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	// keys are scoped per session
	_, err = store.Get(ctx, "s2", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "s1", "k"))
	_, err = store.Get(ctx, "s1", "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePopConsumesOnce(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", "state", "abc"))

	got, err := store.Pop(ctx, "s1", "state")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = store.Pop(ctx, "s1", "state")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", "k", "v"))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, "s1", "k")
	assert.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, "s1", "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	assert.NoError(t, store.Delete(context.Background(), "s1", "missing"))
}
