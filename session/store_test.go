package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proseplay/proseplay/util"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to the Redis from REDIS_ADDRESS and skips the test without it.
func newTestStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS is not set")
	}

	store := NewStore(&util.Config{RedisAddress: addr})
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Ping(context.Background()))
	return store
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	want := PlaySession{
		ID:             uuid.NewString(),
		Source:         "(a|b)[1]\n(c|d)[1]",
		CurrentIndexes: []int{1, 1},
		Expanded:       true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Minute),
	}

	require.NoError(t, store.SaveSession(ctx, want, time.Minute))

	got, err := store.GetSession(ctx, want.ID)
	require.NoError(t, err)
	require.Equal(t, want.Source, got.Source)
	require.Equal(t, want.CurrentIndexes, got.CurrentIndexes)
	require.True(t, got.Expanded)
	require.WithinDuration(t, want.ExpiresAt, got.ExpiresAt, time.Second)

	require.NoError(t, store.DeleteSession(ctx, want.ID))

	_, err = store.GetSession(ctx, want.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// deleting twice is fine
	require.NoError(t, store.DeleteSession(ctx, want.ID))
}

func TestRedisStore_Expires(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := PlaySession{ID: uuid.NewString(), Source: "(a|b)", CurrentIndexes: []int{0}}
	require.NoError(t, store.SaveSession(ctx, s, 50*time.Millisecond))

	require.Eventually(t, func() bool {
		_, err := store.GetSession(ctx, s.ID)
		return err == ErrSessionNotFound
	}, 2*time.Second, 25*time.Millisecond)
}
