package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSnapshotCache(NewRedisKV(client), 30*time.Second, zap.NewNop()), mr
}

type snapshot struct {
	Total float64 `json:"total"`
	Days  int     `json:"days"`
}

func TestSnapshotCache_SetGetRoundtrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key := StatsKey("2026-03-02", "2026-03-06", "USD")
	require.NoError(t, cache.SetJSON(ctx, key, snapshot{Total: 100, Days: 5}))

	var got snapshot
	require.NoError(t, cache.GetJSON(ctx, key, &got))
	require.Equal(t, snapshot{Total: 100, Days: 5}, got)
}

func TestSnapshotCache_MissReturnsErrMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got snapshot
	err := cache.GetJSON(context.Background(), HorizonKey("2026-03-02"), &got)
	require.ErrorIs(t, err, ErrMiss)
}

func TestSnapshotCache_BadPayloadIsDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key := StatsKey("2026-03-02", "2026-03-06", "USD")
	require.NoError(t, mr.Set(key, "{not json"))

	var got snapshot
	err := cache.GetJSON(ctx, key, &got)
	require.ErrorIs(t, err, ErrMiss)
	// poisoned entry is gone, next read is a clean miss
	require.False(t, mr.Exists(key))
}

func TestSnapshotCache_EntriesExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewSnapshotCache(NewRedisKV(client), time.Second, zap.NewNop())
	ctx := context.Background()

	key := HorizonKey("2026-03-02")
	require.NoError(t, cache.SetJSON(ctx, key, snapshot{Days: 1}))

	mr.FastForward(2 * time.Second)

	var got snapshot
	require.ErrorIs(t, cache.GetJSON(ctx, key, &got), ErrMiss)
}

func TestSnapshotCache_InvalidateClearsSnapshots(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, StatsKey("2026-03-02", "2026-03-06", "USD"), snapshot{Total: 100}))
	require.NoError(t, cache.SetJSON(ctx, StatsKey("2026-03-02", "2026-03-06", "EUR"), snapshot{Total: 90}))
	require.NoError(t, cache.SetJSON(ctx, HorizonKey("2026-03-02"), snapshot{Days: 5}))
	// unrelated keys survive invalidation
	require.NoError(t, mr.Set("deskplanner:other", "keep"))

	cache.Invalidate(ctx)

	require.False(t, mr.Exists(StatsKey("2026-03-02", "2026-03-06", "USD")))
	require.False(t, mr.Exists(StatsKey("2026-03-02", "2026-03-06", "EUR")))
	require.False(t, mr.Exists(HorizonKey("2026-03-02")))
	require.True(t, mr.Exists("deskplanner:other"))
}
