package dedupe_test

import (
	"testing"
	"time"

	"github.com/DeafMist/igaming-news-radar/internal/dedupe"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)}
}

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.IsSeen("esports|https://x/1"))
	cache.MarkSeen("esports|https://x/1")
	require.True(t, cache.IsSeen("esports|https://x/1"))
	require.False(t, cache.IsSeen("crypto|https://x/1"))
}

func TestCacheTTLExpiry(t *testing.T) {
	clock := newClock()
	cache := dedupe.NewCache(10, time.Hour, dedupe.WithClock(clock.Now))

	cache.MarkSeen("beta")
	clock.Advance(59 * time.Minute)
	require.True(t, cache.IsSeen("beta"))

	clock.Advance(2 * time.Minute)
	require.False(t, cache.IsSeen("beta"))
}

func TestCacheCompactsExpired(t *testing.T) {
	clock := newClock()
	cache := dedupe.NewCache(10, time.Hour, dedupe.WithClock(clock.Now))

	cache.MarkSeen("old")
	clock.Advance(2 * time.Hour)
	cache.MarkSeen("new")

	require.Equal(t, 1, cache.Len())
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	cache.MarkSeen("first")
	cache.MarkSeen("second")

	require.False(t, cache.IsSeen("first"))
	require.True(t, cache.IsSeen("second"))
}

func TestCacheRemarkKeepsKey(t *testing.T) {
	clock := newClock()
	cache := dedupe.NewCache(2, time.Hour, dedupe.WithClock(clock.Now))

	cache.MarkSeen("a")
	clock.Advance(time.Second)
	cache.MarkSeen("b")
	clock.Advance(time.Second)
	cache.MarkSeen("a")
	clock.Advance(time.Second)
	cache.MarkSeen("c")

	require.True(t, cache.IsSeen("a"))
	require.True(t, cache.IsSeen("c"))
}
