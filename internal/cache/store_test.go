package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(maxSize int, ttl time.Duration) (*Store[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewStore[string](maxSize, ttl, WithClock[string](clock.now)), clock
}

func TestStoreGetSet(t *testing.T) {
	s, _ := newTestStore(10, time.Minute)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", "v")
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.True(t, s.Has("k"))
}

func TestStoreExpiresLazily(t *testing.T) {
	s, clock := newTestStore(10, time.Minute)
	s.Set("k", "v")

	clock.advance(time.Minute)
	assert.True(t, s.Has("k"), "entry is live until now > expiresAt")

	clock.advance(time.Millisecond)
	assert.Equal(t, 1, s.Stats().ExpiredEntries)
	assert.False(t, s.Has("k"))
	assert.Equal(t, 0, s.Stats().TotalEntries)
}

func TestStoreEvictsLeastRecentlyAccessed(t *testing.T) {
	s, clock := newTestStore(3, time.Hour)

	for i := 0; i < 3; i++ {
		s.Set(fmt.Sprintf("k%d", i), "v")
		clock.advance(time.Second)
	}

	// touch k0 so k1 becomes the least recently accessed
	_, ok := s.Get("k0")
	require.True(t, ok)
	clock.advance(time.Second)

	s.Set("k3", "v")

	assert.True(t, s.Has("k0"))
	assert.False(t, s.Has("k1"))
	assert.True(t, s.Has("k2"))
	assert.True(t, s.Has("k3"))
	assert.Equal(t, 3, s.Stats().TotalEntries)
}

func TestStoreOverwriteDoesNotEvict(t *testing.T) {
	s, _ := newTestStore(2, time.Hour)
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("a", "3")

	v, _ := s.Get("a")
	assert.Equal(t, "3", v)
	assert.True(t, s.Has("b"))
}

func TestStoreSweep(t *testing.T) {
	s, clock := newTestStore(10, time.Minute)
	s.Set("old", "v")
	clock.advance(30 * time.Second)
	s.Set("new", "v")
	clock.advance(45 * time.Second)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.ActiveEntries)
	assert.Equal(t, 1, stats.ExpiredEntries)
	assert.Equal(t, 10, stats.MaxSize)
	assert.Equal(t, int64(60000), stats.TTLMs)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Stats().TotalEntries)
	assert.True(t, s.Has("new"))
}

func TestStoreClear(t *testing.T) {
	s, _ := newTestStore(10, time.Minute)
	s.Set("a", "1")
	s.Clear()
	assert.Equal(t, 0, s.Stats().TotalEntries)
}

func TestStoreClonesValues(t *testing.T) {
	s := NewStore[[]string](10, time.Minute, WithCloner(func(v []string) []string {
		return append([]string(nil), v...)
	}))

	in := []string{"a"}
	s.Set("k", in)
	in[0] = "mutated"

	out, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "a", out[0])

	out[0] = "mutated"
	again, _ := s.Get("k")
	assert.Equal(t, "a", again[0])
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore[int](0, 0)
	stats := s.Stats()
	assert.Equal(t, DefaultMaxSize, stats.MaxSize)
	assert.Equal(t, DefaultTTL.Milliseconds(), stats.TTLMs)
}

func TestStoreSweeperLifecycle(t *testing.T) {
	s, _ := newTestStore(10, time.Minute)
	require.NoError(t, s.Stop(), "stopping a sweeper that never started is a no-op")
	require.NoError(t, s.StartSweeper())
	require.NoError(t, s.StartSweeper())
	require.NoError(t, s.Stop())
}
