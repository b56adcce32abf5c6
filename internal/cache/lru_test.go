package cache

import (
	"context"
	"testing"
	"time"

	"chanboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string
	Items []int
}

func TestLRUSetGetDelete(t *testing.T) {
	c, err := NewLRU(2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	c.Set(ctx, "a", payload{Name: "a", Items: []int{1, 2}})

	var got payload
	require.True(t, c.Get(ctx, "a", &got))
	assert.Equal(t, payload{Name: "a", Items: []int{1, 2}}, got)

	// callers get a copy
	got.Items[0] = 99
	var again payload
	require.True(t, c.Get(ctx, "a", &again))
	assert.Equal(t, 1, again.Items[0])

	c.Delete(ctx, "a", "missing")
	assert.False(t, c.Get(ctx, "a", &got))
}

func TestLRUExpiresEntries(t *testing.T) {
	c, err := NewLRU(10, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", 1)
	var v int
	assert.True(t, c.Get(ctx, "k", &v))

	now = now.Add(2 * time.Minute)
	assert.False(t, c.Get(ctx, "k", &v))
	assert.Equal(t, 0, c.Len())
}

func TestLRUEvictsOldest(t *testing.T) {
	c, err := NewLRU(2, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	c.Set(ctx, "1", 1)
	c.Set(ctx, "2", 2)
	c.Set(ctx, "3", 3)

	var v int
	assert.False(t, c.Get(ctx, "1", &v))
	assert.True(t, c.Get(ctx, "3", &v))
	assert.Equal(t, 3, v)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)

	c, err := New(config.CacheConfig{Backend: "lru", Size: 5, TTL: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &LRU{}, c)
}

func TestThreadKey(t *testing.T) {
	assert.Equal(t, "thread:post:42", ThreadKey(42))
}
