package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_TTL(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, m.Set(ctx, "forever", []byte("y"), 0))

	v, ok, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	time.Sleep(20 * time.Millisecond)

	_, ok, _ = m.Get(ctx, "short")
	assert.False(t, ok)
	ok, _ = m.Exists(ctx, "forever")
	assert.True(t, ok)
}

func TestMemory_Incr(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	n, _ := m.Incr(ctx, "k")
	assert.Equal(t, int64(1), n)
	n, _ = m.Incr(ctx, "k")
	assert.Equal(t, int64(2), n)
}

func TestListCache_InvalidateChangesKey(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()
	c := NewListCache(m, time.Minute, logger.NewNop())

	q := url.Values{"limit": {"10"}, "page": {"2"}}
	same := url.Values{"page": {"2"}, "limit": {"10"}}

	key := c.Key(ctx, "posts", q)
	assert.Equal(t, key, c.Key(ctx, "posts", same))

	c.Set(ctx, key, map[string]int{"total": 3})
	var got map[string]int
	require.True(t, c.Get(ctx, key, &got))
	assert.Equal(t, 3, got["total"])

	c.Invalidate(ctx, "posts")
	newKey := c.Key(ctx, "posts", q)
	assert.NotEqual(t, key, newKey)
	assert.False(t, c.Get(ctx, newKey, &got))

	// other namespaces are untouched
	assert.Contains(t, c.Key(ctx, "events", q), ":v0:")
}

func TestListCache_CorruptEntryIsAMiss(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()
	c := NewListCache(m, time.Minute, logger.NewNop())

	require.NoError(t, m.Set(ctx, "bad", []byte("{not json"), 0))
	var dst map[string]any
	assert.False(t, c.Get(ctx, "bad", &dst))

	ok, _ := m.Exists(ctx, "bad")
	assert.False(t, ok)
}

func TestDenylist(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()
	d := NewDenylist(m)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))

	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = d.IsRevoked(ctx, "jti-old")
	assert.False(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "")
	assert.False(t, revoked)
}
