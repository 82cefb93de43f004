package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
)

// ListCache caches list responses per namespace. Every write to a
// namespace bumps its version, which orphans all keys built before it.
// Cache failures are logged and treated as misses.
type ListCache struct {
	store Store
	ttl   time.Duration
	log   *logger.Logger
}

func NewListCache(store Store, ttl time.Duration, log *logger.Logger) *ListCache {
	return &ListCache{store: store, ttl: ttl, log: log}
}

// Key builds the cache key for a list request. url.Values.Encode sorts
// by key so equivalent queries share a key.
func (c *ListCache) Key(ctx context.Context, namespace string, q url.Values) string {
	return fmt.Sprintf("%s%s:v%d:%s", constants.CacheKeyList, namespace, c.version(ctx, namespace), q.Encode())
}

func (c *ListCache) version(ctx context.Context, namespace string) int64 {
	raw, ok, err := c.store.Get(ctx, constants.CacheKeyListVersion+namespace)
	if err != nil || !ok {
		return 0
	}
	var v int64
	_, _ = fmt.Sscan(string(raw), &v)
	return v
}

// Get decodes a cached value into dst and reports whether it was a hit.
func (c *ListCache) Get(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WarnWithContext(ctx, "List cache read failed").String("key", key).Err(err).Log()
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WarnWithContext(ctx, "List cache entry is corrupt").String("key", key).Err(err).Log()
		_ = c.store.Delete(ctx, key)
		return false
	}
	return true
}

func (c *ListCache) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.WarnWithContext(ctx, "List cache encode failed").String("key", key).Err(err).Log()
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.WarnWithContext(ctx, "List cache write failed").String("key", key).Err(err).Log()
	}
}

// Invalidate drops every cached list of namespace.
func (c *ListCache) Invalidate(ctx context.Context, namespace string) {
	if _, err := c.store.Incr(ctx, constants.CacheKeyListVersion+namespace); err != nil {
		c.log.WarnWithContext(ctx, "List cache invalidation failed").String("namespace", namespace).Err(err).Log()
	}
}

// Denylist remembers revoked access token ids until they would have expired.
type Denylist struct {
	store Store
}

func NewDenylist(store Store) *Denylist {
	return &Denylist{store: store}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.store.Set(ctx, constants.CacheKeyRevokedToken+tokenID, []byte("1"), ttl)
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return d.store.Exists(ctx, constants.CacheKeyRevokedToken+tokenID)
}
