// Package cache is an advisory TTL cache for computed responses and upstream
// snapshots. Reads never fail: a missing, stale, corrupt or foreign entry is a
// miss. Concurrent misses may recompute the same key; the last writer wins.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/store"
)

// Version tags every envelope. Bump it when a cached payload shape changes so
// old entries read as misses.
const Version = 1

// DefaultMaxAge is the freshness window when a caller passes zero.
const DefaultMaxAge = 24 * time.Hour

type envelope struct {
	Version  int             `json:"version"`
	Key      string          `json:"key"`
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Cache wraps a durable store with JSON envelopes and per-call freshness.
type Cache struct {
	store store.Store
	now   func() time.Time
	log   *zap.Logger
}

// New creates a Cache over s.
func New(s store.Store) *Cache {
	return &Cache{
		store: s,
		now:   time.Now,
		log:   zap.L().With(zap.String("component", "cache")),
	}
}

// Store returns the backing store.
func (c *Cache) Store() store.Store { return c.store }

// Get decodes the entry for key into dst and reports a hit. The entry must be
// younger than maxAge (DefaultMaxAge when zero).
func (c *Cache) Get(ctx context.Context, key string, maxAge time.Duration, dst any) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	e, err := c.store.Load(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if e == nil {
		return false
	}
	if c.now().Sub(e.StoredAt) >= maxAge {
		return false
	}

	var env envelope
	if err := json.Unmarshal(e.Data, &env); err != nil {
		c.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	if env.Version != Version || env.Key != key || len(env.Payload) == 0 {
		c.log.Info("cache entry shape mismatch",
			zap.String("key", key),
			zap.Int("version", env.Version),
		)
		return false
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		c.log.Warn("cache payload undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Put stores payload under key, replacing any prior entry and resetting its age.
func (c *Cache) Put(ctx context.Context, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	now := c.now().UTC()
	data, err := json.Marshal(envelope{Version: Version, Key: key, StoredAt: now, Payload: raw})
	if err != nil {
		return eris.Wrapf(err, "cache: encode envelope %s", key)
	}
	if err := c.store.Save(ctx, store.Entry{Key: key, Data: data, StoredAt: now}); err != nil {
		return eris.Wrapf(err, "cache: put %s", key)
	}
	return nil
}

// Invalidate deletes one entry, or every entry when key is empty.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return eris.Wrap(c.store.Clear(ctx), "cache: clear")
	}
	return eris.Wrapf(c.store.Delete(ctx, key), "cache: invalidate %s", key)
}

// Keys lists cached keys.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	keys, err := c.store.Keys(ctx)
	return keys, eris.Wrap(err, "cache: keys")
}

// GetOrLoad returns the cached value for key when fresh, otherwise calls load
// and caches its result. A failed Put is logged; the loaded value still wins.
// refresh skips the read.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, maxAge time.Duration, refresh bool, load func(context.Context) (T, error)) (T, error) {
	var v T
	if !refresh && c.Get(ctx, key, maxAge, &v) {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Put(ctx, key, v); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
