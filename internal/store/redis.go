package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "city-insights:cache:"

// RedisStore keeps each entry as a hash {data, stored_at_ms} under a prefixed key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, dbIndex int, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, eris.New("redis: empty address")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: dbIndex})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "redis: ping")
	}
	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Migrate(ctx context.Context) error {
	return eris.Wrap(s.client.Ping(ctx).Err(), "redis: ping")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "redis: load %s", key)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, nil
	}
	ms, err := strconv.ParseInt(fields["stored_at_ms"], 10, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "redis: parse stored_at for %s", key)
	}
	return &Entry{Key: key, Data: []byte(data), StoredAt: time.UnixMilli(ms).UTC()}, nil
}

// Save writes both hash fields in a single HSET.
func (s *RedisStore) Save(ctx context.Context, e Entry) error {
	err := s.client.HSet(ctx, s.prefix+e.Key,
		"data", e.Data,
		"stored_at_ms", strconv.FormatInt(storedAt(e).UnixMilli(), 10),
	).Err()
	return eris.Wrapf(err, "redis: save %s", e.Key)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return eris.Wrapf(s.client.Del(ctx, s.prefix+key).Err(), "redis: delete %s", key)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	return eris.Wrap(s.client.Del(ctx, full...).Err(), "redis: clear")
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrap(err, "redis: scan keys")
	}
	return keys, nil
}
