// Package store persists response-cache entries. Each backend keeps exactly
// one entry per key and replaces it atomically on save.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Entry is one persisted cache entry. StoredAt is the backend's own
// last-modified time and drives freshness checks.
type Entry struct {
	Key      string
	Data     []byte
	StoredAt time.Time
}

// Store defines the persistence interface for cached responses.
type Store interface {
	// Load returns the entry for key, or nil when none exists.
	Load(ctx context.Context, key string) (*Entry, error)
	// Save replaces any entry for e.Key. A zero StoredAt means now.
	Save(ctx context.Context, e Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Dir           string // file
	DSN           string // sqlite path or postgres connection string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	Pool          *PoolConfig
}

// Open creates the configured backend and runs its migration.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(opts.Driver) {
	case "", DriverFile:
		s, err = NewFile(opts.Dir)
	case DriverSQLite:
		s, err = NewSQLite(opts.DSN)
	case DriverPostgres:
		s, err = NewPostgres(ctx, opts.DSN, opts.Pool)
	case DriverRedis:
		s, err = NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	default:
		return nil, eris.Errorf("store: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func storedAt(e Entry) time.Time {
	if e.StoredAt.IsZero() {
		return time.Now().UTC()
	}
	return e.StoredAt.UTC()
}
