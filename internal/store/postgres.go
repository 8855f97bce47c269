package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/city-insights/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool      db.Pool
	closeFn   func()
	upsertSQL string
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const postgresTable = "insights.response_cache"

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return NewPostgresWithPool(pool, pool.Close)
}

// NewPostgresWithPool wraps an existing pool. closeFn may be nil.
func NewPostgresWithPool(pool db.Pool, closeFn func()) (*PostgresStore, error) {
	upsert, err := db.UpsertSQL(db.UpsertConfig{
		Table:        postgresTable,
		Columns:      []string{"key", "data", "stored_at"},
		ConflictKeys: []string{"key"},
	}, db.Dollar)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build upsert")
	}
	return &PostgresStore{pool: pool, closeFn: closeFn, upsertSQL: upsert}, nil
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS insights;

CREATE TABLE IF NOT EXISTS insights.response_cache (
	key       TEXT PRIMARY KEY,
	data      JSONB NOT NULL,
	stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (*Entry, error) {
	var (
		data []byte
		at   time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT data, stored_at FROM insights.response_cache WHERE key = $1`, key,
	).Scan(&data, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load %s", key)
	}
	return &Entry{Key: key, Data: data, StoredAt: at.UTC()}, nil
}

func (s *PostgresStore) Save(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, s.upsertSQL, e.Key, e.Data, storedAt(e))
	return eris.Wrapf(err, "postgres: save %s", e.Key)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM insights.response_cache WHERE key = $1`, key)
	return eris.Wrapf(err, "postgres: delete %s", key)
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM insights.response_cache`)
	return eris.Wrap(err, "postgres: clear")
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM insights.response_cache ORDER BY key`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list keys")
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return keys, eris.Wrap(err, "postgres: collect keys")
}
