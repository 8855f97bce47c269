package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/city-insights/internal/db"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db        *sql.DB
	upsertSQL string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: empty dsn")
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	upsert, err := db.UpsertSQL(db.UpsertConfig{
		Table:        "response_cache",
		Columns:      []string{"key", "data", "stored_at_ms"},
		ConflictKeys: []string{"key"},
	}, db.Question)
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: build upsert")
	}
	return &SQLiteStore{db: conn, upsertSQL: upsert}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS response_cache (
	key          TEXT PRIMARY KEY,
	data         BLOB NOT NULL,
	stored_at_ms INTEGER NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*Entry, error) {
	var (
		data []byte
		ms   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, stored_at_ms FROM response_cache WHERE key = ?`, key,
	).Scan(&data, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load %s", key)
	}
	return &Entry{Key: key, Data: data, StoredAt: time.UnixMilli(ms).UTC()}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, s.upsertSQL, e.Key, e.Data, storedAt(e).UnixMilli())
	return eris.Wrapf(err, "sqlite: save %s", e.Key)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE key = ?`, key)
	return eris.Wrapf(err, "sqlite: delete %s", key)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM response_cache`)
	return eris.Wrap(err, "sqlite: clear")
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM response_cache ORDER BY key`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list keys")
	}
	defer rows.Close() //nolint:errcheck

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan key")
		}
		keys = append(keys, k)
	}
	return keys, eris.Wrap(rows.Err(), "sqlite: iterate keys")
}
