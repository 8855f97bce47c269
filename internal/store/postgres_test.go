package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s, err := NewPostgresWithPool(mock, nil)
	require.NoError(t, err)
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS insights.response_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Load(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT data, stored_at FROM insights.response_cache WHERE key = \$1`).
		WithArgs("fred_UNRATE").
		WillReturnRows(pgxmock.NewRows([]string{"data", "stored_at"}).AddRow([]byte(`{"v":1}`), at))

	e, err := s.Load(context.Background(), "fred_UNRATE")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"v":1}`, string(e.Data))
	assert.True(t, e.StoredAt.Equal(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Load_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data, stored_at FROM insights.response_cache`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	e, err := s.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Load_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data, stored_at FROM insights.response_cache`).
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))

	_, err := s.Load(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: load k")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "insights"."response_cache" .* ON CONFLICT \("key"\) DO UPDATE`).
		WithArgs("k", []byte(`{}`), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Save(context.Background(), Entry{Key: "k", Data: []byte(`{}`), StoredAt: at}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteClearKeys(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM insights.response_cache WHERE key = \$1`).
		WithArgs("a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`SELECT key FROM insights.response_cache ORDER BY key`).
		WillReturnRows(pgxmock.NewRows([]string{"key"}).AddRow("b").AddRow("c"))
	mock.ExpectExec(`DELETE FROM insights.response_cache$`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, s.Delete(ctx, "a"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, keys)
	require.NoError(t, s.Clear(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
