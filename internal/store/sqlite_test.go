package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SaveAndLoad(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.Save(ctx, Entry{Key: "commercial_permits_new_2020", Data: []byte(`{"features":[]}`), StoredAt: at}))

	e, err := st.Load(ctx, "commercial_permits_new_2020")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"features":[]}`, string(e.Data))
	assert.True(t, e.StoredAt.Equal(at))
}

func TestSQLite_LoadMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	e, err := st.Load(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSQLite_SaveReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte("one"), StoredAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte("two")}))

	e, err := st.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(e.Data))
	assert.WithinDuration(t, time.Now(), e.StoredAt, time.Minute)

	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestSQLite_DeleteAndClear(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, st.Save(ctx, Entry{Key: k, Data: []byte(k)}))
	}
	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, st.Delete(ctx, "a"))
	keys, err = st.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, keys)

	require.NoError(t, st.Clear(ctx))
	keys, err = st.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
