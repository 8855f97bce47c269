package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	st, err := NewFile(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestFile_SaveAndLoad(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Entry{Key: "new_residential_permits_2020_2025", Data: []byte(`{"a":1}`)}))

	e, err := st.Load(ctx, "new_residential_permits_2020_2025")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.JSONEq(t, `{"a":1}`, string(e.Data))
	assert.WithinDuration(t, time.Now(), e.StoredAt, time.Minute)

	_, err = os.Stat(filepath.Join(st.Dir(), "new_residential_permits_2020_2025.json"))
	assert.NoError(t, err)
}

func TestFile_LoadMissing(t *testing.T) {
	st := newTestFileStore(t)

	e, err := st.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestFile_SaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte("first")}))
	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte("second")}))

	e, err := st.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(e.Data))

	files, err := os.ReadDir(st.Dir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "k.json", files[0].Name())
}

func TestFile_StoredAtIsModTime(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte("x"), StoredAt: old}))

	e, err := st.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, e.StoredAt.Equal(old.UTC()), "got %v", e.StoredAt)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, st.Touch("k", now))
	e, err = st.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, e.StoredAt.Equal(now.UTC()))
}

func TestFile_KeysDeleteClear(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, st.Save(ctx, Entry{Key: k, Data: []byte(k)}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), []byte("keep"), 0o644))

	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)

	require.NoError(t, st.Delete(ctx, "b"))
	require.NoError(t, st.Delete(ctx, "b"), "deleting a missing key is not an error")
	keys, err = st.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, keys)

	require.NoError(t, st.Clear(ctx))
	keys, err = st.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = os.Stat(filepath.Join(st.Dir(), "notes.txt"))
	assert.NoError(t, err)
}

func TestFile_UnsafeKeys(t *testing.T) {
	st := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Entry{Key: "../../etc/passwd", Data: []byte("x")}))
	files, err := os.ReadDir(st.Dir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.False(t, strings.Contains(files[0].Name(), "/"))

	e, err := st.Load(ctx, "../../etc/passwd")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "x", string(e.Data))
}

func TestFile_KeysOnMissingDir(t *testing.T) {
	st, err := NewFile(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)

	keys, err := st.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestNewFile_EmptyDir(t *testing.T) {
	_, err := NewFile("")
	assert.Error(t, err)
}
