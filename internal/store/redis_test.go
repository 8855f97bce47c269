package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisStore needs a live Redis at INSIGHTS_TEST_REDIS_ADDR.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("INSIGHTS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("INSIGHTS_TEST_REDIS_ADDR not set")
	}
	prefix := "city-insights-test:" + uuid.NewString() + ":"
	st, err := NewRedis(context.Background(), addr, "", 0, prefix)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Clear(context.Background())
		_ = st.Close()
	})
	return st
}

func TestRedis_RoundTrip(t *testing.T) {
	st := newTestRedisStore(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, st.Save(ctx, Entry{Key: "k", Data: []byte(`{"x":1}`), StoredAt: at}))
	e, err := st.Load(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, `{"x":1}`, string(e.Data))
	assert.True(t, e.StoredAt.Equal(at))

	keys, err := st.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	require.NoError(t, st.Delete(ctx, "k"))
	e, err = st.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	_, err := NewRedis(context.Background(), "", "", 0, "")
	assert.Error(t, err)
}

func TestNewRedisWithClient_DefaultPrefix(t *testing.T) {
	st := NewRedisWithClient(nil, "")
	assert.Equal(t, DefaultRedisPrefix, st.prefix)
}
