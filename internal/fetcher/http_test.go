package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/city-insights/internal/resilience"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		Guard: resilience.NewGuard(
			resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond},
			resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour},
		),
	})
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "geojson", r.URL.Query().Get("f"))
		assert.Equal(t, "1", r.URL.Query().Get("keep"))
		_, _ = w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL+"/query?keep=1", url.Values{"f": {"geojson"}})
	require.NoError(t, err)
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	_ = body.Close()
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := newTestFetcher()
	for range 2 {
		_, err := f.Download(context.Background(), srv.URL, nil)
		require.Error(t, err)
	}
	before := calls.Load()

	_, err := f.Download(context.Background(), srv.URL, nil)
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, calls.Load())

	u, _ := url.Parse(srv.URL)
	assert.Equal(t, resilience.CircuitOpen, f.Guard().States()[u.Host])
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[{"date":"2024-01-01","value":"3.1"}]}`))
	}))
	defer srv.Close()

	var dst struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	require.NoError(t, newTestFetcher().GetJSON(context.Background(), srv.URL, nil, &dst))
	require.Len(t, dst.Observations, 1)
	assert.Equal(t, "3.1", dst.Observations[0].Value)
}

func TestGetJSON_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	var dst map[string]any
	err := newTestFetcher().GetJSON(context.Background(), srv.URL, nil, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json")
}

func TestDownload_BadURL(t *testing.T) {
	_, err := newTestFetcher().Download(context.Background(), "://nope", nil)
	require.Error(t, err)
}

func TestDownload_TransportErrorOmitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL + "/series/observations"
	srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second, Guard: resilience.Settings{MaxAttempts: 1}.Guard()})
	_, err := f.Download(context.Background(), target, url.Values{"api_key": {"SECRET-KEY-123"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.NotContains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "/series/observations")
	assert.True(t, resilience.IsTransient(err))
}

func TestAdaptiveLimiter(t *testing.T) {
	a := NewAdaptiveLimiter(10, 10)
	a.OnSuccess()
	assert.InDelta(t, 12, float64(a.Limit()), 1e-9)

	for range 20 {
		a.OnSuccess()
	}
	assert.Equal(t, rate.Limit(20), a.Limit())

	for range 10 {
		a.OnRateLimit("example.com")
	}
	assert.Equal(t, rate.Limit(2.5), a.Limit())
}

func TestDefaultAdaptiveLimiters(t *testing.T) {
	lims := DefaultAdaptiveLimiters()
	assert.Contains(t, lims, HostArcGIS)
	assert.Contains(t, lims, HostFRED)
	assert.Contains(t, lims, HostCensus)
}
