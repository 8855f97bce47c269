package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/city-insights/internal/resilience"
)

// Upstream hosts with known request budgets.
const (
	HostArcGIS = "services.arcgis.com"
	HostFRED   = "api.stlouisfed.org"
	HostCensus = "api.census.gov"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration

	// Limiters overrides DefaultAdaptiveLimiters when non-nil.
	Limiters map[string]*AdaptiveLimiter

	// Guard wraps every request. Defaults to a Guard built from zero Settings.
	Guard *resilience.Guard
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit(host string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.String("host", host),
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// DefaultAdaptiveLimiters returns limiters for the permit and statistics hosts.
// FRED allows 120 requests a minute per key.
func DefaultAdaptiveLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		HostArcGIS: NewAdaptiveLimiter(5, 5),
		HostFRED:   NewAdaptiveLimiter(1.5, 3),
		HostCensus: NewAdaptiveLimiter(5, 5),
	}
}

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*AdaptiveLimiter
	fallback *rate.Limiter
	guard    *resilience.Guard
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "city-insights/1.0"
	}
	limiters := opts.Limiters
	if limiters == nil {
		limiters = DefaultAdaptiveLimiters()
	}
	guard := opts.Guard
	if guard == nil {
		guard = resilience.Settings{}.Guard()
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
		fallback: rate.NewLimiter(20, 20),
		guard:    guard,
	}
}

// Guard exposes the fetcher's guard so callers can report breaker states.
func (f *HTTPFetcher) Guard() *resilience.Guard {
	return f.guard
}

func (f *HTTPFetcher) wait(ctx context.Context, host string) error {
	if lim, ok := f.limiters[host]; ok {
		return lim.Wait(ctx)
	}
	return f.fallback.Wait(ctx)
}

// Download fetches the URL and returns the buffered response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string, query url.Values) (io.ReadCloser, error) {
	u, err := buildURL(rawURL, query)
	if err != nil {
		return nil, err
	}

	body, err := resilience.Call(ctx, f.guard, u.Host, "download", func(ctx context.Context) ([]byte, error) {
		return f.get(ctx, u)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: download %s", u.Host+u.Path)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

// GetJSON fetches the URL and decodes the JSON body into dst.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, query url.Values, dst any) error {
	body, err := f.Download(ctx, rawURL, query)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return eris.Wrapf(err, "fetcher: decode json from %s", rawURL)
	}
	return nil
}

// get performs one rate-limited attempt. The body is read fully so a dropped
// connection mid-body is retried like any other transient failure.
func (f *HTTPFetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	if err := f.wait(ctx, u.Host); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(err, u)
	}
	defer resp.Body.Close() //nolint:errcheck

	lim := f.limiters[u.Host]
	if resp.StatusCode == http.StatusTooManyRequests && lim != nil {
		lim.OnRateLimit(u.Host)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resilience.StatusError(resp.StatusCode, u.Host+u.Path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "read body"), 0)
	}
	if lim != nil {
		lim.OnSuccess()
	}
	return data, nil
}

// transportError drops the request URL that *url.Error carries. Query strings
// hold upstream API keys and these messages end up in logs and responses.
func transportError(err error, u *url.URL) error {
	transient := resilience.IsTransient(err)
	var ue *url.Error
	if errors.As(err, &ue) {
		err = eris.Wrapf(ue.Err, "%s %s", ue.Op, u.Host+u.Path)
	} else {
		err = eris.Wrap(err, u.Host+u.Path)
	}
	if transient {
		return resilience.NewTransientError(err, 0)
	}
	return err
}

func buildURL(rawURL string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}
