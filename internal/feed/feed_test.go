package feed

import (
	"time"

	"github.com/sells-group/city-insights/internal/fetcher"
	"github.com/sells-group/city-insights/internal/resilience"
)

func newTestFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout: 5 * time.Second,
		Guard: resilience.NewGuard(
			resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond},
			resilience.CircuitBreakerConfig{FailureThreshold: 100},
		),
	})
}
