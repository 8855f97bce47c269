// Package fetcher is the HTTP transport shared by every upstream feed:
// per-host adaptive rate limiting, retries and a circuit breaker per host.
package fetcher

import (
	"context"
	"io"
	"net/url"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches rawURL with query appended and returns the response body.
	// Non-2xx responses are errors.
	Download(ctx context.Context, rawURL string, query url.Values) (io.ReadCloser, error)

	// GetJSON fetches rawURL with query appended and decodes the JSON body into dst.
	GetJSON(ctx context.Context, rawURL string, query url.Values, dst any) error
}
