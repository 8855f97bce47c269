package feed

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/city-insights/internal/fetcher"
)

// DefaultFREDURL is the FRED observations endpoint.
const DefaultFREDURL = "https://api.stlouisfed.org/fred/series/observations"

// ErrFREDNotConfigured is returned for every request when no API key is set.
var ErrFREDNotConfigured = eris.New("FRED_API_KEY not configured")

// Observation is one dated value of an economic series.
type Observation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// FRED fetches series observations from the St. Louis Fed.
type FRED struct {
	fetcher fetcher.Fetcher
	baseURL string
	apiKey  string
}

// NewFRED creates a FRED client. An empty baseURL uses DefaultFREDURL.
func NewFRED(f fetcher.Fetcher, baseURL, apiKey string) *FRED {
	if baseURL == "" {
		baseURL = DefaultFREDURL
	}
	return &FRED{fetcher: f, baseURL: baseURL, apiKey: apiKey}
}

// Configured reports whether an API key is set.
func (c *FRED) Configured() bool { return c.apiKey != "" }

// Observations returns seriesID's observations in ascending date order from
// start ("YYYY-MM-DD", optional). FRED marks missing values with "."; those
// and any other non-numeric values are skipped.
func (c *FRED) Observations(ctx context.Context, seriesID, start string) ([]Observation, error) {
	if !c.Configured() {
		return nil, ErrFREDNotConfigured
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "asc")
	if start != "" {
		q.Set("observation_start", start)
	}

	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := c.fetcher.GetJSON(ctx, c.baseURL, q, &resp); err != nil {
		return nil, eris.Wrapf(err, "fred: series %s", seriesID)
	}

	obs := make([]Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		raw := strings.TrimSpace(o.Value)
		if raw == "." || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		obs = append(obs, Observation{Date: o.Date, Value: v})
	}
	return obs, nil
}
