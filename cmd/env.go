package main

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/city-insights/internal/cache"
	"github.com/sells-group/city-insights/internal/config"
	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/fetcher"
	"github.com/sells-group/city-insights/internal/insights"
	"github.com/sells-group/city-insights/internal/refdata"
	"github.com/sells-group/city-insights/internal/store"
)

// serviceEnv holds the store and the service built on it.
type serviceEnv struct {
	Store   store.Store
	Service *insights.Service
}

// Close releases the store.
func (e *serviceEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initService opens the snapshot store and wires the feeds, reference data
// and service from c. Callers should defer env.Close().
func initService(ctx context.Context, c *config.Config) (*serviceEnv, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.StoreOptions())
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.Feeds.UserAgent,
		Timeout:   c.FeedTimeout(),
		Guard:     c.Resilience().Guard(),
	})
	arcgis := feed.NewArcGIS(f, c.Feeds.PageSize, c.Feeds.MaxRecords)

	ref := refdata.NewLoader(refdata.Options{
		DemographicsPath: c.Region.DemographicsPath,
		AreaPlanSource:   c.Region.AreaPlanSource,
		AreaPlansURL:     c.Feeds.AreaPlansURL,
		AreaPlanField:    c.Region.AreaPlanField,
		ArcGIS:           arcgis,
		HTTPClient:       &http.Client{Timeout: c.FeedTimeout()},
	})

	svc := insights.New(insights.Deps{
		Cache:   cache.New(st),
		ArcGIS:  arcgis,
		FRED:    feed.NewFRED(f, c.FRED.BaseURL, c.FRED.APIKey),
		Census:  feed.NewCensus(f, c.Census.BaseURL, c.Census.Year, c.Census.APIKey),
		RefData: ref,
	}, c.InsightsOptions(loc))

	return &serviceEnv{Store: st, Service: svc}, nil
}
