package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/city-insights/internal/cache"
	"github.com/sells-group/city-insights/internal/economy"
)

// Economy snapshot keys.
const (
	CountyKey = "census_cbp_wake_county"
	ZonesKey  = "census_zbp_raleigh"
)

// EconomyKey is the cache key of the regional series snapshot.
func EconomyKey(startYear int) string {
	return fmt.Sprintf("fred_economy_data_%d", startYear)
}

func startDate(year int) string {
	return fmt.Sprintf("%d-01-01", year)
}

// regionalSeries fetches the whole regional catalogue concurrently. A series
// that fails keeps its error in its own slot; the snapshot is then not cached.
func (s *Service) regionalSeries(ctx context.Context, startYear int, refresh bool) (map[string]economy.SeriesSummary, error) {
	out, err := cache.GetOrLoad(ctx, s.cache, EconomyKey(startYear), s.opts.TTL.Economy, refresh,
		func(ctx context.Context) (map[string]economy.SeriesSummary, error) {
			var (
				mu     sync.Mutex
				result = make(map[string]economy.SeriesSummary, len(economy.Series))
				errs   []error
			)
			g, gCtx := errgroup.WithContext(ctx)
			g.SetLimit(s.opts.Concurrency)
			for _, def := range economy.Series {
				g.Go(func() error {
					obs, err := s.fred.Observations(gCtx, def.ID, startDate(startYear))
					summary := economy.SummarizeDef(def, obs, err)
					mu.Lock()
					defer mu.Unlock()
					result[def.Key] = summary
					if err != nil {
						errs = append(errs, err)
					}
					return nil
				})
			}
			_ = g.Wait()
			return result, errors.Join(errs...)
		})
	if err != nil {
		s.log.Warn("economic series degraded", zap.Error(err))
	}
	return out, err
}

// countyTable fetches the county business patterns. A failure yields an
// empty table carrying the error.
func (s *Service) countyTable(ctx context.Context, refresh bool) (economy.CountyTable, error) {
	tbl, err := cache.GetOrLoad(ctx, s.cache, CountyKey, s.opts.TTL.County, refresh,
		func(ctx context.Context) (economy.CountyTable, error) {
			rows, err := s.census.CountyPatterns(ctx, economy.WakeStateFIPS, economy.WakeCountyFIPS)
			if err != nil {
				return economy.CountyTable{}, err
			}
			return economy.BuildCountyTable(rows), nil
		})
	if err != nil {
		s.log.Warn("county business patterns unavailable", zap.Error(err))
		msg := err.Error()
		tbl = economy.CountyTable{ByIndustry: map[string]economy.Industry{}, Error: &msg}
	}
	return tbl, err
}

// zoneBusiness fetches the ZIP business patterns for every zone. Failed
// zones are left out.
func (s *Service) zoneBusiness(ctx context.Context, refresh bool) (map[string]economy.ZoneBusiness, error) {
	out, err := cache.GetOrLoad(ctx, s.cache, ZonesKey, s.opts.TTL.Zones, refresh,
		func(ctx context.Context) (map[string]economy.ZoneBusiness, error) {
			var (
				mu     sync.Mutex
				result = map[string]economy.ZoneBusiness{}
				errs   []error
			)
			g, gCtx := errgroup.WithContext(ctx)
			g.SetLimit(s.opts.Concurrency)
			for _, zip := range s.zones.Zones() {
				g.Go(func() error {
					row, ok, err := s.census.ZipPatterns(gCtx, zip)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err != nil:
						errs = append(errs, err)
					case ok:
						result[zip] = economy.NewZoneBusiness(zip, row, s.zones)
					}
					return nil
				})
			}
			_ = g.Wait()
			return result, errors.Join(errs...)
		})
	if err != nil {
		s.log.Warn("zone business patterns degraded", zap.Error(err))
	}
	if out == nil {
		out = map[string]economy.ZoneBusiness{}
	}
	return out, err
}

func (s *Service) censusConfigured() *bool {
	ok := s.census.Configured()
	return &ok
}

// EconomyOverview returns the headline economy payload.
func (s *Service) EconomyOverview(ctx context.Context, refresh bool) economy.Overview {
	var (
		series map[string]economy.SeriesSummary
		county economy.CountyTable
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		series, _ = s.regionalSeries(gCtx, s.opts.EconomyStartYear, refresh)
		return nil
	})
	g.Go(func() error {
		county, _ = s.countyTable(gCtx, refresh)
		return nil
	})
	_ = g.Wait()

	return economy.BuildOverview(series, county, economy.APIStatus{
		FREDConfigured:   s.fred.Configured(),
		CensusConfigured: s.censusConfigured(),
	})
}

// LaborResponse holds the labor-market series.
type LaborResponse struct {
	LaborMarket   map[string]economy.SeriesSummary `json:"labor_market"`
	APIConfigured bool                             `json:"api_configured"`
}

// Labor returns the labor-market series.
func (s *Service) Labor(ctx context.Context, refresh bool) LaborResponse {
	series, _ := s.regionalSeries(ctx, s.opts.EconomyStartYear, refresh)
	return LaborResponse{
		LaborMarket:   economy.FilterCategories(series, economy.CategoryLabor),
		APIConfigured: s.fred.Configured(),
	}
}

// GrowthResponse holds the growth and investment series.
type GrowthResponse struct {
	GrowthData    map[string]economy.SeriesSummary `json:"growth_data"`
	APIConfigured bool                             `json:"api_configured"`
}

// Growth returns the growth and investment series.
func (s *Service) Growth(ctx context.Context, refresh bool) GrowthResponse {
	series, _ := s.regionalSeries(ctx, s.opts.EconomyStartYear, refresh)
	return GrowthResponse{
		GrowthData:    economy.FilterCategories(series, economy.CategoryGrowth, economy.CategoryInvestment),
		APIConfigured: s.fred.Configured(),
	}
}

// IndustriesResponse is the county sector breakdown.
type IndustriesResponse struct {
	Industries     economy.RankedIndustries `json:"industries"`
	Totals         economy.Totals           `json:"totals"`
	DiversityScore int                      `json:"diversity_score"`
	APIConfigured  bool                     `json:"api_configured"`
}

// Industries returns the county sectors, largest employer first.
func (s *Service) Industries(ctx context.Context, refresh bool) IndustriesResponse {
	tbl, _ := s.countyTable(ctx, refresh)
	return IndustriesResponse{
		Industries:     economy.RankIndustries(tbl.ByIndustry),
		Totals:         tbl.Totals,
		DiversityScore: economy.DiversityScore(tbl.ByIndustry),
		APIConfigured:  s.census.Configured(),
	}
}

// ZoneBusinessResponse is the per-zone business breakdown.
type ZoneBusinessResponse struct {
	ZipData       []economy.ZoneBusiness `json:"zip_data"`
	APIConfigured bool                   `json:"api_configured"`
}

// ZoneBusiness returns zones ranked by establishments.
func (s *Service) ZoneBusiness(ctx context.Context, refresh bool) ZoneBusinessResponse {
	zones, _ := s.zoneBusiness(ctx, refresh)
	return ZoneBusinessResponse{ZipData: economy.RankZones(zones), APIConfigured: s.census.Configured()}
}

// SeriesResponse is one regional series with its long history.
type SeriesResponse struct {
	Series        string                `json:"series"`
	Data          economy.SeriesSummary `json:"data"`
	APIConfigured bool                  `json:"api_configured"`
}

// Series returns a single regional series from TimeseriesStartYear.
func (s *Service) Series(ctx context.Context, key string, refresh bool) (SeriesResponse, error) {
	if _, ok := economy.LookupSeries(key); !ok {
		return SeriesResponse{}, eris.Wrapf(ErrUnknownSeries, "series %q", key)
	}
	series, _ := s.regionalSeries(ctx, s.opts.TimeseriesStartYear, refresh)
	return SeriesResponse{Series: key, Data: series[key], APIConfigured: s.fred.Configured()}, nil
}
