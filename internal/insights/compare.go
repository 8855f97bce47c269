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

// MetroKey is the cache key of one metro's comparison snapshot.
func MetroKey(metro string, startYear int) string {
	return fmt.Sprintf("fred_metro_%s_%d", metro, startYear)
}

// metroData fetches every comparison metric for one metro.
func (s *Service) metroData(ctx context.Context, m economy.Metro, startYear int, refresh bool) (economy.MetroData, error) {
	return cache.GetOrLoad(ctx, s.cache, MetroKey(m.Key, startYear), s.opts.TTL.Metro, refresh,
		func(ctx context.Context) (economy.MetroData, error) {
			md := economy.NewMetroData(m)
			var errs []error
			for _, metric := range economy.Metrics {
				seriesID := m.Series[metric.Key]
				obs, err := s.fred.Observations(ctx, seriesID, startDate(startYear))
				md.Metrics[metric.Key] = economy.SummarizeMetric(metric, seriesID, obs, err)
				if err != nil {
					errs = append(errs, err)
				}
			}
			return md, errors.Join(errs...)
		})
}

// allMetros fetches every metro concurrently, keyed by metro.
func (s *Service) allMetros(ctx context.Context, startYear int, refresh bool) (map[string]economy.MetroData, error) {
	var (
		mu   sync.Mutex
		out  = make(map[string]economy.MetroData, len(economy.Metros))
		errs []error
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, m := range economy.Metros {
		g.Go(func() error {
			md, err := s.metroData(gCtx, m, startYear, refresh)
			mu.Lock()
			defer mu.Unlock()
			out[m.Key] = md
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		s.log.Warn("metro comparison degraded", zap.Error(err))
	}
	return out, err
}

// CompareStatus reports whether FRED is configured.
type CompareStatus struct {
	FREDConfigured bool `json:"fred_configured"`
}

// CompareResponse is the metro comparison payload.
type CompareResponse struct {
	Metros     []economy.Metro                     `json:"metros"`
	Comparison map[string]economy.MetricComparison `json:"comparison"`
	MetroData  map[string]economy.MetroData        `json:"metro_data"`
	APIStatus  CompareStatus                       `json:"api_status"`
}

// CompareOverview lines up every metric across the peer metros.
func (s *Service) CompareOverview(ctx context.Context, refresh bool) CompareResponse {
	data, _ := s.allMetros(ctx, s.opts.EconomyStartYear, refresh)
	return CompareResponse{
		Metros:     economy.Metros,
		Comparison: economy.Compare(data),
		MetroData:  data,
		APIStatus:  CompareStatus{FREDConfigured: s.fred.Configured()},
	}
}

// CompareTimeseries returns one metric's history for every metro.
func (s *Service) CompareTimeseries(ctx context.Context, metric string, refresh bool) (economy.MetricTimeseries, error) {
	m, ok := economy.LookupMetric(metric)
	if !ok {
		return economy.MetricTimeseries{}, eris.Wrapf(ErrUnknownMetric, "metric %q", metric)
	}
	data, _ := s.allMetros(ctx, s.opts.EconomyStartYear, refresh)
	return economy.Timeseries(m, data), nil
}
