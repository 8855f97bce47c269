// Package refdata owns slowly-changing reference data: the demographics table
// and the area-plan polygons. Both are loaded once per process by the
// composition root's Loader and shared read-only.
package refdata

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/model"
)

// Options configures a Loader.
type Options struct {
	// DemographicsPath is a JSON file shaped like model.Demographics.
	DemographicsPath string

	// AreaPlanSource is an optional GeoJSON, shapefile or zipped shapefile
	// (path or URL). When empty the area plans come from AreaPlansURL.
	AreaPlanSource string
	AreaPlansURL   string
	AreaPlanField  string

	// AreaPlanRetryDelay is how long a failed area-plan load is remembered
	// before the next attempt. Default: 30s.
	AreaPlanRetryDelay time.Duration

	ArcGIS     *feed.ArcGIS
	HTTPClient *http.Client
}

const defaultAreaPlanRetryDelay = 30 * time.Second

// Loader loads reference data on first use and keeps it for the life of the
// process. A failed area-plan load is retried once the retry delay passes.
type Loader struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time

	demoOnce sync.Once
	demo     model.Demographics

	mu         sync.Mutex
	plans      []geo.ZonePolygon
	plansDone  bool
	plansRetry time.Time
	flight     singleflight.Group
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	if opts.AreaPlansURL == "" {
		opts.AreaPlansURL = feed.RaleighAreaPlansURL
	}
	if opts.AreaPlanField == "" {
		opts.AreaPlanField = feed.AreaPlanNameField
	}
	if opts.AreaPlanRetryDelay <= 0 {
		opts.AreaPlanRetryDelay = defaultAreaPlanRetryDelay
	}
	return &Loader{
		opts: opts,
		log:  zap.L().With(zap.String("component", "refdata")),
		now:  time.Now,
	}
}

// Demographics returns the demographics table. A missing or corrupt file
// yields an empty table.
func (l *Loader) Demographics() model.Demographics {
	l.demoOnce.Do(func() {
		l.demo = LoadDemographics(l.opts.DemographicsPath)
	})
	return l.demo
}

// LoadDemographics reads a demographics file without caching it.
func LoadDemographics(path string) model.Demographics {
	empty := model.Demographics{ZipCodes: map[string]model.ZoneProfile{}}
	if path == "" {
		return empty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Warn("demographics file unavailable", zap.String("path", path), zap.Error(err))
		return empty
	}
	var d model.Demographics
	if err := json.Unmarshal(data, &d); err != nil {
		zap.L().Warn("demographics file corrupt", zap.String("path", path), zap.Error(err))
		return empty
	}
	if d.ZipCodes == nil {
		d.ZipCodes = map[string]model.ZoneProfile{}
	}
	return d
}

// AreaPlans returns the area-plan polygons, loading them on first use.
// Concurrent callers share one load and stop waiting when their own ctx ends.
// Failures yield nil until the retry delay passes.
func (l *Loader) AreaPlans(ctx context.Context) []geo.ZonePolygon {
	l.mu.Lock()
	plans, done, retry := l.plans, l.plansDone, l.plansRetry
	l.mu.Unlock()
	if done {
		return plans
	}
	if l.now().Before(retry) {
		return nil
	}

	ch := l.flight.DoChan("area_plans", func() (any, error) {
		// The load outlives any single caller; the fetcher timeout bounds it.
		plans, err := l.loadAreaPlans(context.WithoutCancel(ctx))

		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.plansRetry = l.now().Add(l.opts.AreaPlanRetryDelay)
			l.log.Warn("area plans unavailable", zap.Error(err), zap.Duration("retry_in", l.opts.AreaPlanRetryDelay))
			return nil, err
		}
		l.plans, l.plansDone = plans, true
		l.log.Info("area plans loaded", zap.Int("polygons", len(plans)))
		return plans, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-ch:
		plans, _ := res.Val.([]geo.ZonePolygon)
		return plans
	}
}

func (l *Loader) loadAreaPlans(ctx context.Context) ([]geo.ZonePolygon, error) {
	if l.opts.AreaPlanSource != "" {
		return geo.LoadPolygons(ctx, l.opts.HTTPClient, l.opts.AreaPlanSource, l.opts.AreaPlanField)
	}
	if l.opts.ArcGIS == nil {
		return nil, nil
	}
	fc, err := l.opts.ArcGIS.Query(ctx, feed.AreaPlanQuery(l.opts.AreaPlansURL))
	if err != nil {
		return nil, err
	}
	polys, skipped := geo.PolygonsFromFeatures(fc.Features, l.opts.AreaPlanField)
	if skipped > 0 {
		l.log.Debug("area plan features skipped", zap.Int("skipped", skipped))
	}
	return polys, nil
}
