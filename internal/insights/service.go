// Package insights composes the feeds, cache, reference data and aggregators
// into the dashboard services. Every request recomputes its aggregates from
// cached upstream snapshots; only the snapshots are persisted.
package insights

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/aggregate"
	"github.com/sells-group/city-insights/internal/cache"
	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/refdata"
	"github.com/sells-group/city-insights/internal/score"
)

var (
	// ErrUnknownSeries is returned for a series key outside the catalogue.
	ErrUnknownSeries = eris.New("insights: unknown series")
	// ErrUnknownMetric is returned for a metric key outside the catalogue.
	ErrUnknownMetric = eris.New("insights: unknown metric")
)

// TTLs are the freshness windows per cached snapshot.
type TTLs struct {
	Residential time.Duration
	Commercial  time.Duration
	Pipeline    time.Duration
	Economy     time.Duration
	County      time.Duration
	Zones       time.Duration
	Metro       time.Duration
}

// DefaultTTLs returns the standard freshness windows.
func DefaultTTLs() TTLs {
	return TTLs{
		Residential: 24 * time.Hour,
		Commercial:  12 * time.Hour,
		Pipeline:    6 * time.Hour,
		Economy:     24 * time.Hour,
		County:      168 * time.Hour,
		Zones:       168 * time.Hour,
		Metro:       24 * time.Hour,
	}
}

// Options tunes a Service. Zero values take the defaults.
type Options struct {
	BuildingPermitsURL string
	ADUPermitsURL      string

	// PermitStartYear bounds the permit queries.
	PermitStartYear int
	// EconomyStartYear bounds the overview and comparison series;
	// TimeseriesStartYear bounds the single-series history.
	EconomyStartYear    int
	TimeseriesStartYear int

	// Concurrency caps parallel upstream calls within one request.
	Concurrency int

	Location *time.Location
	TTL      TTLs
}

func (o *Options) setDefaults() {
	if o.BuildingPermitsURL == "" {
		o.BuildingPermitsURL = feed.RaleighBuildingPermitsURL
	}
	if o.ADUPermitsURL == "" {
		o.ADUPermitsURL = feed.RaleighADUPermitsURL
	}
	if o.PermitStartYear == 0 {
		o.PermitStartYear = 2020
	}
	if o.EconomyStartYear == 0 {
		o.EconomyStartYear = 2015
	}
	if o.TimeseriesStartYear == 0 {
		o.TimeseriesStartYear = 2010
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	def := DefaultTTLs()
	orDefault(&o.TTL.Residential, def.Residential)
	orDefault(&o.TTL.Commercial, def.Commercial)
	orDefault(&o.TTL.Pipeline, def.Pipeline)
	orDefault(&o.TTL.Economy, def.Economy)
	orDefault(&o.TTL.County, def.County)
	orDefault(&o.TTL.Zones, def.Zones)
	orDefault(&o.TTL.Metro, def.Metro)
}

func orDefault(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// Deps are the collaborators a Service needs. Zones and Scores default to
// the Raleigh tables.
type Deps struct {
	Cache   *cache.Cache
	ArcGIS  *feed.ArcGIS
	FRED    *feed.FRED
	Census  *feed.Census
	RefData *refdata.Loader
	Zones   *geo.Index
	Scores  *score.Engine
}

// Service answers the housing, business, economy and comparison queries.
type Service struct {
	cache   *cache.Cache
	arcgis  *feed.ArcGIS
	fred    *feed.FRED
	census  *feed.Census
	refdata *refdata.Loader
	zones   *geo.Index
	scores  *score.Engine
	opts    Options
	log     *zap.Logger
}

// New creates a Service.
func New(deps Deps, opts Options) *Service {
	opts.setDefaults()
	if deps.Zones == nil {
		deps.Zones = geo.DefaultIndex()
	}
	if deps.Scores == nil {
		deps.Scores = score.DefaultEngine()
	}
	if deps.RefData == nil {
		deps.RefData = refdata.NewLoader(refdata.Options{ArcGIS: deps.ArcGIS})
	}
	return &Service{
		cache:   deps.Cache,
		arcgis:  deps.ArcGIS,
		fred:    deps.FRED,
		census:  deps.Census,
		refdata: deps.RefData,
		zones:   deps.Zones,
		scores:  deps.Scores,
		opts:    opts,
		log:     zap.L().With(zap.String("component", "insights")),
	}
}

// Zones returns the zone index in use.
func (s *Service) Zones() *geo.Index { return s.zones }

// enricher builds the per-request classifier with the area plans, loading
// them on first use.
func (s *Service) enricher(ctx context.Context) aggregate.Enricher {
	return aggregate.Enricher{
		Zones:     s.zones,
		AreaPlans: s.refdata.AreaPlans(ctx),
		Scores:    s.scores,
		Location:  s.opts.Location,
	}
}

// Invalidate drops one cached snapshot, or all of them when key is empty.
func (s *Service) Invalidate(ctx context.Context, key string) error {
	return s.cache.Invalidate(ctx, key)
}

// CachedKeys lists the cached snapshot keys.
func (s *Service) CachedKeys(ctx context.Context) ([]string, error) {
	return s.cache.Keys(ctx)
}

// Warm refetches every snapshot and stores the fresh copies. Degraded
// snapshots are not stored; their errors are joined into the result.
func (s *Service) Warm(ctx context.Context) error {
	var errs []error
	record := func(name string, err error) {
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "insights: warm %s", name))
		}
	}

	_, err := s.residentialFeatures(ctx, true)
	record("residential permits", err)
	_, err = s.commercialFeatures(ctx, true)
	record("commercial permits", err)
	_, err = s.pipelineFeatures(ctx, true)
	record("pipeline permits", err)
	_, err = s.regionalSeries(ctx, s.opts.EconomyStartYear, true)
	record("economic series", err)
	_, err = s.countyTable(ctx, true)
	record("county business patterns", err)
	_, err = s.zoneBusiness(ctx, true)
	record("zone business patterns", err)
	_, err = s.allMetros(ctx, s.opts.EconomyStartYear, true)
	record("metro comparison", err)

	return errors.Join(errs...)
}
