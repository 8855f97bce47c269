// Package api serves the dashboard JSON endpoints over chi.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/aggregate"
	"github.com/sells-group/city-insights/internal/economy"
	"github.com/sells-group/city-insights/internal/insights"
)

// Insights is the service surface the handlers need. *insights.Service
// implements it.
type Insights interface {
	Residential(ctx context.Context, f aggregate.HousingFilter, refresh bool) aggregate.FilteredHousing
	HousingAnalytics(ctx context.Context, refresh bool) aggregate.HousingAnalytics
	Demographics(ctx context.Context) insights.DemographicsResponse

	BusinessPermits(ctx context.Context, refresh bool) insights.BusinessResponse
	Pipeline(ctx context.Context, refresh bool) aggregate.Pipeline
	TopProjects(ctx context.Context, refresh bool) insights.TopProjectsResponse
	Map(ctx context.Context, refresh bool) aggregate.MapData

	EconomyOverview(ctx context.Context, refresh bool) economy.Overview
	Labor(ctx context.Context, refresh bool) insights.LaborResponse
	Growth(ctx context.Context, refresh bool) insights.GrowthResponse
	Industries(ctx context.Context, refresh bool) insights.IndustriesResponse
	ZoneBusiness(ctx context.Context, refresh bool) insights.ZoneBusinessResponse
	Series(ctx context.Context, key string, refresh bool) (insights.SeriesResponse, error)

	CompareOverview(ctx context.Context, refresh bool) insights.CompareResponse
	CompareTimeseries(ctx context.Context, metric string, refresh bool) (economy.MetricTimeseries, error)

	Invalidate(ctx context.Context, key string) error
	CachedKeys(ctx context.Context) ([]string, error)
}

var _ Insights = (*insights.Service)(nil)

// Options configures the router.
type Options struct {
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// Timeout bounds one request. Zero means two minutes.
	Timeout time.Duration
}

// Server holds the handlers.
type Server struct {
	svc Insights
	log *zap.Logger
}

// NewRouter builds the HTTP handler for svc.
func NewRouter(svc Insights, opts Options) http.Handler {
	s := &Server{svc: svc, log: zap.L().With(zap.String("component", "api"))}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", s.health)

	r.Route("/housing/api", func(r chi.Router) {
		r.Get("/permits/residential", s.residential)
		r.Get("/analytics", s.housingAnalytics)
		r.Get("/demographics", s.demographics)
	})

	r.Route("/business/api", func(r chi.Router) {
		r.Get("/permits", s.businessPermits)
		r.Get("/pipeline", s.pipeline)
		r.Get("/top-projects", s.topProjects)
		r.Get("/map", s.businessMap)
	})

	r.Route("/economy/api", func(r chi.Router) {
		r.Get("/overview", s.economyOverview)
		r.Get("/labor", s.labor)
		r.Get("/growth", s.growth)
		r.Get("/industries", s.industries)
		r.Get("/zip", s.zoneBusiness)
		r.Get("/timeseries/{series}", s.series)
	})

	r.Route("/compare/api", func(r chi.Router) {
		r.Get("/overview", s.compareOverview)
		r.Get("/timeseries/{metric}", s.compareTimeseries)
	})

	r.Route("/api/cache", func(r chi.Router) {
		r.Get("/keys", s.cacheKeys)
		r.Post("/invalidate", s.invalidate)
	})

	return r
}
