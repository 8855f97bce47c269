package insights

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/city-insights/internal/aggregate"
	"github.com/sells-group/city-insights/internal/cache"
	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/model"
)

// Commercial snapshot keys.
const PipelineKey = "commercial_pipeline"

// CommercialKey is the cache key of the commercial permit snapshot.
func CommercialKey(startYear int) string {
	return fmt.Sprintf("commercial_permits_new_%d", startYear)
}

// topProjectsLimit caps the top-projects listing.
const topProjectsLimit = 25

func (s *Service) commercialFeatures(ctx context.Context, refresh bool) (model.FeatureCollection, error) {
	key := CommercialKey(s.opts.PermitStartYear)
	fc, err := cache.GetOrLoad(ctx, s.cache, key, s.opts.TTL.Commercial, refresh,
		func(ctx context.Context) (model.FeatureCollection, error) {
			return s.arcgis.QueryAll(ctx, feed.CommercialQuery(s.opts.BuildingPermitsURL, s.opts.PermitStartYear))
		})
	if err != nil {
		s.log.Warn("commercial permits degraded", zap.Error(err))
	}
	return fc, err
}

func (s *Service) pipelineFeatures(ctx context.Context, refresh bool) (model.FeatureCollection, error) {
	fc, err := cache.GetOrLoad(ctx, s.cache, PipelineKey, s.opts.TTL.Pipeline, refresh,
		func(ctx context.Context) (model.FeatureCollection, error) {
			return s.arcgis.Query(ctx, feed.PipelineQuery(s.opts.BuildingPermitsURL))
		})
	if err != nil {
		s.log.Warn("pipeline permits unavailable", zap.Error(err))
	}
	return fc, err
}

// businessPermits classifies the commercial snapshot. Business permits do
// not use area plans.
func (s *Service) businessPermits(ctx context.Context, fc model.FeatureCollection) []model.BusinessPermit {
	e := aggregate.Enricher{Zones: s.zones, Location: s.opts.Location}
	return aggregate.ClassifyBusiness(e, fc.Features)
}

// BusinessResponse is the commercial analytics payload.
type BusinessResponse struct {
	Analytics   aggregate.BusinessAnalytics `json:"analytics"`
	PermitCount int                         `json:"permit_count"`
	aggregate.Provenance
}

// BusinessPermits aggregates new commercial construction.
func (s *Service) BusinessPermits(ctx context.Context, refresh bool) BusinessResponse {
	fc, err := s.commercialFeatures(ctx, refresh)
	permits := s.businessPermits(ctx, fc)
	return BusinessResponse{
		Analytics:   aggregate.AnalyzeBusiness(permits, s.zones),
		PermitCount: len(permits),
		Provenance:  aggregate.NewProvenance(err),
	}
}

// Pipeline summarises permits in review or recently issued.
func (s *Service) Pipeline(ctx context.Context, refresh bool) aggregate.Pipeline {
	fc, err := s.pipelineFeatures(ctx, refresh)
	pl := aggregate.SummarizePipeline(s.businessPermits(ctx, fc))
	pl.Provenance = aggregate.NewProvenance(err)
	return pl
}

// TopProjectsResponse lists the largest commercial projects.
type TopProjectsResponse struct {
	TopProjects []model.BusinessPermit `json:"top_projects"`
	aggregate.Provenance
}

// TopProjects returns the most expensive commercial projects.
func (s *Service) TopProjects(ctx context.Context, refresh bool) TopProjectsResponse {
	fc, err := s.commercialFeatures(ctx, refresh)
	return TopProjectsResponse{
		TopProjects: aggregate.TopProjects(s.businessPermits(ctx, fc), topProjectsLimit),
		Provenance:  aggregate.NewProvenance(err),
	}
}

// Map returns commercial permit markers.
func (s *Service) Map(ctx context.Context, refresh bool) aggregate.MapData {
	fc, err := s.commercialFeatures(ctx, refresh)
	md := aggregate.MapPoints(s.businessPermits(ctx, fc))
	md.Provenance = aggregate.NewProvenance(err)
	return md
}
