package insights

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/city-insights/internal/aggregate"
	"github.com/sells-group/city-insights/internal/cache"
	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/merge"
	"github.com/sells-group/city-insights/internal/model"
)

// PermitKey is the natural identifier shared by the permit feeds.
const PermitKey = "permitnum"

// ResidentialKey is the cache key of the merged residential snapshot.
func ResidentialKey(startYear int) string {
	return fmt.Sprintf("new_residential_permits_%d", startYear)
}

// residentialFeatures returns the merged building and ADU permits. A feed
// that fails contributes what it fetched; the snapshot is then served but not
// cached.
func (s *Service) residentialFeatures(ctx context.Context, refresh bool) (model.FeatureCollection, error) {
	key := ResidentialKey(s.opts.PermitStartYear)
	fc, err := cache.GetOrLoad(ctx, s.cache, key, s.opts.TTL.Residential, refresh,
		func(ctx context.Context) (model.FeatureCollection, error) {
			var (
				building, adu       model.FeatureCollection
				buildingErr, aduErr error
			)
			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				building, buildingErr = s.arcgis.QueryAll(gCtx, feed.ResidentialQuery(s.opts.BuildingPermitsURL, s.opts.PermitStartYear))
				return nil
			})
			g.Go(func() error {
				adu, aduErr = s.arcgis.QueryAll(gCtx, feed.ADUQuery(s.opts.ADUPermitsURL, s.opts.PermitStartYear))
				return nil
			})
			_ = g.Wait()

			merged := merge.Collections(building, adu, PermitKey)
			s.log.Info("residential permits fetched",
				zap.Int("building", len(building.Features)),
				zap.Int("adu", len(adu.Features)),
				zap.Int("merged", len(merged.Features)),
			)
			return merged, errors.Join(buildingErr, aduErr)
		})
	if err != nil {
		s.log.Warn("residential permits degraded", zap.Error(err))
	}
	return fc, err
}

// housingTables classifies the residential snapshot and reports whether it
// loaded cleanly.
func (s *Service) housingTables(ctx context.Context, refresh bool) (*aggregate.HousingTables, aggregate.Provenance) {
	fc, err := s.residentialFeatures(ctx, refresh)
	return aggregate.ProcessHousing(s.enricher(ctx), fc.Features), aggregate.NewProvenance(err)
}

// Residential returns the filtered residential tables next to the unfiltered
// totals.
func (s *Service) Residential(ctx context.Context, f aggregate.HousingFilter, refresh bool) aggregate.FilteredHousing {
	tables, prov := s.housingTables(ctx, refresh)
	out := tables.Filter(f)
	out.Provenance = prov
	return out
}

// HousingAnalytics returns the residential cross-tabulations.
func (s *Service) HousingAnalytics(ctx context.Context, refresh bool) aggregate.HousingAnalytics {
	tables, prov := s.housingTables(ctx, refresh)
	out := tables.Analytics()
	out.Provenance = prov
	return out
}

// DemographicsResponse pairs zone profiles with permit activity.
type DemographicsResponse struct {
	Source  string                       `json:"source"`
	ZipData []aggregate.ZoneDemographics `json:"zip_data"`
}

// Demographics joins the demographics table with residential permit counts.
func (s *Service) Demographics(ctx context.Context) DemographicsResponse {
	demo := s.refdata.Demographics()
	fc, _ := s.residentialFeatures(ctx, false)
	// Zone counts do not depend on area plans.
	e := aggregate.Enricher{Zones: s.zones, Location: s.opts.Location}
	tables := aggregate.ProcessHousing(e, fc.Features)
	return DemographicsResponse{
		Source:  demo.Source,
		ZipData: aggregate.JoinDemographics(demo, tables.ZipCounts, s.zones),
	}
}
