package aggregate

import (
	"time"

	"github.com/sells-group/city-insights/internal/classify"
	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/model"
	"github.com/sells-group/city-insights/internal/score"
)

// Enricher turns raw permit features into classified records using the
// static zone tables, the optional area-plan polygons and the score engine.
type Enricher struct {
	Zones     *geo.Index
	AreaPlans []geo.ZonePolygon
	Scores    *score.Engine
	Location  *time.Location
}

// DefaultEnricher uses the Raleigh tables and the default score engine.
func DefaultEnricher(loc *time.Location) Enricher {
	return Enricher{Zones: geo.DefaultIndex(), Scores: score.DefaultEngine(), Location: loc}
}

func (e Enricher) zone(p model.Permit) (*string, geo.Ring) {
	if !p.HasPoint || e.Zones == nil {
		return nil, geo.RingUnknown
	}
	zip, ok := e.Zones.NearestZone(p.Lat, p.Lng)
	if !ok {
		return nil, geo.RingUnknown
	}
	return &zip, e.Zones.Ring(zip)
}

// Housing classifies a residential permit feature.
func (e Enricher) Housing(f model.Feature) model.HousingPermit {
	p := model.PermitFromFeature(f, e.Location)

	hp := model.HousingPermit{
		PermitNum:   p.PermitNum,
		Type:        model.OrUnknown(p.PermitType),
		Status:      model.OrUnknown(p.Status),
		Address:     p.FullAddress(),
		Description: p.Description,
		IssueDate:   "Unknown",
		PermitClass: model.OrUnknown(p.PermitClass),
		HousingType: string(classify.Housing(p)),
		WorkType:    model.OrUnknown(p.WorkClassMapped),
		WorkClass:   model.OrUnknown(p.WorkClass),
		Units:       int(p.Units.Value), // tallies truncate fractional counts
	}
	if hp.PermitNum == "" {
		hp.PermitNum = "N/A"
	}
	if p.IssuedAt.Ok() {
		hp.IssuedAt = p.IssuedAt.Value
		hp.IssueDate = hp.IssuedAt.Format(model.DateLayout)
		hp.IssueYear = model.Ptr(hp.IssuedAt.Year())
	}

	zip, ring := e.zone(p)
	hp.ZipCode, hp.UrbanRing = zip, string(ring)

	if p.HasPoint {
		hp.Lng, hp.Lat = model.Ptr(p.Lng), model.Ptr(p.Lat)
		if len(e.AreaPlans) > 0 {
			if name, ok := geo.PointInZonePolygon(p.Lat, p.Lng, e.AreaPlans); ok {
				hp.Neighborhood = &name
			}
		}
		if e.Scores != nil {
			if s, ok := e.Scores.Score(p.Lat, p.Lng); ok {
				hp.TransitScore = &s
			}
		}
	}
	return hp
}

// Business classifies a non-residential permit feature. ok is false when its
// proposed use is excluded or unmapped.
func (e Enricher) Business(f model.Feature) (model.BusinessPermit, bool) {
	p := model.PermitFromFeature(f, e.Location)

	category, ok := classify.Business(p.ProposedUse)
	if !ok {
		return model.BusinessPermit{}, false
	}

	bp := model.BusinessPermit{
		PermitNum:   p.PermitNum,
		ProjectName: p.ProjectName,
		ProposedUse: p.ProposedUse,
		Category:    string(category),
		WorkClass:   p.WorkClassMapped,
		Status:      p.Status,
		EstCost:     p.EstCost.Value,
		TotalSqft:   p.TotalSqft.Value,
		Address:     p.ShortAddress(),
	}
	if bp.ProjectName == "" {
		bp.ProjectName = "Unnamed Project"
	}
	if p.IssuedAt.Ok() {
		bp.IssuedDate = model.Date{Time: p.IssuedAt.Value}
		bp.IssuedYear = model.Ptr(p.IssuedAt.Value.Year())
		bp.IssuedMonth = model.Ptr(int(p.IssuedAt.Value.Month()))
	}
	if p.AppliedAt.Ok() {
		bp.AppliedDate = model.Date{Time: p.AppliedAt.Value}
	}
	if p.HasPoint {
		bp.Coords = []float64{p.Lng, p.Lat}
		if zip, ring := e.zone(p); zip != nil {
			bp.ZipCode = zip
			bp.UrbanRing = model.Ptr(string(ring))
		}
	}
	return bp, true
}
