package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/model"
)

// HousingTables is the full residential aggregate.
type HousingTables struct {
	Permits            []model.HousingPermit `json:"permits"`
	TotalCount         int                   `json:"total_count"`
	TotalUnits         int                   `json:"total_units"`
	TypeCounts         *Counts               `json:"type_counts"`
	ClassCounts        *Counts               `json:"class_counts"`
	HousingTypeCounts  *Counts               `json:"housing_type_counts"`
	WorkCounts         *Counts               `json:"work_counts"`
	StatusCounts       *Counts               `json:"status_counts"`
	ZipCounts          *Counts               `json:"zip_counts"`
	NeighborhoodCounts *Counts               `json:"neighborhood_counts"`
	UrbanRingCounts    *Counts               `json:"urban_ring_counts"`
	YearlyCounts       *Counts               `json:"yearly_counts"`
	Timeline           Timeline              `json:"timeline"`
}

// ProcessHousing classifies every feature and builds the residential tables.
func ProcessHousing(e Enricher, features []model.Feature) *HousingTables {
	t := &HousingTables{
		Permits:            make([]model.HousingPermit, 0, len(features)),
		TypeCounts:         NewCounts(),
		ClassCounts:        NewCounts(),
		HousingTypeCounts:  NewCounts(),
		WorkCounts:         NewCounts(),
		StatusCounts:       NewCounts(),
		ZipCounts:          NewCounts(),
		NeighborhoodCounts: NewCounts(),
		UrbanRingCounts:    NewCounts(),
		YearlyCounts:       NewKeyedCounts(),
	}
	weeks := NewKeyedCounts()

	for _, f := range features {
		p := e.Housing(f)
		t.Permits = append(t.Permits, p)
		t.TotalUnits += p.Units

		t.TypeCounts.Inc(p.Type)
		t.ClassCounts.Inc(p.PermitClass)
		t.HousingTypeCounts.Inc(p.HousingType)
		t.WorkCounts.Inc(p.WorkType)
		t.StatusCounts.Inc(p.Status)
		t.UrbanRingCounts.Inc(p.UrbanRing)
		if p.ZipCode != nil {
			t.ZipCounts.Inc(*p.ZipCode)
		}
		if p.Neighborhood != nil {
			t.NeighborhoodCounts.Inc(*p.Neighborhood)
		}
		if p.IssueYear != nil {
			t.YearlyCounts.Inc(strconv.Itoa(*p.IssueYear))
			weeks.Inc(WeekLabel(p.IssuedAt))
		}
	}
	t.TotalCount = len(t.Permits)
	t.Timeline = NewTimeline(weeks)
	return t
}

// WeekLabel buckets t as "YYYY-WW" where weeks start on Monday and the days
// before a year's first Monday fall in week 00.
func WeekLabel(t time.Time) string {
	monday0 := (int(t.Weekday()) + 6) % 7
	week := (t.YearDay() - 1 + 7 - monday0) / 7
	return fmt.Sprintf("%04d-%02d", t.Year(), week)
}

// HousingFilter narrows permits after classification. Zero fields match all.
type HousingFilter struct {
	Year        int
	HousingType string
	Zip         string
	UrbanRing   string
}

// Match reports whether p passes every set criterion.
func (f HousingFilter) Match(p model.HousingPermit) bool {
	if f.Year != 0 && (p.IssueYear == nil || *p.IssueYear != f.Year) {
		return false
	}
	if f.HousingType != "" && p.HousingType != f.HousingType {
		return false
	}
	if f.Zip != "" && (p.ZipCode == nil || *p.ZipCode != f.Zip) {
		return false
	}
	if f.UrbanRing != "" && p.UrbanRing != f.UrbanRing {
		return false
	}
	return true
}

// HousingTotals are the headline residential aggregates.
type HousingTotals struct {
	TotalCount        int     `json:"total_count"`
	TotalUnits        int     `json:"total_units"`
	HousingTypeCounts *Counts `json:"housing_type_counts"`
	UrbanRingCounts   *Counts `json:"urban_ring_counts"`
	YearlyCounts      *Counts `json:"yearly_counts"`
}

// FilteredHousing pairs filtered aggregates with the unfiltered totals.
// ZipCounts always covers the unfiltered set.
type FilteredHousing struct {
	Permits []model.HousingPermit `json:"permits"`
	HousingTotals
	ZipCounts        *Counts       `json:"zip_counts"`
	UnfilteredTotals HousingTotals `json:"unfiltered_totals"`
	Provenance
}

// Filter applies f to the classified permits.
func (t *HousingTables) Filter(f HousingFilter) FilteredHousing {
	out := FilteredHousing{
		Permits: []model.HousingPermit{},
		HousingTotals: HousingTotals{
			HousingTypeCounts: NewCounts(),
			UrbanRingCounts:   NewCounts(),
			YearlyCounts:      NewKeyedCounts(),
		},
		ZipCounts: t.ZipCounts,
		UnfilteredTotals: HousingTotals{
			TotalCount:        t.TotalCount,
			TotalUnits:        t.TotalUnits,
			HousingTypeCounts: t.HousingTypeCounts,
			UrbanRingCounts:   t.UrbanRingCounts,
			YearlyCounts:      t.YearlyCounts,
		},
	}
	for _, p := range t.Permits {
		if !f.Match(p) {
			continue
		}
		out.Permits = append(out.Permits, p)
		out.TotalUnits += p.Units
		out.HousingTypeCounts.Inc(p.HousingType)
		out.UrbanRingCounts.Inc(p.UrbanRing)
		if p.IssueYear != nil {
			out.YearlyCounts.Inc(strconv.Itoa(*p.IssueYear))
		}
	}
	out.TotalCount = len(out.Permits)
	return out
}

// TransitDistribution buckets transit scores: high >= 70, medium 40-70, low < 40.
type TransitDistribution struct {
	High    int     `json:"high"`
	Medium  int     `json:"medium"`
	Low     int     `json:"low"`
	Average float64 `json:"average"`
}

// HousingSummary is the analytics headline.
type HousingSummary struct {
	TotalPermits int `json:"total_permits"`
	TotalUnits   int `json:"total_units"`
}

// HousingAnalytics are the cross-tabulations behind the analytics charts.
type HousingAnalytics struct {
	Summary             HousingSummary            `json:"summary"`
	HousingTypeCounts   *Counts                   `json:"housing_type_counts"`
	UnitsByType         *Counts                   `json:"units_by_type"`
	YearlyByType        map[string]map[string]int `json:"yearly_by_type"`
	TransitDistribution TransitDistribution       `json:"transit_distribution"`
	UrbanRingCounts     *Counts                   `json:"urban_ring_counts"`
	RingByType          map[string]map[string]int `json:"ring_by_type"`
	Timeline            Timeline                  `json:"timeline"`
	StatusCounts        *Counts                   `json:"status_counts"`
	Provenance
}

// Analytics derives the analytics view from the tables.
func (t *HousingTables) Analytics() HousingAnalytics {
	a := HousingAnalytics{
		Summary:           HousingSummary{TotalPermits: t.TotalCount, TotalUnits: t.TotalUnits},
		HousingTypeCounts: t.HousingTypeCounts,
		UnitsByType:       NewCounts(),
		YearlyByType:      map[string]map[string]int{},
		UrbanRingCounts:   t.UrbanRingCounts,
		RingByType:        map[string]map[string]int{},
		Timeline:          t.Timeline,
		StatusCounts:      t.StatusCounts,
	}

	var scoreSum float64
	var scored int
	for _, p := range t.Permits {
		if p.IssueYear != nil && p.HousingType != "" {
			tally(a.YearlyByType, strconv.Itoa(*p.IssueYear), p.HousingType)
		}
		tally(a.RingByType, p.UrbanRing, p.HousingType)
		a.UnitsByType.Add(p.HousingType, p.Units)

		if p.TransitScore == nil {
			continue
		}
		s := *p.TransitScore
		scoreSum += s
		scored++
		switch {
		case s >= 70:
			a.TransitDistribution.High++
		case s >= 40:
			a.TransitDistribution.Medium++
		default:
			a.TransitDistribution.Low++
		}
	}
	if scored > 0 {
		a.TransitDistribution.Average = math.Round(scoreSum/float64(scored)*10) / 10
	}
	return a
}

func tally(m map[string]map[string]int, outer, inner string) {
	row, ok := m[outer]
	if !ok {
		row = map[string]int{}
		m[outer] = row
	}
	row[inner]++
}

// ZoneDemographics joins a zone's demographic profile with its permit count.
type ZoneDemographics struct {
	ZipCode      string         `json:"zip_code"`
	Name         string         `json:"name"`
	MedianIncome float64        `json:"median_income"`
	Population   int            `json:"population"`
	Race         map[string]any `json:"race"`
	PermitCount  int            `json:"permit_count"`
	Center       [2]*float64    `json:"center"`
	UrbanRing    string         `json:"urban_ring"`
}

// JoinDemographics pairs every profiled zone with its permit count, center
// and ring, busiest zone first.
func JoinDemographics(demo model.Demographics, zipCounts *Counts, zones *geo.Index) []ZoneDemographics {
	out := make([]ZoneDemographics, 0, len(demo.ZipCodes))
	for zip, prof := range demo.ZipCodes {
		z := ZoneDemographics{
			ZipCode:      zip,
			Name:         prof.Name,
			MedianIncome: prof.MedianIncome,
			Population:   prof.Population,
			Race:         prof.Race,
			UrbanRing:    string(geo.RingUnknown),
		}
		if z.Race == nil {
			z.Race = map[string]any{}
		}
		if zipCounts != nil {
			z.PermitCount = zipCounts.Get(zip)
		}
		if zones != nil {
			if c, ok := zones.Center(zip); ok {
				z.Center = [2]*float64{model.Ptr(c.Lat), model.Ptr(c.Lng)}
			}
			z.UrbanRing = string(zones.Ring(zip))
		}
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PermitCount != out[j].PermitCount {
			return out[i].PermitCount > out[j].PermitCount
		}
		return out[i].ZipCode < out[j].ZipCode
	})
	return out
}
