package aggregate

import (
	"fmt"
	"sort"

	"github.com/sells-group/city-insights/internal/classify"
	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/model"
)

// SignificantCost is the estimated cost above which a project is listed.
const SignificantCost = 100000

const (
	analyticsTopProjects = 20
	recentApplications   = 10

	// StatusInReview and StatusIssued are the pipeline statuses.
	StatusInReview = "In Review"
	StatusIssued   = "Permit Issued"
)

// ClassifyBusiness classifies every feature, dropping excluded uses.
func ClassifyBusiness(e Enricher, features []model.Feature) []model.BusinessPermit {
	out := make([]model.BusinessPermit, 0, len(features))
	for _, f := range features {
		if bp, ok := e.Business(f); ok {
			out = append(out, bp)
		}
	}
	return out
}

// Bucket is a count with its summed investment.
type Bucket struct {
	Count      int     `json:"count"`
	Investment float64 `json:"investment"`
}

func (b *Bucket) add(cost float64) {
	b.Count++
	b.Investment += cost
}

// MonthBucket is one month of issued permits.
type MonthBucket struct {
	Month string `json:"month"`
	Bucket
}

// YearBucket is one year of issued permits.
type YearBucket struct {
	Year int `json:"year"`
	Bucket
	NewCount int `json:"new_count"`
}

// ZipBucket is one zone's issued permits.
type ZipBucket struct {
	ZipCode   string `json:"zip_code"`
	UrbanRing string `json:"urban_ring"`
	Bucket
}

// CategoryBucket is one business category's issued permits.
type CategoryBucket struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Bucket
}

// ProjectSummary is a significant project as listed in the analytics.
type ProjectSummary struct {
	Name    string     `json:"name"`
	Cost    float64    `json:"cost"`
	Address string     `json:"address"`
	Use     string     `json:"use"`
	Date    model.Date `json:"date"`
	Status  string     `json:"status"`
}

// BusinessAnalytics summarises commercial permits.
type BusinessAnalytics struct {
	TotalPermits         int               `json:"total_permits"`
	TotalInvestment      float64           `json:"total_investment"`
	NewConstructionCount int               `json:"new_construction_count"`
	Monthly              []MonthBucket     `json:"monthly"`
	Yearly               []YearBucket      `json:"yearly"`
	ByWorkClass          map[string]Bucket `json:"by_work_class"`
	ByStatus             map[string]int    `json:"by_status"`
	ByZip                []ZipBucket       `json:"by_zip"`
	ByCategory           []CategoryBucket  `json:"by_category"`
	TopProjects          []ProjectSummary  `json:"top_projects"`
}

// AnalyzeBusiness aggregates classified commercial permits. Permits without
// an issued date count toward TotalPermits only.
func AnalyzeBusiness(permits []model.BusinessPermit, zones *geo.Index) BusinessAnalytics {
	a := BusinessAnalytics{
		TotalPermits: len(permits),
		ByWorkClass:  map[string]Bucket{},
		ByStatus:     map[string]int{},
		TopProjects:  []ProjectSummary{},
	}
	months := map[string]*Bucket{}
	years := map[int]*YearBucket{}
	zips := map[string]*Bucket{}
	var zipOrder []string
	categories := map[string]*Bucket{}
	var categoryOrder []string

	for _, p := range permits {
		if p.IssuedYear == nil {
			continue
		}
		year := *p.IssuedYear
		cost := p.EstCost

		month := fmt.Sprintf("%d-%02d", year, deref(p.IssuedMonth))
		if months[month] == nil {
			months[month] = &Bucket{}
		}
		months[month].add(cost)

		workClass := model.OrUnknown(p.WorkClass)
		wc := a.ByWorkClass[workClass]
		wc.add(cost)
		a.ByWorkClass[workClass] = wc

		a.ByStatus[model.OrUnknown(p.Status)]++

		if p.ZipCode != nil {
			if zips[*p.ZipCode] == nil {
				zips[*p.ZipCode] = &Bucket{}
				zipOrder = append(zipOrder, *p.ZipCode)
			}
			zips[*p.ZipCode].add(cost)
		}

		yb := years[year]
		if yb == nil {
			yb = &YearBucket{Year: year}
			years[year] = yb
		}
		yb.add(cost)
		if workClass == "New" {
			yb.NewCount++
			a.NewConstructionCount++
		}

		if categories[p.Category] == nil {
			categories[p.Category] = &Bucket{}
			categoryOrder = append(categoryOrder, p.Category)
		}
		categories[p.Category].add(cost)

		a.TotalInvestment += cost

		if cost > SignificantCost {
			a.TopProjects = append(a.TopProjects, ProjectSummary{
				Name:    p.ProjectName,
				Cost:    cost,
				Address: p.Address,
				Use:     p.ProposedUse,
				Date:    p.IssuedDate,
				Status:  p.Status,
			})
		}
	}

	a.Monthly = make([]MonthBucket, 0, len(months))
	for m, b := range months {
		a.Monthly = append(a.Monthly, MonthBucket{Month: m, Bucket: *b})
	}
	sort.Slice(a.Monthly, func(i, j int) bool { return a.Monthly[i].Month < a.Monthly[j].Month })

	a.Yearly = make([]YearBucket, 0, len(years))
	for _, yb := range years {
		a.Yearly = append(a.Yearly, *yb)
	}
	sort.Slice(a.Yearly, func(i, j int) bool { return a.Yearly[i].Year < a.Yearly[j].Year })

	a.ByZip = make([]ZipBucket, 0, len(zipOrder))
	for _, z := range zipOrder {
		ring := string(geo.RingUnknown)
		if zones != nil {
			ring = string(zones.Ring(z))
		}
		a.ByZip = append(a.ByZip, ZipBucket{ZipCode: z, UrbanRing: ring, Bucket: *zips[z]})
	}
	sort.SliceStable(a.ByZip, func(i, j int) bool { return a.ByZip[i].Investment > a.ByZip[j].Investment })

	a.ByCategory = make([]CategoryBucket, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		a.ByCategory = append(a.ByCategory, CategoryBucket{
			Category: c,
			Color:    CategoryColor(c),
			Bucket:   *categories[c],
		})
	}
	sort.SliceStable(a.ByCategory, func(i, j int) bool { return a.ByCategory[i].Count > a.ByCategory[j].Count })

	sort.SliceStable(a.TopProjects, func(i, j int) bool { return a.TopProjects[i].Cost > a.TopProjects[j].Cost })
	if len(a.TopProjects) > analyticsTopProjects {
		a.TopProjects = a.TopProjects[:analyticsTopProjects]
	}
	return a
}

// CategoryColor returns the display color for a category.
func CategoryColor(category string) string {
	return classify.Category(category).Color()
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// Pipeline summarises permits still moving through review.
type Pipeline struct {
	InReview           Bucket                 `json:"in_review"`
	Issued             Bucket                 `json:"issued"`
	TotalPipeline      Bucket                 `json:"total_pipeline"`
	RecentApplications []model.BusinessPermit `json:"recent_applications"`
	Provenance
}

// SummarizePipeline splits permits by pipeline status. The total count
// covers every permit; its investment covers the two tracked statuses.
func SummarizePipeline(permits []model.BusinessPermit) Pipeline {
	var pl Pipeline
	recent := make([]model.BusinessPermit, 0, len(permits))
	for _, p := range permits {
		switch p.Status {
		case StatusInReview:
			pl.InReview.add(p.EstCost)
		case StatusIssued:
			pl.Issued.add(p.EstCost)
		}
		if !p.AppliedDate.IsZero() {
			recent = append(recent, p)
		}
	}
	pl.TotalPipeline = Bucket{
		Count:      len(permits),
		Investment: pl.InReview.Investment + pl.Issued.Investment,
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AppliedDate.After(recent[j].AppliedDate.Time)
	})
	if len(recent) > recentApplications {
		recent = recent[:recentApplications]
	}
	pl.RecentApplications = recent
	return pl
}

// TopProjects returns up to limit permits costing more than SignificantCost,
// most expensive first.
func TopProjects(permits []model.BusinessPermit, limit int) []model.BusinessPermit {
	out := make([]model.BusinessPermit, 0)
	for _, p := range permits {
		if p.EstCost > SignificantCost {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EstCost > out[j].EstCost })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MapPoint is a permit marker. Coords are [lat, lng].
type MapPoint struct {
	Coords    [2]float64 `json:"coords"`
	Category  string     `json:"category"`
	Color     string     `json:"color"`
	Cost      float64    `json:"cost"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	ZipCode   *string    `json:"zip_code"`
	Date      model.Date `json:"date"`
	Year      *int       `json:"year"`
	WorkClass string     `json:"work_class"`
}

// YearRange bounds the map's year slider.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Default year range when no point carries a year.
const (
	DefaultMinYear = 2020
	DefaultMaxYear = 2025
)

// MapData is the commercial map payload.
type MapData struct {
	Points         []MapPoint        `json:"points"`
	CategoryColors map[string]string `json:"category_colors"`
	TotalCount     int               `json:"total_count"`
	YearRange      YearRange         `json:"year_range"`
	Provenance
}

// MapPoints builds markers for permits that have both a location and an
// issued date.
func MapPoints(permits []model.BusinessPermit) MapData {
	md := MapData{
		Points:         []MapPoint{},
		CategoryColors: classify.CategoryColors,
		YearRange:      YearRange{Min: DefaultMinYear, Max: DefaultMaxYear},
	}
	first := true
	for _, p := range permits {
		if len(p.Coords) < 2 || p.IssuedDate.IsZero() {
			continue
		}
		md.Points = append(md.Points, MapPoint{
			Coords:    [2]float64{p.Coords[1], p.Coords[0]},
			Category:  p.Category,
			Color:     CategoryColor(p.Category),
			Cost:      p.EstCost,
			Name:      p.ProjectName,
			Address:   p.Address,
			ZipCode:   p.ZipCode,
			Date:      p.IssuedDate,
			Year:      p.IssuedYear,
			WorkClass: p.WorkClass,
		})
		if p.IssuedYear == nil {
			continue
		}
		y := *p.IssuedYear
		if first {
			md.YearRange = YearRange{Min: y, Max: y}
			first = false
			continue
		}
		md.YearRange.Min = min(md.YearRange.Min, y)
		md.YearRange.Max = max(md.YearRange.Max, y)
	}
	md.TotalCount = len(md.Points)
	return md
}
