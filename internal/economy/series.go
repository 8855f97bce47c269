// Package economy summarises regional economic series and business-pattern
// tables into dashboard payloads. Everything here is pure; fetching and
// caching live in the insights services.
package economy

import (
	"math"

	"github.com/sells-group/city-insights/internal/feed"
)

// Category groups series on the dashboard.
type Category string

// Series categories.
const (
	CategoryLabor      Category = "labor"
	CategoryGrowth     Category = "growth"
	CategoryInvestment Category = "investment"
	CategoryHousing    Category = "housing"
)

// SeriesDef describes one FRED series in the regional catalogue.
type SeriesDef struct {
	Key      string
	ID       string
	Name     string
	Unit     string
	Category Category
}

// Series is the Raleigh-Cary MSA catalogue, in display order.
var Series = []SeriesDef{
	{Key: "unemployment_rate", ID: "RALE537URN", Name: "Unemployment Rate", Unit: "%", Category: CategoryLabor},
	{Key: "labor_force", ID: "RALE537LFN", Name: "Labor Force", Unit: "persons", Category: CategoryLabor},
	{Key: "employment", ID: "RALE537NAN", Name: "All Employees (Nonfarm)", Unit: "thousands", Category: CategoryLabor},
	{Key: "gdp", ID: "NGMP39580", Name: "GDP (Nominal)", Unit: "millions $", Category: CategoryGrowth},
	{Key: "real_gdp", ID: "RGMP39580", Name: "Real GDP", Unit: "millions $", Category: CategoryGrowth},
	{Key: "personal_income", ID: "PIPC39580", Name: "Per Capita Personal Income", Unit: "$", Category: CategoryGrowth},
	{Key: "business_applications", ID: "BUSAPPWNSARA39580", Name: "Business Applications", Unit: "applications", Category: CategoryInvestment},
	{Key: "high_propensity_applications", ID: "HBAWNSARA39580", Name: "High-Propensity Business Applications", Unit: "applications", Category: CategoryInvestment},
	{Key: "housing_price_index", ID: "ATNHPIUS39580Q", Name: "House Price Index", Unit: "index", Category: CategoryHousing},
}

// LookupSeries finds a catalogue entry by key.
func LookupSeries(key string) (SeriesDef, bool) {
	for _, s := range Series {
		if s.Key == key {
			return s, true
		}
	}
	return SeriesDef{}, false
}

// SeriesSummary is a fetched series with its latest value and year-over-year
// change. Latest and YoY fields are absent when they cannot be computed.
// Error carries the fetch failure, if any, so one dead series never hides
// the others.
type SeriesSummary struct {
	Name         string             `json:"name"`
	Unit         string             `json:"unit"`
	Category     Category           `json:"category,omitempty"`
	SeriesID     string             `json:"series_id"`
	Observations []feed.Observation `json:"observations"`
	Error        *string            `json:"error"`
	LatestValue  *float64           `json:"latest_value,omitempty"`
	LatestDate   *string            `json:"latest_date,omitempty"`
	YoYChange    *float64           `json:"yoy_change,omitempty"`
}

// YoYFunc computes a year-over-year percentage change from ascending
// observations. ok is false when there is too little history.
type YoYFunc func(obs []feed.Observation) (float64, bool)

// Summarize builds a summary from a fetch result. A nil yoy skips the change.
func Summarize(name, unit, seriesID string, obs []feed.Observation, fetchErr error, yoy YoYFunc) SeriesSummary {
	s := SeriesSummary{
		Name:         name,
		Unit:         unit,
		SeriesID:     seriesID,
		Observations: obs,
	}
	if s.Observations == nil {
		s.Observations = []feed.Observation{}
	}
	if fetchErr != nil {
		msg := fetchErr.Error()
		s.Error = &msg
	}
	if len(obs) == 0 {
		return s
	}
	latest := obs[len(obs)-1]
	s.LatestValue = &latest.Value
	s.LatestDate = &latest.Date
	if yoy != nil {
		if change, ok := yoy(obs); ok {
			s.YoYChange = &change
		}
	}
	return s
}

// SummarizeDef summarises a catalogue series with the regional YoY rule.
func SummarizeDef(def SeriesDef, obs []feed.Observation, fetchErr error) SeriesSummary {
	s := Summarize(def.Name, def.Unit, def.ID, obs, fetchErr, RegionalYoY)
	s.Category = def.Category
	return s
}

// RegionalYoY compares the latest observation with the one twelve entries
// earlier. It needs at least twelve observations; with exactly twelve it
// falls back to the first.
func RegionalYoY(obs []feed.Observation) (float64, bool) {
	if len(obs) < 12 {
		return 0, false
	}
	idx := 0
	if len(obs) > 12 {
		idx = len(obs) - 13
	}
	return percentChange(obs[idx].Value, obs[len(obs)-1].Value)
}

// PeriodYoY returns a YoYFunc that compares against the observation periods
// entries before the latest.
func PeriodYoY(periods int) YoYFunc {
	return func(obs []feed.Observation) (float64, bool) {
		if len(obs) <= periods {
			return 0, false
		}
		return percentChange(obs[len(obs)-periods-1].Value, obs[len(obs)-1].Value)
	}
}

func percentChange(from, to float64) (float64, bool) {
	if from == 0 {
		return 0, false
	}
	return round1((to - from) / from * 100), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FilterCategories keeps the summaries whose category is in cats.
func FilterCategories(series map[string]SeriesSummary, cats ...Category) map[string]SeriesSummary {
	out := make(map[string]SeriesSummary)
	for k, s := range series {
		for _, c := range cats {
			if s.Category == c {
				out[k] = s
				break
			}
		}
	}
	return out
}
