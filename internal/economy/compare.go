package economy

import "github.com/sells-group/city-insights/internal/feed"

// Frequency is how often a metric is published.
type Frequency string

// Metric frequencies.
const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// PeriodsPerYear returns how many observations make up a year.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	default:
		return 1
	}
}

// Metric is one comparable indicator.
type Metric struct {
	Key       string
	Name      string
	Unit      string
	Frequency Frequency
	Format    string
}

// Metrics are the comparison indicators, in display order.
var Metrics = []Metric{
	{Key: "unemployment", Name: "Unemployment Rate", Unit: "%", Frequency: Monthly, Format: "percent"},
	{Key: "employment", Name: "Nonfarm Employment", Unit: "thousands", Frequency: Monthly, Format: "number"},
	{Key: "real_gdp", Name: "Real GDP", Unit: "millions $", Frequency: Annual, Format: "billions"},
	{Key: "per_capita_income", Name: "Per Capita Income", Unit: "$", Frequency: Annual, Format: "currency"},
	{Key: "home_price_index", Name: "Home Price Index", Unit: "index", Frequency: Quarterly, Format: "yoy_change"},
}

// LookupMetric finds a metric by key.
func LookupMetric(key string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// Metro is a peer metropolitan area and its series per metric.
type Metro struct {
	Key      string            `json:"key"`
	Name     string            `json:"name"`
	FullName string            `json:"full_name"`
	MSACode  string            `json:"-"`
	Color    string            `json:"color"`
	Series   map[string]string `json:"-"`
}

// Metros lists Raleigh first, then its peers.
var Metros = []Metro{
	{
		Key: "raleigh", Name: "Raleigh", FullName: "Raleigh-Cary, NC", MSACode: "39580", Color: "#722F37",
		Series: map[string]string{
			"unemployment":      "RALE537URN",
			"employment":        "RALE537NAN",
			"real_gdp":          "RGMP39580",
			"per_capita_income": "RALE537PCPI",
			"home_price_index":  "ATNHPIUS39580Q",
		},
	},
	{
		Key: "nashville", Name: "Nashville", FullName: "Nashville-Davidson, TN", MSACode: "34980", Color: "#E9B44C",
		Series: map[string]string{
			"unemployment":      "NASH947URN",
			"employment":        "NASH947NA",
			"real_gdp":          "RGMP34980",
			"per_capita_income": "NASH947PCPI",
			"home_price_index":  "ATNHPIUS34980Q",
		},
	},
	{
		Key: "austin", Name: "Austin", FullName: "Austin-Round Rock, TX", MSACode: "12420", Color: "#9DC183",
		Series: map[string]string{
			"unemployment":      "AUST448URN",
			"employment":        "AUST448NA",
			"real_gdp":          "RGMP12420",
			"per_capita_income": "AUST448PCPI",
			"home_price_index":  "ATNHPIUS12420Q",
		},
	},
	{
		Key: "charlotte", Name: "Charlotte", FullName: "Charlotte-Concord, NC-SC", MSACode: "16740", Color: "#8ECAE6",
		Series: map[string]string{
			"unemployment":      "CHAR737URN",
			"employment":        "CHAR737NA",
			"real_gdp":          "RGMP16740",
			"per_capita_income": "CHAR737PCPI",
			"home_price_index":  "ATNHPIUS16740Q",
		},
	},
	{
		Key: "denver", Name: "Denver", FullName: "Denver-Aurora, CO", MSACode: "19740", Color: "#C3B1E1",
		Series: map[string]string{
			"unemployment":      "DENV708URN",
			"employment":        "DENV708NA",
			"real_gdp":          "RGMP19740",
			"per_capita_income": "DENV708PCPI",
			"home_price_index":  "ATNHPIUS19740Q",
		},
	},
}

// LookupMetro finds a metro by key.
func LookupMetro(key string) (Metro, bool) {
	for _, m := range Metros {
		if m.Key == key {
			return m, true
		}
	}
	return Metro{}, false
}

// MetroData is every metric summary for one metro.
type MetroData struct {
	Name     string                   `json:"name"`
	FullName string                   `json:"full_name"`
	Color    string                   `json:"color"`
	Metrics  map[string]SeriesSummary `json:"metrics"`
}

// NewMetroData starts an empty summary set for m.
func NewMetroData(m Metro) MetroData {
	return MetroData{Name: m.Name, FullName: m.FullName, Color: m.Color, Metrics: map[string]SeriesSummary{}}
}

// SummarizeMetric summarises a metric series with the frequency-based YoY rule.
func SummarizeMetric(metric Metric, seriesID string, obs []feed.Observation, fetchErr error) SeriesSummary {
	return Summarize(metric.Name, metric.Unit, seriesID, obs, fetchErr, PeriodYoY(metric.Frequency.PeriodsPerYear()))
}

// MetricValue is one metro's latest reading of a metric.
type MetricValue struct {
	Latest    *float64 `json:"latest"`
	YoYChange *float64 `json:"yoy_change"`
	Date      *string  `json:"date"`
}

// MetricComparison lines up a metric across metros.
type MetricComparison struct {
	Name   string                 `json:"name"`
	Unit   string                 `json:"unit"`
	Format string                 `json:"format"`
	Values map[string]MetricValue `json:"values"`
}

// Compare builds the per-metric comparison table keyed by metric.
func Compare(data map[string]MetroData) map[string]MetricComparison {
	out := make(map[string]MetricComparison, len(Metrics))
	for _, m := range Metrics {
		mc := MetricComparison{Name: m.Name, Unit: m.Unit, Format: m.Format, Values: map[string]MetricValue{}}
		for metroKey, md := range data {
			s, ok := md.Metrics[m.Key]
			if !ok {
				continue
			}
			mc.Values[metroKey] = MetricValue{Latest: s.LatestValue, YoYChange: s.YoYChange, Date: s.LatestDate}
		}
		out[m.Key] = mc
	}
	return out
}

// MetroSeries is one metro's observations of a metric.
type MetroSeries struct {
	Name         string             `json:"name"`
	Color        string             `json:"color"`
	Observations []feed.Observation `json:"observations"`
}

// MetricTimeseries is a metric's history across metros.
type MetricTimeseries struct {
	Metric string                 `json:"metric"`
	Name   string                 `json:"name"`
	Unit   string                 `json:"unit"`
	Series map[string]MetroSeries `json:"series"`
}

// Timeseries collects metric's observations for every metro that has it.
func Timeseries(metric Metric, data map[string]MetroData) MetricTimeseries {
	ts := MetricTimeseries{Metric: metric.Key, Name: metric.Name, Unit: metric.Unit, Series: map[string]MetroSeries{}}
	for metroKey, md := range data {
		s, ok := md.Metrics[metric.Key]
		if !ok {
			continue
		}
		obs := s.Observations
		if obs == nil {
			obs = []feed.Observation{}
		}
		ts.Series[metroKey] = MetroSeries{Name: md.Name, Color: md.Color, Observations: obs}
	}
	return ts
}
