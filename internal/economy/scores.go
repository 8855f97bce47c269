package economy

import "math"

// Health score weights. Each component is clamped to its own bound before
// being added to the base.
const (
	healthBase = 50

	targetUnemployment = 5.0
	unemploymentWeight = 10
	unemploymentBound  = 20

	employmentWeight = 5
	employmentBound  = 15

	incomeWeight = 2
	incomeBound  = 10

	applicationsWeight = 0.5
	applicationsBound  = 5
)

// HealthScore is a 0-100 composite of unemployment, job growth, income
// growth and business formation. Missing or zero inputs contribute nothing.
func HealthScore(series map[string]SeriesSummary) int {
	score := float64(healthBase)

	if v := latest(series, "unemployment_rate"); v != 0 {
		score += clamp((targetUnemployment-v)*unemploymentWeight, -unemploymentBound, unemploymentBound)
	}
	if v := yoy(series, "employment"); v != 0 {
		score += clamp(v*employmentWeight, -employmentBound, employmentBound)
	}
	if v := yoy(series, "personal_income"); v != 0 {
		score += clamp(v*incomeWeight, -incomeBound, incomeBound)
	}
	if v := yoy(series, "business_applications"); v != 0 {
		score += clamp(v*applicationsWeight, -applicationsBound, applicationsBound)
	}
	return int(clamp(math.RoundToEven(score), 0, 100))
}

// DiversityScore converts the Herfindahl-Hirschman index of employment
// shares into 0-100, higher meaning more diverse. An HHI of 1000 scores 100
// and 10000 scores 0. No employment at all scores 50.
func DiversityScore(industries map[string]Industry) int {
	var total float64
	for _, ind := range industries {
		total += float64(ind.Employees)
	}
	if total == 0 {
		return 50
	}

	var hhi float64
	for _, ind := range industries {
		share := float64(ind.Employees) / total * 100
		hhi += share * share
	}
	return int(math.RoundToEven(clamp(100-(hhi-1000)/90, 0, 100)))
}

func latest(series map[string]SeriesSummary, key string) float64 {
	if s, ok := series[key]; ok && s.LatestValue != nil {
		return *s.LatestValue
	}
	return 0
}

func yoy(series map[string]SeriesSummary, key string) float64 {
	if s, ok := series[key]; ok && s.YoYChange != nil {
		return *s.YoYChange
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
