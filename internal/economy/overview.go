package economy

// APIStatus reports which upstream keys are configured.
type APIStatus struct {
	FREDConfigured   bool  `json:"fred_configured"`
	CensusConfigured *bool `json:"census_configured,omitempty"`
}

// Summary is the headline block of the economy overview. Absent inputs are null.
type Summary struct {
	HealthScore          int      `json:"health_score"`
	DiversityScore       int      `json:"diversity_score"`
	UnemploymentRate     *float64 `json:"unemployment_rate"`
	TotalEmployment      *float64 `json:"total_employment"`
	GDP                  *float64 `json:"gdp"`
	PerCapitaIncome      *float64 `json:"per_capita_income"`
	TotalEstablishments  *int     `json:"total_establishments"`
	TotalEmployeesCBP    *int     `json:"total_employees_cbp"`
	BusinessApplications *float64 `json:"business_applications"`
}

// Overview is the economy dashboard payload.
type Overview struct {
	Summary   Summary                  `json:"summary"`
	FREDData  map[string]SeriesSummary `json:"fred_data"`
	CBPData   CountyTable              `json:"cbp_data"`
	APIStatus APIStatus                `json:"api_status"`
}

// BuildOverview derives the headline figures from the regional series and
// the county table.
func BuildOverview(series map[string]SeriesSummary, county CountyTable, status APIStatus) Overview {
	s := Summary{
		HealthScore:          HealthScore(series),
		DiversityScore:       DiversityScore(county.ByIndustry),
		UnemploymentRate:     latestPtr(series, "unemployment_rate"),
		TotalEmployment:      latestPtr(series, "employment"),
		GDP:                  latestPtr(series, "gdp"),
		PerCapitaIncome:      latestPtr(series, "personal_income"),
		BusinessApplications: latestPtr(series, "business_applications"),
	}
	if county.Error == nil {
		s.TotalEstablishments = &county.Totals.Establishments
		s.TotalEmployeesCBP = &county.Totals.Employees
	}
	if county.ByIndustry == nil {
		county.ByIndustry = map[string]Industry{}
	}
	return Overview{Summary: s, FREDData: series, CBPData: county, APIStatus: status}
}

func latestPtr(series map[string]SeriesSummary, key string) *float64 {
	if s, ok := series[key]; ok {
		return s.LatestValue
	}
	return nil
}
