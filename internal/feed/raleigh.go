package feed

import "fmt"

// Raleigh open-data feature services.
const (
	RaleighBuildingPermitsURL = "https://services.arcgis.com/v400IkDOw1ad7Yad/arcgis/rest/services/Building_Permits/FeatureServer/0/query"
	RaleighADUPermitsURL      = "https://services.arcgis.com/v400IkDOw1ad7Yad/arcgis/rest/services/ADU_Building_Permits/FeatureServer/0/query"
	RaleighAreaPlansURL       = "https://services.arcgis.com/v400IkDOw1ad7Yad/arcgis/rest/services/Area_Plan_Boundaries/FeatureServer/0/query"
)

// AreaPlanNameField names each area-plan polygon.
const AreaPlanNameField = "NAME"

// ResidentialQuery selects new residential construction issued since startYear.
func ResidentialQuery(permitsURL string, startYear int) Query {
	return Query{
		URL: permitsURL,
		Where: fmt.Sprintf("issueddate >= TIMESTAMP '%d-01-01' "+
			"AND (permitclassmapped = 'Residential' OR occupancyclass LIKE '%%R2%%') "+
			"AND workclassmapped = 'New'", startYear),
		OrderBy: "issueddate DESC",
	}
}

// ADUQuery selects new accessory dwelling units issued since startYear.
func ADUQuery(aduURL string, startYear int) Query {
	return Query{
		URL:   aduURL,
		Where: fmt.Sprintf("issueddate >= TIMESTAMP '%d-01-01' AND workclassmapped = 'New'", startYear),
	}
}

// CommercialQuery selects new non-residential construction issued since startYear.
func CommercialQuery(permitsURL string, startYear int) Query {
	return Query{
		URL: permitsURL,
		Where: fmt.Sprintf("issueddate >= TIMESTAMP '%d-01-01' "+
			"AND permitclassmapped = 'Non-Residential' "+
			"AND workclassmapped = 'New'", startYear),
		OrderBy: "issueddate DESC",
	}
}

// PipelineQuery selects non-residential permits still in review or recently
// issued, newest applications first.
func PipelineQuery(permitsURL string) Query {
	return Query{
		URL: permitsURL,
		Where: "permitclassmapped = 'Non-Residential' " +
			"AND (statuscurrentmapped = 'In Review' OR statuscurrentmapped = 'Permit Issued')",
		OrderBy: "applieddate DESC",
		Limit:   DefaultPageSize,
	}
}

// AreaPlanQuery selects every area-plan boundary with its name.
func AreaPlanQuery(areaPlansURL string) Query {
	return Query{URL: areaPlansURL, OutFields: AreaPlanNameField}
}
