package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/model"
)

func commercialFeatures() []model.Feature {
	return []model.Feature{
		model.NewPointFeature(map[string]any{
			"permitnum":           "C-1",
			"proposeduse":         "OFFICE, BANK, AND PROFESSIONAL BUILDING",
			"projectname":         "Tower One",
			"workclassmapped":     "New",
			"statuscurrentmapped": "Permit Issued",
			"estprojectcost":      2500000,
			"issueddate":          ms(2023, time.April, 10),
			"applieddate":         ms(2022, time.December, 1),
		}, -78.6382, 35.7796),
		model.NewPointFeature(map[string]any{
			"permitnum":           "C-2",
			"proposeduse":         "STORE AND MERCANTILE BUILDING",
			"workclassmapped":     "Existing",
			"statuscurrentmapped": "In Review",
			"estprojectcost":      50000,
			"issueddate":          ms(2024, time.February, 5),
			"applieddate":         ms(2024, time.January, 15),
		}, -78.5500, 35.7500),
		{
			Type: "Feature",
			Properties: map[string]any{
				"permitnum":           "C-3",
				"proposeduse":         "STORE AND MERCANTILE BUILDING",
				"statuscurrentmapped": "In Review",
				"estprojectcost":      300000,
				"applieddate":         ms(2024, time.March, 1),
			},
		},
		model.NewPointFeature(map[string]any{
			"permitnum":   "C-4",
			"proposeduse": "RESIDENTIAL TOWNHOUSE",
			"issueddate":  ms(2024, time.March, 1),
		}, -78.6382, 35.7796),
	}
}

func classifiedCommercial(t *testing.T) []model.BusinessPermit {
	t.Helper()
	permits := ClassifyBusiness(DefaultEnricher(time.UTC), commercialFeatures())
	require.Len(t, permits, 3)
	return permits
}

func TestClassifyBusiness(t *testing.T) {
	t.Parallel()

	permits := classifiedCommercial(t)

	first := permits[0]
	assert.Equal(t, "Office", first.Category)
	assert.Equal(t, "Tower One", first.ProjectName)
	assert.Equal(t, []float64{-78.6382, 35.7796}, first.Coords)
	require.NotNil(t, first.ZipCode)
	assert.Equal(t, "27601", *first.ZipCode)
	require.NotNil(t, first.UrbanRing)
	assert.Equal(t, "Downtown", *first.UrbanRing)
	require.NotNil(t, first.IssuedMonth)
	assert.Equal(t, 4, *first.IssuedMonth)

	noPoint := permits[2]
	assert.Equal(t, "Unnamed Project", noPoint.ProjectName)
	assert.Nil(t, noPoint.Coords)
	assert.Nil(t, noPoint.ZipCode)
	assert.Nil(t, noPoint.IssuedYear)
}

func TestAnalyzeBusiness(t *testing.T) {
	t.Parallel()

	a := AnalyzeBusiness(classifiedCommercial(t), geo.DefaultIndex())

	assert.Equal(t, 3, a.TotalPermits)
	assert.InDelta(t, 2550000, a.TotalInvestment, 1e-6)
	assert.Equal(t, 1, a.NewConstructionCount)

	require.Len(t, a.Monthly, 2)
	assert.Equal(t, "2023-04", a.Monthly[0].Month)
	assert.Equal(t, "2024-02", a.Monthly[1].Month)

	require.Len(t, a.Yearly, 2)
	assert.Equal(t, YearBucket{Year: 2023, Bucket: Bucket{Count: 1, Investment: 2500000}, NewCount: 1}, a.Yearly[0])
	assert.Equal(t, 0, a.Yearly[1].NewCount)

	assert.Equal(t, Bucket{Count: 1, Investment: 50000}, a.ByWorkClass["Existing"])
	assert.Equal(t, map[string]int{"Permit Issued": 1, "In Review": 1}, a.ByStatus)

	require.Len(t, a.ByZip, 2)
	assert.Equal(t, "27601", a.ByZip[0].ZipCode)
	assert.Equal(t, "Downtown", a.ByZip[0].UrbanRing)
	assert.Equal(t, "Inner Suburb", a.ByZip[1].UrbanRing)

	require.Len(t, a.ByCategory, 2)
	assert.Equal(t, "#722F37", a.ByCategory[0].Color)

	require.Len(t, a.TopProjects, 1)
	assert.Equal(t, "Tower One", a.TopProjects[0].Name)
	assert.Equal(t, "2023-04-10", a.TopProjects[0].Date.Format(model.DateLayout))
}

func TestAnalyzeBusiness_TopProjectsCapped(t *testing.T) {
	t.Parallel()

	permits := make([]model.BusinessPermit, 0, 30)
	for i := 0; i < 30; i++ {
		permits = append(permits, model.BusinessPermit{
			Category:   "Office",
			EstCost:    float64(200000 + i),
			IssuedYear: model.Ptr(2024),
		})
	}
	a := AnalyzeBusiness(permits, nil)
	require.Len(t, a.TopProjects, 20)
	assert.InDelta(t, 200029, a.TopProjects[0].Cost, 1e-9)
	assert.Equal(t, "2024-00", a.Monthly[0].Month)
}

func TestSummarizePipeline(t *testing.T) {
	t.Parallel()

	pl := SummarizePipeline(classifiedCommercial(t))

	assert.Equal(t, Bucket{Count: 2, Investment: 350000}, pl.InReview)
	assert.Equal(t, Bucket{Count: 1, Investment: 2500000}, pl.Issued)
	assert.Equal(t, Bucket{Count: 3, Investment: 2850000}, pl.TotalPipeline)
	require.Len(t, pl.RecentApplications, 3)
	assert.Equal(t, "C-3", pl.RecentApplications[0].PermitNum)
	assert.Equal(t, "C-1", pl.RecentApplications[2].PermitNum)
}

func TestTopProjects(t *testing.T) {
	t.Parallel()

	top := TopProjects(classifiedCommercial(t), 25)
	require.Len(t, top, 2)
	assert.Equal(t, "C-1", top[0].PermitNum)
	assert.Equal(t, "C-3", top[1].PermitNum)

	assert.Len(t, TopProjects(classifiedCommercial(t), 1), 1)
	assert.Empty(t, TopProjects(nil, 25))
}

func TestMapPoints(t *testing.T) {
	t.Parallel()

	md := MapPoints(classifiedCommercial(t))
	require.Equal(t, 2, md.TotalCount)
	assert.Equal(t, [2]float64{35.7796, -78.6382}, md.Points[0].Coords)
	assert.Equal(t, "#722F37", md.Points[0].Color)
	assert.Equal(t, YearRange{Min: 2023, Max: 2024}, md.YearRange)

	empty := MapPoints(nil)
	assert.Equal(t, YearRange{Min: DefaultMinYear, Max: DefaultMaxYear}, empty.YearRange)

	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"points":[]`)
	assert.Contains(t, string(data), `"Office":"#722F37"`)
}
