package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/city-insights/internal/model"
)

func squareFeature(name string, minX, minY, maxX, maxY float64) model.Feature {
	coords := [][][]float64{{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}}
	raw, _ := json.Marshal(coords)
	return model.Feature{
		Type:       "Feature",
		Properties: map[string]any{"NAME": name},
		Geometry:   &model.Geometry{Type: "Polygon", Coordinates: raw},
	}
}

func TestPointInZonePolygon(t *testing.T) {
	t.Parallel()

	polys, skipped := PolygonsFromFeatures([]model.Feature{
		squareFeature("Downtown Plan", -78.65, 35.77, -78.63, 35.79),
		squareFeature("Overlapping Plan", -78.64, 35.78, -78.60, 35.80),
	}, "NAME")
	require.Len(t, polys, 2)
	assert.Zero(t, skipped)

	tests := []struct {
		name     string
		lat, lng float64
		want     string
		ok       bool
	}{
		{name: "inside first", lat: 35.775, lng: -78.645, want: "Downtown Plan", ok: true},
		{name: "overlap resolves to first", lat: 35.785, lng: -78.635, want: "Downtown Plan", ok: true},
		{name: "inside second only", lat: 35.795, lng: -78.61, want: "Overlapping Plan", ok: true},
		{name: "outside all", lat: 35.9, lng: -78.9},
		{name: "zero coordinates", lat: 0, lng: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := PointInZonePolygon(tt.lat, tt.lng, polys)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointInZonePolygon_EmptySet(t *testing.T) {
	t.Parallel()
	_, ok := PointInZonePolygon(35.78, -78.64, nil)
	assert.False(t, ok)
}

func TestPointInZonePolygon_HoleStillMatchesOuterRing(t *testing.T) {
	t.Parallel()

	g, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})
	require.NoError(t, err)
	zp, err := NewZonePolygon("donut", g)
	require.NoError(t, err)

	got, ok := PointInZonePolygon(5, 5, []ZonePolygon{zp})
	assert.True(t, ok)
	assert.Equal(t, "donut", got)
}

func TestPolygonsFromFeatures_MultiPolygonAndSkips(t *testing.T) {
	t.Parallel()

	multi := model.Feature{
		Properties: map[string]any{"NAME": "Islands"},
		Geometry: &model.Geometry{
			Type:        "MultiPolygon",
			Coordinates: json.RawMessage(`[[[[0,0],[1,0],[1,1],[0,0]]],[[[5,5],[6,5],[6,6],[5,5]]]]`),
		},
	}
	point := model.NewPointFeature(map[string]any{"NAME": "pt"}, 1, 1)
	broken := model.Feature{Geometry: &model.Geometry{Type: "Polygon", Coordinates: json.RawMessage(`"nope"`)}}

	polys, skipped := PolygonsFromFeatures([]model.Feature{multi, point, broken, {}}, "NAME")
	require.Len(t, polys, 1)
	assert.Equal(t, 3, skipped)

	got, ok := PointInZonePolygon(5.6, 5.5, polys)
	assert.True(t, ok)
	assert.Equal(t, "Islands", got)
}

func TestNewZonePolygon_RejectsPoint(t *testing.T) {
	t.Parallel()
	_, err := NewZonePolygon("p", geom.NewPointFlat(geom.XY, []float64{1, 2}))
	assert.Error(t, err)
}
