package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeature = `{
	"type": "Feature",
	"properties": {
		"permitnum": "BLDR-001",
		"permittype": "Building",
		"statuscurrentmapped": "Permit Issued",
		"workclass": "Single Family",
		"housingunitstotal": 1,
		"issueddate": 1717200000000,
		"streetnum": "100",
		"streetname": "Fayetteville",
		"streettype": "St",
		"objectid": 42
	},
	"geometry": {"type": "Point", "coordinates": [-78.6382, 35.7796]}
}`

func TestPermitFromFeature(t *testing.T) {
	t.Parallel()

	var f Feature
	require.NoError(t, json.Unmarshal([]byte(sampleFeature), &f))

	p := PermitFromFeature(f, time.UTC)
	assert.Equal(t, "BLDR-001", p.PermitNum)
	assert.Equal(t, "Building", p.PermitType)
	assert.Equal(t, "Permit Issued", p.Status)
	assert.InDelta(t, 1, p.Units.Value, 1e-9)
	assert.True(t, p.Units.Ok())
	assert.True(t, p.IssuedAt.Ok())
	assert.Equal(t, 2024, p.IssuedAt.Value.Year())
	assert.True(t, p.HasPoint)
	assert.InDelta(t, 35.7796, p.Lat, 1e-9)
	assert.InDelta(t, -78.6382, p.Lng, 1e-9)
	assert.Equal(t, "100 Fayetteville St", p.FullAddress())
	assert.Equal(t, "100 Fayetteville", p.ShortAddress())
	assert.Equal(t, map[string]any{"objectid": float64(42)}, p.Extra)
}

func TestPermitFromFeature_EmptyFeature(t *testing.T) {
	t.Parallel()

	p := PermitFromFeature(Feature{}, nil)
	assert.InDelta(t, 1, p.Units.Value, 1e-9)
	assert.Equal(t, FieldMissing, p.Units.State)
	assert.False(t, p.HasPoint)
	assert.False(t, p.IssuedAt.Ok())
	assert.Equal(t, "No address", p.FullAddress())
	assert.Nil(t, p.Extra)
}

func TestFeature_Point(t *testing.T) {
	t.Parallel()

	f := NewPointFeature(map[string]any{"permitnum": "A"}, -78.6, 35.8)
	lng, lat, ok := f.Point()
	require.True(t, ok)
	assert.InDelta(t, -78.6, lng, 1e-9)
	assert.InDelta(t, 35.8, lat, 1e-9)

	poly := Feature{Geometry: &Geometry{Type: "Polygon", Coordinates: json.RawMessage(`[[[0,0],[1,0],[1,1],[0,0]]]`)}}
	_, _, ok = poly.Point()
	assert.False(t, ok)

	_, _, ok = Feature{}.Point()
	assert.False(t, ok)
}

func TestFeatureCollection_RoundTrip(t *testing.T) {
	t.Parallel()

	fc := NewFeatureCollection(nil)
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}{A: Date{time.Date(2023, 5, 9, 13, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2023-05-09","b":null}`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2021-02-03"`), &d))
	assert.Equal(t, 2021, d.Year())
}
