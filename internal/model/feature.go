// Package model defines the upstream records, typed permit attributes and
// classified record shapes shared across the insights pipeline.
package model

import (
	"encoding/json"
)

// FeatureCollection is the GeoJSON envelope returned by ArcGIS feature services.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps features in a FeatureCollection. A nil slice is
// normalized to an empty one so the JSON form is always `"features": []`.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Feature is one upstream record: flat properties plus an optional geometry.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   *Geometry      `json:"geometry"`
}

// Geometry keeps coordinates raw; only Point geometries are decoded for records.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NewPointFeature builds a Point feature from properties and a lng/lat pair.
func NewPointFeature(props map[string]any, lng, lat float64) Feature {
	coords, _ := json.Marshal([]float64{lng, lat})
	return Feature{
		Type:       "Feature",
		Properties: props,
		Geometry:   &Geometry{Type: "Point", Coordinates: coords},
	}
}

// Point returns the feature's [longitude, latitude] pair. ok is false when the
// geometry is absent, not a Point, or malformed.
func (f Feature) Point() (lng, lat float64, ok bool) {
	if f.Geometry == nil || f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) == 0 {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// Prop returns the raw property value for key, or nil.
func (f Feature) Prop(key string) any {
	if f.Properties == nil {
		return nil
	}
	return f.Properties[key]
}
