// Package score computes the 0-100 transit accessibility heuristic for a point.
package score

import (
	"math"

	"github.com/sells-group/city-insights/internal/geo"
)

// Component caps.
const (
	MaxCenter   = 50.0
	MaxCorridor = 30.0
	MaxDensity  = 20.0
	MaxScore    = 100.0
)

// Engine scores points against a downtown center and a set of transit corridors.
type Engine struct {
	Center    geo.LatLng
	Corridors []geo.Corridor
}

// DefaultEngine scores against downtown Raleigh and its planned BRT lines.
func DefaultEngine() *Engine {
	return &Engine{Center: geo.RaleighDowntown, Corridors: geo.RaleighCorridors}
}

// Score returns the accessibility score for (lat, lng) rounded to one decimal.
// ok is false when either coordinate is zero (missing).
func (e *Engine) Score(lat, lng float64) (float64, bool) {
	if lat == 0 || lng == 0 {
		return 0, false
	}

	centerMiles := geo.HaversineMiles(lat, lng, e.Center.Lat, e.Center.Lng)
	total := CenterComponent(centerMiles) + DensityComponent(centerMiles)
	if d, ok := geo.NearestCorridorMiles(lat, lng, e.Corridors); ok {
		total += CorridorComponent(d)
	}
	return math.Round(math.Min(MaxScore, total)*10) / 10, true
}

// CenterComponent scores distance to the center in miles (0-50). The value
// jumps from 0 to 25 at exactly three miles; dashboards are calibrated to it.
func CenterComponent(miles float64) float64 {
	switch {
	case miles <= 1:
		return MaxCenter
	case miles <= 3:
		return MaxCenter * (1 - (miles-1)/2)
	case miles <= 6:
		return 25 * (1 - (miles-3)/3)
	case miles <= 10:
		return 10 * (1 - (miles-6)/4)
	default:
		return 0
	}
}

// CorridorComponent scores distance to the nearest corridor waypoint (0-30).
func CorridorComponent(miles float64) float64 {
	switch {
	case miles <= 0.5:
		return MaxCorridor
	case miles <= 1.5:
		return MaxCorridor * (1 - (miles - 0.5))
	default:
		return 0
	}
}

// DensityComponent is a step bonus keyed to distance from the center (0-20).
func DensityComponent(miles float64) float64 {
	switch {
	case miles <= 2:
		return MaxDensity
	case miles <= 5:
		return 15
	case miles <= 8:
		return 10
	case miles <= 12:
		return 5
	default:
		return 0
	}
}
