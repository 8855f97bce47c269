package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3959.0

// LatLng is a geographic point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Corridor is a named transit line approximated by waypoints.
type Corridor struct {
	Name      string   `json:"name"`
	Waypoints []LatLng `json:"waypoints"`
}

// NearestCorridorMiles returns the haversine distance from (lat, lng) to the
// closest waypoint of any corridor. ok is false when there are no waypoints.
func NearestCorridorMiles(lat, lng float64, corridors []Corridor) (miles float64, ok bool) {
	miles = math.Inf(1)
	for _, c := range corridors {
		for _, w := range c.Waypoints {
			if d := HaversineMiles(lat, lng, w.Lat, w.Lng); d < miles {
				miles = d
				ok = true
			}
		}
	}
	return miles, ok
}
