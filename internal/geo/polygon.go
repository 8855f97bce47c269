package geo

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/city-insights/internal/model"
)

// ZonePolygon is a named area (neighborhood or area plan) with one or more
// rings in [lng, lat] order.
type ZonePolygon struct {
	Name   string
	geom   geom.T
	bounds *geom.Bounds
}

// NewZonePolygon wraps a *geom.Polygon or *geom.MultiPolygon.
func NewZonePolygon(name string, g geom.T) (ZonePolygon, error) {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	default:
		return ZonePolygon{}, eris.Errorf("geo: polygon %q: unsupported geometry %T", name, g)
	}
	return ZonePolygon{Name: name, geom: g, bounds: g.Bounds()}, nil
}

// Geom returns the underlying geometry.
func (z ZonePolygon) Geom() geom.T { return z.geom }

// rings returns every linear ring of the polygon, outer and inner alike.
func (z ZonePolygon) rings() [][]geom.Coord {
	var out [][]geom.Coord
	appendPoly := func(p *geom.Polygon) {
		for i := 0; i < p.NumLinearRings(); i++ {
			out = append(out, p.LinearRing(i).Coords())
		}
	}
	switch g := z.geom.(type) {
	case *geom.Polygon:
		appendPoly(g)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			appendPoly(g.Polygon(i))
		}
	}
	return out
}

// Contains reports whether (lat, lng) falls inside any ring of z. Each ring is
// tested on its own, so a point inside a hole still matches its outer ring.
func (z ZonePolygon) Contains(lat, lng float64) bool {
	if z.bounds != nil && !z.bounds.OverlapsPoint(geom.XY, geom.Coord{lng, lat}) {
		return false
	}
	for _, ring := range z.rings() {
		if pointInRing(lng, lat, ring) {
			return true
		}
	}
	return false
}

// pointInRing is the even-odd ray cast with x = longitude, y = latitude.
func pointInRing(x, y float64, ring []geom.Coord) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X(), ring[i].Y()
		xj, yj := ring[j].X(), ring[j].Y()
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// PointInZonePolygon returns the name of the first polygon containing
// (lat, lng). Zero coordinates and an empty set never match.
func PointInZonePolygon(lat, lng float64, polys []ZonePolygon) (string, bool) {
	if lat == 0 || lng == 0 || len(polys) == 0 {
		return "", false
	}
	for _, p := range polys {
		if p.Contains(lat, lng) {
			return p.Name, true
		}
	}
	return "", false
}

// PolygonsFromFeatures builds zone polygons from GeoJSON features, naming each
// from nameKey. Features without a usable Polygon or MultiPolygon geometry are
// skipped. skipped counts them.
func PolygonsFromFeatures(features []model.Feature, nameKey string) (polys []ZonePolygon, skipped int) {
	for _, f := range features {
		name := model.StringField(f.Properties, nameKey)
		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			skipped++
			continue
		}
		zp, err := NewZonePolygon(name, g)
		if err != nil {
			skipped++
			continue
		}
		polys = append(polys, zp)
	}
	return polys, skipped
}

func decodeGeometry(g *model.Geometry) (geom.T, error) {
	if g == nil {
		return nil, eris.New("geo: missing geometry")
	}
	switch strings.ToLower(g.Type) {
	case "polygon":
		var raw [][][]float64
		if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
			return nil, eris.Wrap(err, "geo: decode polygon")
		}
		return geom.NewPolygon(geom.XY).SetCoords(toRings(raw))
	case "multipolygon":
		var raw [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
			return nil, eris.Wrap(err, "geo: decode multipolygon")
		}
		coords := make([][][]geom.Coord, 0, len(raw))
		for _, poly := range raw {
			coords = append(coords, toRings(poly))
		}
		return geom.NewMultiPolygon(geom.XY).SetCoords(coords)
	default:
		return nil, eris.Errorf("geo: unsupported geometry type %q", g.Type)
	}
}

func toRings(raw [][][]float64) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, len(raw))
	for _, r := range raw {
		ring := make([]geom.Coord, 0, len(r))
		for _, pt := range r {
			if len(pt) < 2 {
				continue
			}
			ring = append(ring, geom.Coord{pt[0], pt[1]})
		}
		rings = append(rings, ring)
	}
	return rings
}
