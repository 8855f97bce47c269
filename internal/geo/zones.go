package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// ZoneCenter is the approximate center of a postal-code-like zone with the
// radius (in degrees) inside which a point may be assigned to it.
type ZoneCenter struct {
	ID     string  `json:"id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// Index is a read-only zone lookup table. Center order is fixed at
// construction and decides ties: the first minimum wins.
type Index struct {
	centers []ZoneCenter
	byID    map[string]int
	rings   RingTable
}

// NewIndex builds an Index over centers in the given order. Every center needs
// a non-empty unique id and a positive radius.
func NewIndex(centers []ZoneCenter, rings RingTable) (*Index, error) {
	idx := &Index{
		centers: make([]ZoneCenter, 0, len(centers)),
		byID:    make(map[string]int, len(centers)),
		rings:   rings,
	}
	for _, c := range centers {
		if c.ID == "" {
			return nil, eris.New("geo: zone center without id")
		}
		if !(c.Radius > 0) {
			return nil, eris.Errorf("geo: zone %s: radius must be positive, got %v", c.ID, c.Radius)
		}
		if _, dup := idx.byID[c.ID]; dup {
			return nil, eris.Errorf("geo: duplicate zone %s", c.ID)
		}
		idx.byID[c.ID] = len(idx.centers)
		idx.centers = append(idx.centers, c)
	}
	if idx.rings == nil {
		idx.rings = RingTable{}
	}
	return idx, nil
}

// DefaultIndex returns the Raleigh zone index.
func DefaultIndex() *Index {
	idx, err := NewIndex(RaleighZoneCenters, RaleighUrbanRings)
	if err != nil {
		panic(err) // static table
	}
	return idx
}

// NearestZone assigns (lat, lng) to the closest zone center whose radius
// contains it. Distance is Euclidean in degree space, uncorrected for
// latitude. A zero lat or lng is treated as missing.
func (idx *Index) NearestZone(lat, lng float64) (string, bool) {
	if lat == 0 || lng == 0 {
		return "", false
	}

	best := -1
	bestDist := math.Inf(1)
	for i, c := range idx.centers {
		d := math.Hypot(lat-c.Lat, lng-c.Lng)
		if d < c.Radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return idx.centers[best].ID, true
}

// Ring classifies a zone id against the index's ring table.
func (idx *Index) Ring(zoneID string) Ring {
	return idx.rings.Classify(zoneID)
}

// Center returns the center for a zone id.
func (idx *Index) Center(zoneID string) (ZoneCenter, bool) {
	i, ok := idx.byID[zoneID]
	if !ok {
		return ZoneCenter{}, false
	}
	return idx.centers[i], true
}

// Zones returns zone ids in table order.
func (idx *Index) Zones() []string {
	ids := make([]string, len(idx.centers))
	for i, c := range idx.centers {
		ids[i] = c.ID
	}
	return ids
}
