// Package geo provides the static zone tables and the spatial lookups used to
// geocode permits: nearest zone center, area-plan polygon membership, transit
// corridors, great-circle distance and urban-ring classification.
package geo

// Ring is a coarse concentric tier around downtown.
type Ring string

// Urban ring values.
const (
	RingDowntown     Ring = "Downtown"
	RingNearDowntown Ring = "Near Downtown"
	RingInnerSuburb  Ring = "Inner Suburb"
	RingOuterSuburb  Ring = "Outer Suburb"
	RingUnknown      Ring = "Unknown"
)

// RingOrder is the display order dashboards use for ring breakdowns.
var RingOrder = []Ring{RingDowntown, RingNearDowntown, RingInnerSuburb, RingOuterSuburb, RingUnknown}

// RingTable maps a zone id to its ring.
type RingTable map[string]Ring

// Classify returns the ring for zoneID. Empty or unmapped ids are RingUnknown.
func (t RingTable) Classify(zoneID string) Ring {
	if zoneID == "" {
		return RingUnknown
	}
	if r, ok := t[zoneID]; ok {
		return r
	}
	return RingUnknown
}

// ClassifyUrbanRing classifies a zone id against the default Raleigh ring table.
func ClassifyUrbanRing(zoneID string) Ring {
	return RaleighUrbanRings.Classify(zoneID)
}
