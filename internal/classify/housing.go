// Package classify assigns housing types and business categories to permits.
package classify

import (
	"strings"

	"github.com/sells-group/city-insights/internal/model"
)

// HousingType is the residential building category of a permit.
type HousingType string

// Housing types, in cascade priority order.
const (
	ADU              HousingType = "ADU"
	Multifamily      HousingType = "Multifamily"
	SmallMultifamily HousingType = "Small Multifamily"
	Duplex           HousingType = "Duplex"
	Townhome         HousingType = "Townhome"
	SingleFamily     HousingType = "Single Family"
	UnknownHousing   HousingType = "Unknown"
)

// HousingTypes lists every housing type in cascade order.
var HousingTypes = []HousingType{ADU, Multifamily, SmallMultifamily, Duplex, Townhome, SingleFamily, UnknownHousing}

// notADU holds lowercased adu_type values meaning "no accessory dwelling".
// The truncated variant appears verbatim upstream.
var notADU = map[string]struct{}{
	"":                       {},
	"null":                   {},
	"not accessory dwelling": {},
	"not accessory dwelli":   {},
}

// Housing classifies a permit. The first matching rule wins; it never returns
// an empty value. Unit counts compare unrounded, so 1.5 or 2.5 units match
// neither the duplex nor the single-family unit rule.
func Housing(p model.Permit) HousingType {
	workclass := strings.ToLower(strings.TrimSpace(p.WorkClass))
	occupancy := strings.ToLower(strings.TrimSpace(p.OccupancyClass))
	aduType := strings.ToLower(strings.TrimSpace(p.ADUType))
	units := p.Units.Value

	if _, no := notADU[aduType]; !no {
		return ADU
	}

	switch {
	case units >= 5:
		return Multifamily
	case units >= 3:
		return SmallMultifamily
	case strings.Contains(occupancy, "duplex") || units == 2:
		return Duplex
	case strings.Contains(workclass, "townhouse") || strings.Contains(workclass, "townhome"):
		return Townhome
	case strings.Contains(workclass, "single family"),
		strings.Contains(occupancy, "r3"),
		strings.Contains(occupancy, "sfd"),
		units == 1:
		return SingleFamily
	default:
		return UnknownHousing
	}
}
