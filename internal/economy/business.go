package economy

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/sells-group/city-insights/internal/feed"
	"github.com/sells-group/city-insights/internal/geo"
)

// Wake County FIPS codes.
const (
	WakeStateFIPS  = "37"
	WakeCountyFIPS = "183"
)

// totalNAICS marks the all-sectors row of a CBP table.
const totalNAICS = "00"

// SectorNames are display names for NAICS sectors.
var SectorNames = map[string]string{
	"11":    "Agriculture",
	"21":    "Mining",
	"22":    "Utilities",
	"23":    "Construction",
	"31-33": "Manufacturing",
	"42":    "Wholesale Trade",
	"44-45": "Retail Trade",
	"48-49": "Transportation",
	"51":    "Information/Tech",
	"52":    "Finance/Insurance",
	"53":    "Real Estate",
	"54":    "Professional Services",
	"55":    "Management",
	"56":    "Admin/Support",
	"61":    "Education",
	"62":    "Healthcare",
	"71":    "Arts/Entertainment",
	"72":    "Hospitality",
	"81":    "Other Services",
	"92":    "Public Admin",
}

// rangedSectors span several 2-digit codes.
var rangedSectors = map[string]struct{}{"31-33": {}, "44-45": {}, "48-49": {}}

// Industry is one sector row of the county table. Payroll is in thousands
// of dollars; AvgWage is in dollars.
type Industry struct {
	Name           string `json:"name"`
	NAICS          string `json:"naics"`
	Establishments int    `json:"establishments"`
	Employees      int    `json:"employees"`
	Payroll        int    `json:"payroll"`
	AvgWage        int    `json:"avg_wage"`
}

// Totals are the all-sector figures.
type Totals struct {
	Establishments int `json:"establishments"`
	Employees      int `json:"employees"`
	Payroll        int `json:"payroll"`
}

// CountyTable is the county business-patterns breakdown.
type CountyTable struct {
	ByIndustry map[string]Industry `json:"by_industry"`
	Totals     Totals              `json:"totals"`
	Error      *string             `json:"error,omitempty"`
}

// BuildCountyTable keeps sector-level rows and the totals row.
func BuildCountyTable(rows []feed.BusinessPattern) CountyTable {
	t := CountyTable{ByIndustry: map[string]Industry{}}
	for _, r := range rows {
		if r.NAICS == totalNAICS {
			t.Totals = Totals{
				Establishments: r.Establishments.Value,
				Employees:      r.Employees.Value,
				Payroll:        r.Payroll.Value,
			}
		}
		if !isSector(r.NAICS) {
			continue
		}
		name, ok := SectorNames[r.NAICS]
		if !ok {
			name = r.Label
		}
		t.ByIndustry[r.NAICS] = Industry{
			Name:           name,
			NAICS:          r.NAICS,
			Establishments: r.Establishments.Value,
			Employees:      r.Employees.Value,
			Payroll:        r.Payroll.Value,
			AvgWage:        avgWage(r),
		}
	}
	return t
}

// isSector reports whether code is a 2-digit sector or a ranged one. The
// totals row is not a sector.
func isSector(code string) bool {
	if code == totalNAICS {
		return false
	}
	if len(code) == 2 {
		return true
	}
	_, ok := rangedSectors[code]
	return ok
}

func avgWage(r feed.BusinessPattern) int {
	if !r.Employees.Ok() || r.Employees.Value <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(r.Payroll.Value) * 1000 / float64(r.Employees.Value)))
}

// RankedIndustries marshals as a JSON object keyed by NAICS code, largest
// employer first.
type RankedIndustries []Industry

// RankIndustries orders the county sectors by employees descending, ties by
// code.
func RankIndustries(byIndustry map[string]Industry) RankedIndustries {
	out := make(RankedIndustries, 0, len(byIndustry))
	for _, ind := range byIndustry {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Employees != out[j].Employees {
			return out[i].Employees > out[j].Employees
		}
		return out[i].NAICS < out[j].NAICS
	})
	return out
}

// MarshalJSON implements json.Marshaler.
func (r RankedIndustries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ind := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ind.NAICS)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ind)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ZoneBusiness is the all-sector ZBP row for one zone.
type ZoneBusiness struct {
	ZipCode        string `json:"zip_code"`
	UrbanRing      string `json:"urban_ring"`
	Establishments int    `json:"establishments"`
	Employees      int    `json:"employees"`
	Payroll        int    `json:"payroll"`
}

// NewZoneBusiness tags a ZBP row with its zone and ring.
func NewZoneBusiness(zip string, row feed.BusinessPattern, zones *geo.Index) ZoneBusiness {
	zb := ZoneBusiness{
		ZipCode:        zip,
		UrbanRing:      string(geo.RingUnknown),
		Establishments: row.Establishments.Value,
		Employees:      row.Employees.Value,
		Payroll:        row.Payroll.Value,
	}
	if zones != nil {
		zb.UrbanRing = string(zones.Ring(zip))
	}
	return zb
}

// RankZones orders zones by establishments descending, ties by zip.
func RankZones(zones map[string]ZoneBusiness) []ZoneBusiness {
	out := make([]ZoneBusiness, 0, len(zones))
	for _, z := range zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Establishments != out[j].Establishments {
			return out[i].Establishments > out[j].Establishments
		}
		return out[i].ZipCode < out[j].ZipCode
	})
	return out
}
