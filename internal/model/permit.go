package model

import (
	"strings"
	"time"
)

// Permit is the typed view of a building-permit Feature. Synonymous upstream
// field names are resolved here and nowhere else.
type Permit struct {
	PermitNum       string
	PermitType      string // permittypemapped, then permittype
	Status          string // statuscurrentmapped, then statuscurrent
	Description     string // proposedworkdescription, then description
	PermitClass     string // permitclassmapped
	WorkClassMapped string // workclassmapped ("New", "Existing", ...)
	WorkClass       string // workclass (free text, e.g. "Single Family")
	OccupancyClass  string
	ADUType         string
	ProposedUse     string
	ProjectName     string // projectname, then grouptenantname

	StreetNum             string
	StreetDirectionPrefix string
	StreetName            string
	StreetType            string
	StreetDirectionSuffix string

	Units     Field[float64]
	EstCost   Field[float64]
	TotalSqft Field[float64]
	IssuedAt  Field[time.Time]
	AppliedAt Field[time.Time]

	Lng      float64
	Lat      float64
	HasPoint bool

	// Extra holds every property not mapped to a typed field above.
	Extra map[string]any
}

var permitFields = map[string]struct{}{
	"permitnum": {}, "permittypemapped": {}, "permittype": {},
	"statuscurrentmapped": {}, "statuscurrent": {},
	"proposedworkdescription": {}, "description": {},
	"permitclassmapped": {}, "workclassmapped": {}, "workclass": {},
	"occupancyclass": {}, "adu_type": {}, "proposeduse": {},
	"projectname": {}, "grouptenantname": {},
	"streetnum": {}, "streetdirectionprefix": {}, "streetname": {},
	"streettype": {}, "streetdirectionsuffix": {},
	"housingunitstotal": {}, "estprojectcost": {}, "totalsqft": {},
	"issueddate": {}, "applieddate": {},
}

// PermitFromFeature maps a raw Feature into a Permit. Timestamps are converted
// into loc (UTC when nil). Missing or malformed fields get defaults; this never fails.
func PermitFromFeature(f Feature, loc *time.Location) Permit {
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}

	p := Permit{
		PermitNum:       StringField(props, "permitnum"),
		PermitType:      StringField(props, "permittypemapped", "permittype"),
		Status:          StringField(props, "statuscurrentmapped", "statuscurrent"),
		Description:     StringField(props, "proposedworkdescription", "description"),
		PermitClass:     StringField(props, "permitclassmapped"),
		WorkClassMapped: StringField(props, "workclassmapped"),
		WorkClass:       StringField(props, "workclass"),
		OccupancyClass:  StringField(props, "occupancyclass"),
		ADUType:         StringField(props, "adu_type"),
		ProposedUse:     StringField(props, "proposeduse"),
		ProjectName:     StringField(props, "projectname", "grouptenantname"),

		StreetNum:             StringField(props, "streetnum"),
		StreetDirectionPrefix: StringField(props, "streetdirectionprefix"),
		StreetName:            StringField(props, "streetname"),
		StreetType:            StringField(props, "streettype"),
		StreetDirectionSuffix: StringField(props, "streetdirectionsuffix"),

		Units:     FloatField(props, "housingunitstotal", 1),
		EstCost:   FloatField(props, "estprojectcost", 0),
		TotalSqft: FloatField(props, "totalsqft", 0),
		IssuedAt:  EpochMillisField(props, "issueddate", loc),
		AppliedAt: EpochMillisField(props, "applieddate", loc),
	}

	p.Lng, p.Lat, p.HasPoint = f.Point()

	for k, v := range props {
		if _, known := permitFields[k]; known {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]any)
		}
		p.Extra[k] = v
	}
	return p
}

// FullAddress joins the five street components, or returns "No address".
func (p Permit) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.StreetNum, p.StreetDirectionPrefix, p.StreetName, p.StreetType, p.StreetDirectionSuffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	addr := strings.TrimSpace(strings.Join(parts, " "))
	if addr == "" {
		return "No address"
	}
	return addr
}

// ShortAddress is the street number and name only.
func (p Permit) ShortAddress() string {
	return strings.TrimSpace(p.StreetNum + " " + p.StreetName)
}
