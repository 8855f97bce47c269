package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date format used in every JSON payload.
const DateLayout = "2006-01-02"

// Date marshals as "YYYY-MM-DD", or null when zero.
type Date struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// HousingPermit is a classified residential permit. One per source Feature;
// never modified after creation.
type HousingPermit struct {
	PermitNum    string   `json:"permit_num"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	Address      string   `json:"address"`
	Description  string   `json:"description"`
	IssueDate    string   `json:"issue_date"`
	IssueYear    *int     `json:"issue_year"`
	Lng          *float64 `json:"lng"`
	Lat          *float64 `json:"lat"`
	PermitClass  string   `json:"permit_class"`
	HousingType  string   `json:"housing_type"`
	WorkType     string   `json:"work_type"`
	WorkClass    string   `json:"work_class"`
	ZipCode      *string  `json:"zip_code"`
	Neighborhood *string  `json:"neighborhood"`
	UrbanRing    string   `json:"urban_ring"`
	TransitScore *float64 `json:"transit_score"`
	Units        int      `json:"units"`

	// IssuedAt is kept for time bucketing; it is not part of the payload.
	IssuedAt time.Time `json:"-"`
}

// BusinessPermit is a classified non-residential permit. Permits whose use is
// excluded or unmapped never become a BusinessPermit.
type BusinessPermit struct {
	PermitNum   string    `json:"permit_num"`
	ProjectName string    `json:"project_name"`
	ProposedUse string    `json:"proposed_use"`
	Category    string    `json:"category"`
	WorkClass   string    `json:"work_class"`
	Status      string    `json:"status"`
	EstCost     float64   `json:"est_cost"`
	TotalSqft   float64   `json:"total_sqft"`
	Address     string    `json:"address"`
	IssuedDate  Date      `json:"issued_date"`
	AppliedDate Date      `json:"applied_date"`
	IssuedYear  *int      `json:"issued_year"`
	IssuedMonth *int      `json:"issued_month"`
	ZipCode     *string   `json:"zip_code"`
	UrbanRing   *string   `json:"urban_ring"`
	Coords      []float64 `json:"coords"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
