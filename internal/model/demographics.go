package model

// Demographics is the static per-zone census profile table.
type Demographics struct {
	Source   string                 `json:"source"`
	ZipCodes map[string]ZoneProfile `json:"zip_codes"`
}

// ZoneProfile is one zone's demographic profile.
type ZoneProfile struct {
	Name         string         `json:"name"`
	MedianIncome float64        `json:"median_income"`
	Population   int            `json:"population"`
	Race         map[string]any `json:"race"`
}
