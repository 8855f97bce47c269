package aggregate

// Provenance flags a response built from a snapshot whose upstream load
// failed. The tables are then partial or empty rather than a true zero.
type Provenance struct {
	Degraded bool    `json:"degraded"`
	Error    *string `json:"error,omitempty"`
}

// NewProvenance describes the snapshot load error, if any. Fetch errors carry
// host and path only, so the message is safe to serve.
func NewProvenance(err error) Provenance {
	if err == nil {
		return Provenance{}
	}
	msg := err.Error()
	return Provenance{Degraded: true, Error: &msg}
}
