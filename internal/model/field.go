package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldState records how a Field's value was obtained.
type FieldState int

const (
	// FieldMissing means the property was absent or null; Value holds the default.
	FieldMissing FieldState = iota
	// FieldDefault means the property was present but falsy or unparseable; Value holds the default.
	FieldDefault
	// FieldPresent means the property parsed to a usable value.
	FieldPresent
)

func (s FieldState) String() string {
	switch s {
	case FieldPresent:
		return "present"
	case FieldDefault:
		return "default"
	default:
		return "missing"
	}
}

// Field is a parsed upstream value together with its provenance, so callers
// can tell "zero because absent" apart from "zero because actually zero".
type Field[T any] struct {
	Value T
	State FieldState
}

// Present wraps a parsed value.
func Present[T any](v T) Field[T] { return Field[T]{Value: v, State: FieldPresent} }

// Defaulted wraps a substituted default for a present-but-unusable value.
func Defaulted[T any](v T) Field[T] { return Field[T]{Value: v, State: FieldDefault} }

// Missing wraps a substituted default for an absent value.
func Missing[T any](v T) Field[T] { return Field[T]{Value: v, State: FieldMissing} }

// Ok reports whether the value came from upstream data.
func (f Field[T]) Ok() bool { return f.State == FieldPresent }

// FloatField parses props[key] as a float. Zero, empty and unparseable values
// fall back to def, matching the upstream convention that 0 means "not filled in".
func FloatField(props map[string]any, key string, def float64) Field[float64] {
	raw, ok := props[key]
	if !ok || raw == nil {
		return Missing(def)
	}
	n, ok := toFloat(raw)
	if !ok || n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Defaulted(def)
	}
	return Present(n)
}

// EpochMillisField parses props[key] as milliseconds since the Unix epoch and
// converts it to loc. A zero or unparseable value yields a zero time.
func EpochMillisField(props map[string]any, key string, loc *time.Location) Field[time.Time] {
	raw, ok := props[key]
	if !ok || raw == nil {
		return Missing(time.Time{})
	}
	ms, ok := toFloat(raw)
	if !ok || ms == 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Defaulted(time.Time{})
	}
	if loc == nil {
		loc = time.UTC
	}
	return Present(time.UnixMilli(int64(ms)).In(loc))
}

// StringField returns the first non-empty property among keys, in order.
// Numeric values are rendered without a fractional part when integral.
func StringField(props map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringValue(props[key]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// OrUnknown substitutes "Unknown" for an empty string.
func OrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
