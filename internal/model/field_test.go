package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFloatField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		props map[string]any
		want  float64
		state FieldState
	}{
		{"absent", map[string]any{}, 1, FieldMissing},
		{"null", map[string]any{"n": nil}, 1, FieldMissing},
		{"zero is falsy", map[string]any{"n": float64(0)}, 1, FieldDefault},
		{"garbage string", map[string]any{"n": "lots"}, 1, FieldDefault},
		{"whole", map[string]any{"n": float64(4)}, 4, FieldPresent},
		{"fraction kept", map[string]any{"n": 2.5}, 2.5, FieldPresent},
		{"numeric string", map[string]any{"n": " 12 "}, 12, FieldPresent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FloatField(tt.props, "n", 1)
			assert.InDelta(t, tt.want, got.Value, 1e-9)
			assert.Equal(t, tt.state, got.State)
		})
	}
}

func TestFloatField_DistinguishesZeroFromAbsent(t *testing.T) {
	t.Parallel()

	absent := FloatField(map[string]any{}, "cost", 0)
	zero := FloatField(map[string]any{"cost": float64(0)}, "cost", 0)
	real := FloatField(map[string]any{"cost": 250000.5}, "cost", 0)

	assert.Equal(t, FieldMissing, absent.State)
	assert.Equal(t, FieldDefault, zero.State)
	assert.True(t, real.Ok())
	assert.InDelta(t, 250000.5, real.Value, 1e-9)
}

func TestEpochMillisField(t *testing.T) {
	t.Parallel()

	props := map[string]any{"issueddate": float64(1704067200000)} // 2024-01-01T00:00:00Z
	f := EpochMillisField(props, "issueddate", time.UTC)
	assert.True(t, f.Ok())
	assert.Equal(t, 2024, f.Value.Year())

	bad := EpochMillisField(map[string]any{"issueddate": "yesterday"}, "issueddate", time.UTC)
	assert.Equal(t, FieldDefault, bad.State)
	assert.True(t, bad.Value.IsZero())
}

func TestStringField_Fallback(t *testing.T) {
	t.Parallel()

	props := map[string]any{"permittypemapped": "", "permittype": "Building", "num": float64(12345)}
	assert.Equal(t, "Building", StringField(props, "permittypemapped", "permittype"))
	assert.Equal(t, "12345", StringField(props, "num"))
	assert.Equal(t, "", StringField(props, "absent"))
}

func TestOrUnknown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Unknown", OrUnknown(""))
	assert.Equal(t, "New", OrUnknown("New"))
}
