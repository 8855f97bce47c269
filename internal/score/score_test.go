package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/city-insights/internal/geo"
)

func TestCenterComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		miles float64
		want  float64
	}{
		{0, 50},
		{1, 50},
		{2, 25},
		{3, 0},
		{3.0001, 25 * (1 - 0.0001/3)},
		{4.5, 12.5},
		{6, 0},
		{8, 5},
		{10, 0},
		{15, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CenterComponent(tt.miles), 1e-9, "miles=%v", tt.miles)
	}
}

func TestCorridorComponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30.0, CorridorComponent(0))
	assert.Equal(t, 30.0, CorridorComponent(0.5))
	assert.InDelta(t, 15, CorridorComponent(1.0), 1e-9)
	assert.InDelta(t, 0, CorridorComponent(1.5), 1e-9)
	assert.Equal(t, 0.0, CorridorComponent(3))
}

func TestDensityComponent(t *testing.T) {
	t.Parallel()

	for miles, want := range map[float64]float64{1: 20, 2: 20, 4: 15, 7: 10, 11: 5, 12: 5, 13: 0} {
		assert.Equal(t, want, DensityComponent(miles), "miles=%v", miles)
	}
}

func TestScore_Downtown(t *testing.T) {
	t.Parallel()

	got, ok := DefaultEngine().Score(35.7796, -78.6382)
	assert.True(t, ok)
	assert.Equal(t, 100.0, got)
}

func TestScore_Missing(t *testing.T) {
	t.Parallel()

	_, ok := DefaultEngine().Score(0, -78.6)
	assert.False(t, ok)
	_, ok = DefaultEngine().Score(35.7, 0)
	assert.False(t, ok)
}

func TestScore_BoundedAndNonIncreasing(t *testing.T) {
	t.Parallel()

	// No corridors so only the center distance varies.
	e := &Engine{Center: geo.LatLng{Lat: 35.7796, Lng: -78.6382}}
	prev := 101.0
	for i := 0; i <= 200; i++ {
		lat := 35.7796 + float64(i)*0.001
		got, ok := e.Score(lat, -78.6382)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)

		miles := geo.HaversineMiles(lat, -78.6382, 35.7796, -78.6382)
		if miles <= 2.9 || miles > 3.1 {
			assert.LessOrEqual(t, got, prev, "score rose at %.3f miles", miles)
		}
		prev = got
	}
}

func TestScore_RoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	e := &Engine{Center: geo.LatLng{Lat: 35.7796, Lng: -78.6382}}
	got, ok := e.Score(35.80, -78.6382)
	assert.True(t, ok)
	assert.InDelta(t, got, float64(int(got*10+0.5))/10, 1e-9)
}
