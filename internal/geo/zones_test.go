package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestZone(t *testing.T) {
	t.Parallel()
	idx := DefaultIndex()

	tests := []struct {
		name     string
		lat, lng float64
		want     string
		ok       bool
	}{
		{name: "downtown center", lat: 35.7796, lng: -78.6382, want: "27601", ok: true},
		{name: "near 27605", lat: 35.7950, lng: -78.6560, want: "27605", ok: true},
		{name: "far away", lat: 36.5, lng: -79.5},
		{name: "zero lat", lat: 0, lng: -78.6382},
		{name: "zero lng", lat: 35.7796, lng: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := idx.NearestZone(tt.lat, tt.lng)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNearestZone_RadiusIsStrict(t *testing.T) {
	t.Parallel()
	idx, err := NewIndex([]ZoneCenter{{ID: "A", Lat: 10, Lng: 10, Radius: 1}}, nil)
	require.NoError(t, err)

	_, ok := idx.NearestZone(11, 10)
	assert.False(t, ok, "point exactly on the radius is outside")

	got, ok := idx.NearestZone(10.5, 10)
	assert.True(t, ok)
	assert.Equal(t, "A", got)
}

func TestNearestZone_TieGoesToFirst(t *testing.T) {
	t.Parallel()
	idx, err := NewIndex([]ZoneCenter{
		{ID: "first", Lat: 10, Lng: 10, Radius: 2},
		{ID: "second", Lat: 10, Lng: 12, Radius: 2},
	}, nil)
	require.NoError(t, err)

	got, ok := idx.NearestZone(10, 11)
	assert.True(t, ok)
	assert.Equal(t, "first", got)
}

func TestNewIndex_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewIndex([]ZoneCenter{{ID: "A", Radius: 0}}, nil)
	assert.Error(t, err)

	_, err = NewIndex([]ZoneCenter{{ID: "", Radius: 1}}, nil)
	assert.Error(t, err)

	_, err = NewIndex([]ZoneCenter{{ID: "A", Radius: 1}, {ID: "A", Radius: 1}}, nil)
	assert.Error(t, err)
}

func TestIndex_Lookups(t *testing.T) {
	t.Parallel()
	idx := DefaultIndex()

	c, ok := idx.Center("27609")
	require.True(t, ok)
	assert.InDelta(t, 35.84, c.Lat, 1e-9)

	_, ok = idx.Center("00000")
	assert.False(t, ok)

	zones := idx.Zones()
	assert.Len(t, zones, 15)
	assert.Equal(t, "27601", zones[0])
	assert.Equal(t, RingOuterSuburb, idx.Ring("27614"))
}
