package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUrbanRing(t *testing.T) {
	tests := []struct {
		name     string
		zoneID   string
		expected Ring
	}{
		{name: "downtown core", zoneID: "27601", expected: RingDowntown},
		{name: "near downtown", zoneID: "27605", expected: RingNearDowntown},
		{name: "inner suburb", zoneID: "27609", expected: RingInnerSuburb},
		{name: "outer suburb", zoneID: "27617", expected: RingOuterSuburb},
		{name: "empty zone", zoneID: "", expected: RingUnknown},
		{name: "zone outside the table", zoneID: "90210", expected: RingUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyUrbanRing(tt.zoneID))
		})
	}
}

func TestRingTable_EveryZoneHasARing(t *testing.T) {
	for _, c := range RaleighZoneCenters {
		assert.NotEqual(t, RingUnknown, RaleighUrbanRings.Classify(c.ID), c.ID)
	}
}

func TestRingTable_Custom(t *testing.T) {
	table := RingTable{"A": RingInnerSuburb}
	assert.Equal(t, RingInnerSuburb, table.Classify("A"))
	assert.Equal(t, RingUnknown, table.Classify("B"))
}
