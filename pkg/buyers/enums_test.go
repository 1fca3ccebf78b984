package buyers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumRoundTrip(t *testing.T) {
	tables := []*EnumTable{Cities, PropertyTypes, Purposes, BHKs, Timelines, Sources, Statuses}
	for _, table := range tables {
		for _, display := range table.Values() {
			stored, err := table.ToStorage(display)
			require.NoError(t, err)
			assert.Equal(t, display, table.FromStorage(stored))
		}
	}
}

func TestEnumToStorage(t *testing.T) {
	tests := []struct {
		table    *EnumTable
		display  string
		expected string
	}{
		{BHKs, "Studio", "STUDIO"},
		{BHKs, "1", "ONE"},
		{Timelines, ">6m", "GT_6M"},
		{Timelines, "0-3m", "T0_3M"},
		{Sources, "Walk-in", "WALK_IN"},
		{Statuses, "New", "NEW"},
		{Cities, "Mohali", "Mohali"},
	}
	for _, tc := range tests {
		stored, err := tc.table.ToStorage(tc.display)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, stored)
	}
}

func TestEnumUnknownDisplayValue(t *testing.T) {
	_, err := Cities.ToStorage("Atlantis")
	assert.Error(t, err)
	assert.False(t, Cities.Contains("Atlantis"))
}

func TestEnumFromStorageUnknownPassesThrough(t *testing.T) {
	// Rows written before a vocabulary change should still render.
	assert.Equal(t, "LEGACY", Statuses.FromStorage("LEGACY"))
}
