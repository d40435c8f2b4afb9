package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableValidation(t *testing.T) {
	testCases := []struct {
		name string
		x    []int16
		y    []uint16
	}{
		{"empty", nil, nil},
		{"single point", []int16{1}, []uint16{1}},
		{"length mismatch", []int16{1, 2, 3}, []uint16{1, 2}},
		{"not ascending", []int16{1, 3, 2}, []uint16{1, 2, 3}},
		{"duplicate", []int16{1, 2, 2}, []uint16{1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.x, tc.y)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestTableLookup(t *testing.T) {
	x := []int16{-1000, -100, 0, 100, 1000}
	y := []uint16{4000, 900, 0, 800, 3800}
	table, err := NewTable(x, y)
	require.NoError(t, err)

	assert.Equal(t, 5, table.Len())
	lo, hi := table.Range()
	assert.Equal(t, int16(-1000), lo)
	assert.Equal(t, int16(1000), hi)

	assert.Equal(t, int16(0), table.Lookup(0))
	assert.Equal(t, int16(400), table.Lookup(50))
	assert.Equal(t, int16(450), table.Lookup(-50))
	assert.Equal(t, int16(2300), table.Lookup(550))
	assert.Equal(t, int16(3800), table.Lookup(1000))

	// Saturation beyond the ends
	assert.Equal(t, int16(4000), table.Lookup(-5000))
	assert.Equal(t, int16(3800), table.Lookup(5000))
}

func TestTableCopiesInput(t *testing.T) {
	x := []int16{0, 10}
	y := []uint16{0, 100}
	table, err := NewTable(x, y)
	require.NoError(t, err)

	x[1] = 20
	y[1] = 999
	assert.Equal(t, int16(50), table.Lookup(5))
}
