package calibration

import (
	"errors"
	"fmt"
)

// ErrInvalidTable is returned for tables that cannot be searched
var ErrInvalidTable = errors.New("invalid calibration table")

// Table is an ascending set of input samples X with the output Y measured
// at each one. It is read-only once built.
type Table struct {
	x []int16
	y []uint16
}

// NewTable validates and copies a calibration table. x must be strictly
// ascending, with at least two entries, and y must have the same length.
func NewTable(x []int16, y []uint16) (*Table, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidTable, len(x))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d inputs but %d outputs", ErrInvalidTable, len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return nil, fmt.Errorf("%w: input %d (%d) not above input %d (%d)", ErrInvalidTable, i, x[i], i-1, x[i-1])
		}
	}

	return &Table{
		x: append([]int16(nil), x...),
		y: append([]uint16(nil), y...),
	}, nil
}

// Len returns the number of samples
func (t *Table) Len() int {
	return len(t.x)
}

// Range returns the smallest and largest input covered by the table
func (t *Table) Range() (lo, hi int16) {
	return t.x[0], t.x[len(t.x)-1]
}

// Lookup interpolates the output for input v. Inputs beyond either end
// return that end's output.
func (t *Table) Lookup(v int16) int16 {
	lower, upper := BinaryRangeSearch(v, t.x)
	return Interpolate(v, t.x[lower], t.x[upper], t.y[lower], t.y[upper])
}
