package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffbot/core"
)

func TestCalcTriangularProfileSeven(t *testing.T) {
	out := make([]float64, 7)
	CalcTriangularProfile(7, 1, 10, out)
	assert.Equal(t, []float64{1, 4, 7, 10, 7, 4, 1}, out)
}

func TestCalcTriangularProfileShape(t *testing.T) {
	for _, n := range []int{3, 5, 9, 21, 101} {
		out := TriangularProfile(n, -0.5, 1.25)
		half := (n - 1) / 2

		require.Len(t, out, n)
		assert.Equal(t, -0.5, out[0], "n=%d", n)
		assert.InDelta(t, -0.5, out[n-1], 1e-12, "n=%d", n)
		assert.InDelta(t, 1.25, out[half], 1e-12, "n=%d", n)

		for i := 1; i <= half; i++ {
			assert.GreaterOrEqual(t, out[i], out[i-1], "ascending at %d", i)
		}
		for i := half + 1; i < n; i++ {
			assert.LessOrEqual(t, out[i], out[i-1], "descending at %d", i)
		}
	}
}

func TestCalcTriangularProfileLeavesTail(t *testing.T) {
	out := []float64{-1, -1, -1, -1, -1}
	CalcTriangularProfile(3, 0, 2, out)
	assert.Equal(t, []float64{0, 2, 0, -1, -1}, out)
}

func TestCalcTriangularProfileContracts(t *testing.T) {
	testCases := []struct {
		name         string
		n            int
		lower, upper float64
		size         int
	}{
		{"even", 6, 0, 1, 6},
		{"too few", 1, 0, 1, 1},
		{"equal bounds", 5, 2, 2, 5},
		{"inverted bounds", 5, 3, 2, 5},
		{"short buffer", 7, 0, 1, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				cv, ok := r.(*core.ContractViolation)
				require.True(t, ok, "panic value %T", r)
				assert.Equal(t, "CalcTriangularProfile", cv.Op)
			}()
			CalcTriangularProfile(tc.n, tc.lower, tc.upper, make([]float64, tc.size))
		})
	}
}
