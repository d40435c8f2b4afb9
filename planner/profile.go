// Package planner shapes commanded velocities: triangular ramp profiles,
// the wheel-speed governor and the acceleration limiter.
package planner

import "diffbot/core"

// CalcTriangularProfile fills out[:numPoints] with a ramp from lower up to
// upper and back down. numPoints must be odd and at least 3, lower must be
// below upper and out must hold numPoints values.
func CalcTriangularProfile(numPoints int, lower, upper float64, out []float64) {
	const op = "CalcTriangularProfile"
	core.Require(numPoints >= 3, op, "need at least 3 points")
	core.Require(numPoints%2 == 1, op, "point count must be odd")
	core.Require(lower < upper, op, "lower bound must be below upper bound")
	core.Require(len(out) >= numPoints, op, "output buffer too short")

	half := (numPoints - 1) / 2
	step := (upper - lower) / float64(half)

	for i := 0; i <= half; i++ {
		out[i] = lower + step*float64(i)
	}
	for j := 1; j <= half; j++ {
		out[half+j] = upper - step*float64(j)
	}
}

// TriangularProfile allocates and returns a numPoints triangular profile
func TriangularProfile(numPoints int, lower, upper float64) []float64 {
	core.Require(numPoints >= 3, "TriangularProfile", "need at least 3 points")
	out := make([]float64, numPoints)
	CalcTriangularProfile(numPoints, lower, upper, out)
	return out
}
