package kinematics

import "math"

// CalcHeading returns the heading change, in radians, implied by the
// difference between right and left encoder counts. bias is a calibration
// gain for wheel slip and track-width error; with width set to the wheel
// track, a bias of 2 gives the geometric heading change.
// The result is positive when the right wheel has travelled further.
func CalcHeading(leftCount, rightCount int32, radius, width float64, countsPerRev uint32, bias float64) float64 {
	diff := int64(rightCount) - int64(leftCount)
	if diff == 0 {
		return 0
	}
	return bias * float64(diff) * math.Pi * radius / (width * float64(countsPerRev))
}

// NormalizeHeading wraps theta into (-pi, pi]. Angles already in range are
// returned unchanged; -pi maps to pi. Non-finite input returns NaN.
func NormalizeHeading(theta float64) float64 {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return math.NaN()
	}
	if theta > -math.Pi && theta <= math.Pi {
		return theta
	}

	r := theta - 2*math.Pi*math.Round(theta/(2*math.Pi))
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}
