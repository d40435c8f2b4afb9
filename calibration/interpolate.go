// Package calibration maps wheel velocities to actuator commands through
// measured calibration tables: a binary search brackets the input between
// two samples and the output is interpolated linearly between them.
package calibration

import "diffbot/core"

// BinaryRangeSearch returns the indices of the table entries bracketing
// target in the ascending slice points. When target equals an entry both
// indices point at it; otherwise upper == lower+1 and
// points[lower] < target < points[upper]. Targets outside the table
// saturate to the nearest end, (0, 0) or (n-1, n-1).
//
// points must hold at least two entries.
func BinaryRangeSearch(target int16, points []int16) (lower, upper int) {
	core.Require(len(points) >= 2, "BinaryRangeSearch", "calibration table needs at least 2 points")

	last := len(points) - 1
	if target <= points[0] {
		return 0, 0
	}
	if target >= points[last] {
		return last, last
	}

	// Loop holds points[lo] < target < points[hi]
	lo, hi := 0, last
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		switch {
		case points[mid] == target:
			return mid, mid
		case points[mid] < target:
			lo = mid
		default:
			hi = mid
		}
	}
	return lo, hi
}

// Interpolate returns y at x on the line through (x1, y1) and (x2, y2).
// A degenerate range (x1 == x2) yields the midpoint of y1 and y2,
// truncated toward zero. Arithmetic is done in 64 bits and narrowed to
// int16 only at the end.
func Interpolate(x, x1, x2 int16, y1, y2 uint16) int16 {
	if x1 == x2 {
		if y1 == y2 {
			return int16(y1)
		}
		return int16(int64(y1) + (int64(y2)-int64(y1))/2)
	}
	dy := int64(y2) - int64(y1)
	dx := int64(x2) - int64(x1)
	return int16(int64(y1) + (int64(x)-int64(x1))*dy/dx)
}
