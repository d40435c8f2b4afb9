package planner

import (
	"math"

	"diffbot/kinematics"
)

// EnsureAngularVelocity gives rotation priority over translation. If the
// wheel speeds needed for (*v, *w) exceed maxWheel on either side, *v is
// set to zero and *w is left as is. A wheel exactly at maxWheel is allowed.
func EnsureAngularVelocity(v, w *float64, radius, trackWidth, maxWheel float64) {
	if wheelsOverLimit(*v, *w, radius, trackWidth, maxWheel) {
		*v = 0
	}
}

// Governor applies EnsureAngularVelocity for a fixed geometry
type Governor struct {
	Geometry kinematics.Geometry
}

// NewGovernor creates a governor for g
func NewGovernor(g kinematics.Geometry) *Governor {
	return &Governor{Geometry: g}
}

// Apply returns the governed velocity and whether the commanded wheel
// speeds were over the limit. A pure rotation can be over the limit with
// nothing left to drop; it is still reported.
func (g *Governor) Apply(cmd kinematics.UnicycleVelocity) (kinematics.UnicycleVelocity, bool) {
	v, w := cmd.Linear, cmd.Angular
	over := wheelsOverLimit(v, w, g.Geometry.WheelRadius, g.Geometry.TrackWidth, g.Geometry.MaxWheelAngularVelocity)
	EnsureAngularVelocity(&v, &w, g.Geometry.WheelRadius, g.Geometry.TrackWidth, g.Geometry.MaxWheelAngularVelocity)
	return kinematics.UnicycleVelocity{Linear: v, Angular: w}, over
}

func wheelsOverLimit(v, w, radius, trackWidth, maxWheel float64) bool {
	wheels := kinematics.UniToDiff(v, w, radius, trackWidth)
	return math.Abs(wheels.Left) > maxWheel || math.Abs(wheels.Right) > maxWheel
}
