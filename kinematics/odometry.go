package kinematics

import "math"

// Pose is a planar position in metres and a heading in (-pi, pi]
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}

// Odometry integrates wheel encoder counts into a pose. The first update
// only records the counters; motion is measured from then on. Counter
// wrap-around is handled by taking 32-bit differences.
type Odometry struct {
	geometry     Geometry
	countsPerRev uint32
	bias         float64

	primed    bool
	lastLeft  int32
	lastRight int32
	pose      Pose
}

// NewOdometry creates an odometry integrator. bias is passed through to
// CalcHeading.
func NewOdometry(g Geometry, countsPerRev uint32, bias float64) *Odometry {
	return &Odometry{
		geometry:     g,
		countsPerRev: countsPerRev,
		bias:         bias,
	}
}

// Update feeds the latest absolute encoder counts and returns the new pose
func (o *Odometry) Update(left, right int32) Pose {
	if !o.primed || o.countsPerRev == 0 {
		o.lastLeft, o.lastRight = left, right
		o.primed = true
		return o.pose
	}

	dl := left - o.lastLeft
	dr := right - o.lastRight
	o.lastLeft, o.lastRight = left, right
	if dl == 0 && dr == 0 {
		return o.pose
	}

	perCount := 2 * math.Pi * o.geometry.WheelRadius / float64(o.countsPerRev)
	dist := float64(int64(dl)+int64(dr)) / 2 * perCount
	dTheta := CalcHeading(dl, dr, o.geometry.WheelRadius, o.geometry.TrackWidth, o.countsPerRev, o.bias)

	// Advance along the mean heading of the step
	mid := o.pose.Heading + dTheta/2
	o.pose.X += dist * math.Cos(mid)
	o.pose.Y += dist * math.Sin(mid)
	o.pose.Heading = NormalizeHeading(o.pose.Heading + dTheta)
	return o.pose
}

// Pose returns the current pose
func (o *Odometry) Pose() Pose {
	return o.pose
}

// Counts returns the last encoder counts seen
func (o *Odometry) Counts() (left, right int32) {
	return o.lastLeft, o.lastRight
}

// Reset zeroes the pose. The counters stay primed, so motion since the
// last update is not lost or double counted.
func (o *Odometry) Reset() {
	o.pose = Pose{}
}
