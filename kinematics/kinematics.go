// Package kinematics converts between body (unicycle) velocities and
// per-wheel angular velocities for a differential-drive base, and estimates
// heading from wheel encoders.
package kinematics

import "errors"

// WheelVelocities holds per-wheel angular velocity in rad/s
type WheelVelocities struct {
	Left  float64
	Right float64
}

// UnicycleVelocity holds body velocity: linear in m/s along the heading,
// angular in rad/s about the vertical axis
type UnicycleVelocity struct {
	Linear  float64
	Angular float64
}

// Kinematics defines the interface for body/wheel velocity transformations
type Kinematics interface {
	// CalcWheels converts a body velocity to wheel velocities
	CalcWheels(v UnicycleVelocity) WheelVelocities

	// CalcBody converts wheel velocities to a body velocity
	CalcBody(w WheelVelocities) UnicycleVelocity

	// CheckLimits reports whether wheel velocities are within the motor limits
	CheckLimits(w WheelVelocities) error
}

// UniToDiff converts a unicycle velocity to left/right wheel angular
// velocities for wheels of the given radius spaced trackWidth apart.
func UniToDiff(linear, angular, radius, trackWidth float64) WheelVelocities {
	return WheelVelocities{
		Left:  (linear - angular*trackWidth/2) / radius,
		Right: (linear + angular*trackWidth/2) / radius,
	}
}

// DiffToUni converts left/right wheel angular velocities to a unicycle
// velocity. It is the inverse of UniToDiff.
func DiffToUni(left, right, radius, trackWidth float64) UnicycleVelocity {
	return UnicycleVelocity{
		Linear:  (left + right) / 2 * radius,
		Angular: (right - left) * radius / trackWidth,
	}
}

var (
	ErrBadRadius     = errors.New("wheel radius must be positive")
	ErrBadTrackWidth = errors.New("track width must be positive")
	ErrBadWheelLimit = errors.New("max wheel angular velocity must be positive")
	ErrWheelLimit    = errors.New("wheel velocity exceeds limit")
)

// Geometry describes the drive base. It is supplied by configuration; no
// package hard-codes robot dimensions.
type Geometry struct {
	WheelRadius             float64 `json:"wheel_radius" yaml:"wheel_radius"`                             // m
	TrackWidth              float64 `json:"track_width" yaml:"track_width"`                               // m, wheel contact to wheel contact
	MaxWheelAngularVelocity float64 `json:"max_wheel_angular_velocity" yaml:"max_wheel_angular_velocity"` // rad/s
}

// Validate checks that every dimension is positive
func (g Geometry) Validate() error {
	if !(g.WheelRadius > 0) {
		return ErrBadRadius
	}
	if !(g.TrackWidth > 0) {
		return ErrBadTrackWidth
	}
	if !(g.MaxWheelAngularVelocity > 0) {
		return ErrBadWheelLimit
	}
	return nil
}

// MaxLinearVelocity is the body speed with both wheels at their limit
func (g Geometry) MaxLinearVelocity() float64 {
	return g.MaxWheelAngularVelocity * g.WheelRadius
}

// MaxAngularVelocity is the turn rate on the spot with the wheels at
// opposite limits
func (g Geometry) MaxAngularVelocity() float64 {
	return 2 * g.MaxWheelAngularVelocity * g.WheelRadius / g.TrackWidth
}

// Differential implements Kinematics for a two-wheel differential drive
type Differential struct {
	geometry Geometry
}

// NewDifferential creates differential kinematics for a validated geometry
func NewDifferential(g Geometry) (*Differential, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Differential{geometry: g}, nil
}

// Geometry returns the drive geometry
func (k *Differential) Geometry() Geometry {
	return k.geometry
}

// CalcWheels converts a body velocity to wheel velocities
func (k *Differential) CalcWheels(v UnicycleVelocity) WheelVelocities {
	return UniToDiff(v.Linear, v.Angular, k.geometry.WheelRadius, k.geometry.TrackWidth)
}

// CalcBody converts wheel velocities to a body velocity
func (k *Differential) CalcBody(w WheelVelocities) UnicycleVelocity {
	return DiffToUni(w.Left, w.Right, k.geometry.WheelRadius, k.geometry.TrackWidth)
}

// CheckLimits validates that both wheels are within the motor limit.
// A wheel exactly at the limit is allowed.
func (k *Differential) CheckLimits(w WheelVelocities) error {
	limit := k.geometry.MaxWheelAngularVelocity
	if abs(w.Left) > limit || abs(w.Right) > limit {
		return ErrWheelLimit
	}
	return nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
