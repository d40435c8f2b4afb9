package planner

import (
	"time"

	"diffbot/core"
)

// SlewState is the memory of one acceleration-limited channel. The zero
// value is a channel at rest at the clock epoch.
type SlewState struct {
	LastVelocity float64
	LastTime     time.Duration
}

// LimitLinearAccel moves the channel toward target by at most
// maxAccel*elapsed, then clamps the result to +/-maxVelocity. The target is
// reached exactly when it lies within one step. A clock that went
// backwards counts as no elapsed time. state is updated with the result.
func LimitLinearAccel(state *SlewState, target, maxVelocity, maxAccel float64, now time.Duration) float64 {
	core.Require(state != nil, "LimitLinearAccel", "nil slew state")

	elapsed := now - state.LastTime
	if elapsed < 0 {
		elapsed = 0
	}
	deltaMax := maxAccel * elapsed.Seconds()

	result := target
	switch delta := target - state.LastVelocity; {
	case delta > deltaMax:
		result = state.LastVelocity + deltaMax
	case delta < -deltaMax:
		result = state.LastVelocity - deltaMax
	}

	if result > maxVelocity {
		result = maxVelocity
	} else if result < -maxVelocity {
		result = -maxVelocity
	}

	state.LastVelocity = result
	state.LastTime = now
	return result
}

// Limits bounds one velocity channel
type Limits struct {
	MaxVelocity float64
	MaxAccel    float64
}

// Limiter is an acceleration-limited velocity channel driven by a clock
type Limiter struct {
	state  SlewState
	limits Limits
	clock  core.Clock
}

// NewLimiter creates a limiter at rest, stamped with the clock's current
// time so the first step sees only the time since construction.
func NewLimiter(limits Limits, clock core.Clock) *Limiter {
	l := &Limiter{limits: limits, clock: clock}
	l.Reset(clock.Now())
	return l
}

// Step advances the channel toward target. The second result reports
// whether the acceleration or velocity limit held the output back.
func (l *Limiter) Step(target float64) (float64, bool) {
	v := LimitLinearAccel(&l.state, target, l.limits.MaxVelocity, l.limits.MaxAccel, l.clock.Now())
	return v, v != target
}

// Reset brings the channel to rest at time now
func (l *Limiter) Reset(now time.Duration) {
	l.state = SlewState{LastTime: now}
}

// State returns a copy of the slew state
func (l *Limiter) State() SlewState {
	return l.state
}

// Limits returns the channel limits
func (l *Limiter) Limits() Limits {
	return l.limits
}
