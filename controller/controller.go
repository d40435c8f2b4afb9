// Package controller runs the drive control loop: it governs and slews
// commanded body velocities, converts them to wheel speeds and motor duty,
// and integrates encoder feedback into odometry.
package controller

import (
	"log/slog"
	"math"
	"sync"

	"diffbot/calibration"
	"diffbot/config"
	"diffbot/core"
	"diffbot/kinematics"
	"diffbot/log"
	"diffbot/planner"
	"diffbot/protocol"
)

// Output is the result of one control update
type Output struct {
	Body      kinematics.UnicycleVelocity // after governor and slew limiting
	Wheels    kinematics.WheelVelocities
	LeftDuty  int16
	RightDuty int16
	Clamped   bool // commanded wheel speeds exceeded the wheel limit
	Limited   bool // a channel was held back by its acceleration or velocity limit
}

// Controller owns the motion pipeline for one robot
type Controller struct {
	mu sync.Mutex

	cfg      *config.RobotConfig
	clock    core.Clock
	kin      *kinematics.Differential
	governor *planner.Governor
	linear   *planner.Limiter
	angular  *planner.Limiter
	left     *calibration.Table
	right    *calibration.Table
	odometry *kinematics.Odometry
	events   core.EventRing
	logger   *slog.Logger

	enabled    bool
	polled     bool
	sequence   uint16
	leftCount  int32
	rightCount int32
	last       Output
}

// New builds a controller from a validated configuration. The controller
// starts disabled.
func New(cfg *config.RobotConfig, clock core.Clock) (*Controller, error) {
	kin, err := kinematics.NewDifferential(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	left, right, err := cfg.Tables()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:      cfg,
		clock:    clock,
		kin:      kin,
		governor: planner.NewGovernor(cfg.Geometry),
		linear: planner.NewLimiter(planner.Limits{
			MaxVelocity: cfg.Limits.MaxLinearVelocity,
			MaxAccel:    cfg.Limits.MaxLinearAccel,
		}, clock),
		angular: planner.NewLimiter(planner.Limits{
			MaxVelocity: cfg.Limits.MaxAngularVelocity,
			MaxAccel:    cfg.Limits.MaxAngularAccel,
		}, clock),
		left:     left,
		right:    right,
		odometry: kinematics.NewOdometry(cfg.Geometry, cfg.Encoder.CountsPerRev, cfg.Encoder.HeadingBias),
		logger:   log.With("component", "controller", "robot", cfg.Name),
	}
	return c, nil
}

// Enable turns the motors on or off. Disabling zeroes the output at once
// and brings both velocity channels to rest.
func (c *Controller) Enable(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setEnabled(on)
}

func (c *Controller) setEnabled(on bool) {
	if on == c.enabled {
		return
	}
	c.enabled = on

	now := c.clock.Now()
	c.linear.Reset(now)
	c.angular.Reset(now)
	if !on {
		c.last = Output{}
		c.events.Record(core.EvtDisabled, core.ChanLinear, now, 0, 0)
		c.logger.Info("motors disabled")
	} else {
		c.logger.Info("motors enabled")
	}
}

// Enabled reports whether the motors are enabled
func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Update runs one control step for the commanded body velocity
func (c *Controller) Update(cmd kinematics.UnicycleVelocity) Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update(cmd)
}

func (c *Controller) update(cmd kinematics.UnicycleVelocity) Output {
	if !c.enabled {
		c.last = Output{}
		return c.last
	}
	now := c.clock.Now()

	governed, clamped := c.governor.Apply(cmd)
	if clamped {
		c.events.Record(core.EvtGovernorClamp, core.ChanLinear, now, cmd.Linear, cmd.Angular)
		c.logger.Debug("wheel limit exceeded", "linear", cmd.Linear, "angular", cmd.Angular)
	}

	lin, linLimited := c.linear.Step(governed.Linear)
	if linLimited {
		c.events.Record(core.EvtAccelLimit, core.ChanLinear, now, governed.Linear, lin)
	}
	ang, angLimited := c.angular.Step(governed.Angular)
	if angLimited {
		c.events.Record(core.EvtAccelLimit, core.ChanAngular, now, governed.Angular, ang)
	}

	body := kinematics.UnicycleVelocity{Linear: lin, Angular: ang}
	wheels := c.kin.CalcWheels(body)

	c.last = Output{
		Body:      body,
		Wheels:    wheels,
		LeftDuty:  dutyFor(c.left, c.cfg.Calibration.Left.VelocityScale, wheels.Left),
		RightDuty: dutyFor(c.right, c.cfg.Calibration.Right.VelocityScale, wheels.Right),
		Clamped:   clamped,
		Limited:   linLimited || angLimited,
	}
	return c.last
}

// dutyFor looks up the duty magnitude for a wheel velocity and gives it the
// velocity's sign.
func dutyFor(table *calibration.Table, scale, velocity float64) int16 {
	x := math.Abs(math.Round(velocity * scale))
	if x > math.MaxInt16 {
		x = math.MaxInt16
	}

	duty := table.Lookup(int16(x))
	if velocity < 0 {
		return -duty
	}
	return duty
}

// HandleCommand applies a command frame from the host and runs a control
// step with its velocity.
func (c *Controller) HandleCommand(f protocol.CommandFrame) Output {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.sequence = f.Sequence
	c.events.Record(core.EvtCommand, core.ChanLinear, now, float64(f.Linear), float64(f.Angular))

	if f.Flags&protocol.CmdResetOdometry != 0 {
		c.odometry.Reset()
		c.events.Record(core.EvtOdometryReset, core.ChanLinear, now, 0, 0)
		c.logger.Info("odometry reset", "seq", f.Sequence)
	}
	c.setEnabled(f.Flags&protocol.CmdEnable != 0)

	return c.update(kinematics.UnicycleVelocity{
		Linear:  float64(f.Linear),
		Angular: float64(f.Angular),
	})
}

// UpdateEncoders feeds absolute encoder counts into odometry
func (c *Controller) UpdateEncoders(left, right int32) kinematics.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leftCount, c.rightCount = left, right
	return c.odometry.Update(left, right)
}

// Pose returns the odometry pose
func (c *Controller) Pose() kinematics.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.odometry.Pose()
}

// Status reports the controller state as a status frame
func (c *Controller) Status() protocol.StatusFrame {
	c.mu.Lock()
	defer c.mu.Unlock()

	var flags uint16
	if c.enabled {
		flags |= protocol.StatusEnabled
	}
	if c.last.Clamped {
		flags |= protocol.StatusGovernorClamped
	}
	if c.last.Limited {
		flags |= protocol.StatusAccelLimited
	}

	return protocol.StatusFrame{
		Flags:      flags,
		Sequence:   c.sequence,
		LeftCount:  c.leftCount,
		RightCount: c.rightCount,
		Heading:    float32(c.odometry.Pose().Heading),
		Linear:     float32(c.last.Body.Linear),
		Angular:    float32(c.last.Body.Angular),
		LeftDuty:   c.last.LeftDuty,
		RightDuty:  c.last.RightDuty,
		Uptime:     uint32(c.clock.Now().Milliseconds()),
	}
}

// Ramp returns a triangular linear velocity profile of n points from
// lower up to peak and back. peak is capped at the configured linear limit.
func (c *Controller) Ramp(n int, lower, peak float64) []float64 {
	peak = math.Min(peak, c.cfg.Limits.MaxLinearVelocity)
	return planner.TriangularProfile(n, lower, peak)
}

// Events returns the recorded control events, oldest first
func (c *Controller) Events() []core.Event {
	return c.events.Events()
}

// DumpEvents writes the event ring through w
func (c *Controller) DumpEvents(w core.DebugWriter) {
	c.events.Dump(w)
}
