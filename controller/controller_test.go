package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffbot/config"
	"diffbot/core"
	"diffbot/kinematics"
	"diffbot/protocol"
)

func newTestController(t *testing.T) (*Controller, *core.ManualClock) {
	t.Helper()
	clock := &core.ManualClock{}
	c, err := New(config.Default(), clock)
	require.NoError(t, err)
	return c, clock
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Geometry.WheelRadius = 0
	_, err := New(cfg, &core.ManualClock{})
	assert.Error(t, err)
}

func TestDisabledOutputsNothing(t *testing.T) {
	c, clock := newTestController(t)
	clock.Advance(time.Second)

	out := c.Update(kinematics.UnicycleVelocity{Linear: 0.3})
	assert.Equal(t, Output{}, out)
	assert.False(t, c.Enabled())
}

func TestUpdateSlewsAndMapsDuty(t *testing.T) {
	c, clock := newTestController(t)
	c.Enable(true)

	clock.Advance(100 * time.Millisecond)
	out := c.Update(kinematics.UnicycleVelocity{Linear: 0.3})

	// 0.5 m/s^2 for 100ms
	assert.InDelta(t, 0.05, out.Body.Linear, 1e-12)
	assert.True(t, out.Limited)
	assert.False(t, out.Clamped)
	assert.InDelta(t, 0.05/0.0775, out.Wheels.Left, 1e-9)
	assert.Equal(t, int16(124), out.LeftDuty)
	assert.Equal(t, out.LeftDuty, out.RightDuty)

	clock.Advance(10 * time.Second)
	out = c.Update(kinematics.UnicycleVelocity{Linear: 0.3})
	assert.InDelta(t, 0.3, out.Body.Linear, 1e-12)
	assert.False(t, out.Limited)
}

func TestUpdateReverseDuty(t *testing.T) {
	c, clock := newTestController(t)
	c.Enable(true)

	clock.Advance(10 * time.Second)
	out := c.Update(kinematics.UnicycleVelocity{Linear: -0.3})
	assert.Less(t, out.LeftDuty, int16(0))
	assert.Equal(t, out.LeftDuty, out.RightDuty)

	clock.Advance(10 * time.Second)
	out = c.Update(kinematics.UnicycleVelocity{Angular: 1})
	assert.Less(t, out.LeftDuty, int16(0))
	assert.Greater(t, out.RightDuty, int16(0))
	assert.Equal(t, -out.LeftDuty, out.RightDuty)
}

func TestUpdateReverseWithPositiveOnlyTable(t *testing.T) {
	cfg := config.Default()
	cal := config.WheelCalibration{
		VelocityScale: 1000,
		Velocity:      []int16{0, 500, 2000, 6000, 10000},
		Duty:          []uint16{0, 110, 260, 640, 1000},
	}
	cfg.Calibration.Left = cal
	cfg.Calibration.Right = cal
	require.NoError(t, cfg.Validate())

	clock := &core.ManualClock{}
	c, err := New(cfg, clock)
	require.NoError(t, err)
	c.Enable(true)

	clock.Advance(10 * time.Second)
	forward := c.Update(kinematics.UnicycleVelocity{Linear: 0.3})
	assert.InDelta(t, 0.3/0.0775, forward.Wheels.Left, 1e-9)
	assert.Equal(t, int16(437), forward.LeftDuty)
	assert.Equal(t, forward.LeftDuty, forward.RightDuty)

	clock.Advance(10 * time.Second)
	reverse := c.Update(kinematics.UnicycleVelocity{Linear: -0.3})
	assert.InDelta(t, -0.3/0.0775, reverse.Wheels.Left, 1e-9)
	assert.Equal(t, -forward.LeftDuty, reverse.LeftDuty)
	assert.Equal(t, -forward.RightDuty, reverse.RightDuty)

	clock.Advance(10 * time.Second)
	spin := c.Update(kinematics.UnicycleVelocity{Angular: 1})
	assert.Less(t, spin.LeftDuty, int16(0))
	assert.Equal(t, -spin.LeftDuty, spin.RightDuty)
}

func TestUpdateGovernorClamp(t *testing.T) {
	c, clock := newTestController(t)
	c.Enable(true)

	clock.Advance(10 * time.Second)
	out := c.Update(kinematics.UnicycleVelocity{Linear: 0.7, Angular: 1.5})
	assert.True(t, out.Clamped)
	assert.Equal(t, 0.0, out.Body.Linear)
	assert.InDelta(t, 1.5, out.Body.Angular, 1e-12)

	events := c.Events()
	require.NotEmpty(t, events)
	clamps := 0
	for _, evt := range events {
		if evt.Type == core.EvtGovernorClamp {
			clamps++
			assert.Equal(t, 0.7, evt.Value1)
		}
	}
	assert.Equal(t, 1, clamps)

	clock.Advance(10 * time.Second)
	out = c.Update(kinematics.UnicycleVelocity{Angular: 5})
	assert.True(t, out.Clamped)
	assert.Equal(t, protocol.StatusGovernorClamped, c.Status().Flags&protocol.StatusGovernorClamped)
}

func TestHandleCommand(t *testing.T) {
	c, clock := newTestController(t)
	c.UpdateEncoders(0, 0)
	c.UpdateEncoders(500, 500)
	require.NotEqual(t, kinematics.Pose{}, c.Pose())

	clock.Advance(time.Second)
	c.HandleCommand(protocol.CommandFrame{
		Linear:   0.2,
		Flags:    protocol.CmdEnable | protocol.CmdResetOdometry,
		Sequence: 7,
	})
	assert.True(t, c.Enabled())
	assert.Equal(t, kinematics.Pose{}, c.Pose())

	clock.Advance(time.Second)
	out := c.HandleCommand(protocol.CommandFrame{Linear: 0.2, Flags: protocol.CmdEnable, Sequence: 8})
	assert.InDelta(t, 0.2, out.Body.Linear, 1e-6)

	status := c.Status()
	assert.Equal(t, uint16(8), status.Sequence)
	assert.Equal(t, protocol.StatusEnabled, status.Flags&protocol.StatusEnabled)
	assert.InDelta(t, 0.2, status.Linear, 1e-6)

	out = c.HandleCommand(protocol.CommandFrame{Linear: 0.2, Sequence: 9})
	assert.Equal(t, Output{}, out)
	assert.False(t, c.Enabled())

	ring := &core.EventRing{}
	for _, evt := range c.Events() {
		ring.Record(evt.Type, evt.Channel, evt.At, evt.Value1, evt.Value2)
	}
	assert.Equal(t, 3, ring.Count(core.EvtCommand))
	assert.Equal(t, 1, ring.Count(core.EvtOdometryReset))
	assert.Equal(t, 1, ring.Count(core.EvtDisabled))
}

func TestStatus(t *testing.T) {
	c, clock := newTestController(t)
	clock.Set(1500 * time.Millisecond)

	c.UpdateEncoders(10, 20)
	c.UpdateEncoders(-40, 60)

	status := c.Status()
	assert.Equal(t, uint16(0), status.Flags)
	assert.Equal(t, int32(-40), status.LeftCount)
	assert.Equal(t, int32(60), status.RightCount)
	assert.Greater(t, status.Heading, float32(0))
	assert.Equal(t, uint32(1500), status.Uptime)

	c.Enable(true)
	clock.Advance(100 * time.Millisecond)
	c.Update(kinematics.UnicycleVelocity{Linear: 0.3})
	status = c.Status()
	assert.Equal(t, protocol.StatusEnabled|protocol.StatusAccelLimited, status.Flags)
	assert.Equal(t, int16(124), status.LeftDuty)
}

func TestRamp(t *testing.T) {
	c, _ := newTestController(t)

	profile := c.Ramp(5, 0, 5)
	require.Len(t, profile, 5)
	assert.InDelta(t, 0.775, profile[2], 1e-12)
	assert.Equal(t, 0.0, profile[0])
	assert.InDelta(t, 0.0, profile[4], 1e-12)
}

func TestDumpEvents(t *testing.T) {
	c, clock := newTestController(t)
	c.Enable(true)
	clock.Advance(100 * time.Millisecond)
	c.Update(kinematics.UnicycleVelocity{Linear: 0.3})

	var lines []string
	c.DumpEvents(func(s string) { lines = append(lines, s) })
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "ACCEL_LIMIT")
}
