package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"diffbot/config"
	"diffbot/host/regmap"
	"diffbot/host/rover"
	"diffbot/kinematics"
	"diffbot/planner"
	"diffbot/protocol"
)

// command is one step of the drive plan
type command = kinematics.UnicycleVelocity

// commandPlan returns one command per control step. With rampPoints set,
// linear velocity follows a triangular profile peaking at the requested
// velocity, capped at the configured limit.
func commandPlan(cfg *config.RobotConfig, steps, rampPoints int, linear, angular float64) ([]command, error) {
	if steps < 1 {
		return nil, fmt.Errorf("duration shorter than one control period")
	}

	plan := make([]command, steps)
	if rampPoints == 0 {
		for i := range plan {
			plan[i] = command{Linear: linear, Angular: angular}
		}
		return plan, nil
	}

	if rampPoints < 3 || rampPoints%2 == 0 {
		return nil, fmt.Errorf("ramp needs an odd number of points >= 3, got %d", rampPoints)
	}
	peak := math.Min(linear, cfg.Limits.MaxLinearVelocity)
	if peak <= 0 {
		return nil, fmt.Errorf("ramp needs a positive linear velocity")
	}

	profile := planner.TriangularProfile(rampPoints, 0, peak)
	for i := range plan {
		plan[i] = command{Linear: profile[i*len(profile)/steps], Angular: angular}
	}
	return plan, nil
}

// link is the host end of a connection to the controller
type link interface {
	Send(cmd command, flags uint16) error
	Status(ctx context.Context) (protocol.StatusFrame, error)
}

type serialLink struct {
	client *rover.Client
}

func (l *serialLink) Send(cmd command, flags uint16) error {
	_, err := l.client.SendVelocity(cmd.Linear, cmd.Angular, flags)
	return err
}

func (l *serialLink) Status(ctx context.Context) (protocol.StatusFrame, error) {
	return l.client.WaitStatus(ctx)
}

type i2cLink struct {
	dev *regmap.Device
	seq uint16
}

func (l *i2cLink) Send(cmd command, flags uint16) error {
	l.seq++
	return l.dev.WriteCommand(protocol.CommandFrame{
		Linear:   float32(cmd.Linear),
		Angular:  float32(cmd.Angular),
		Flags:    flags,
		Sequence: l.seq,
	})
}

func (l *i2cLink) Status(ctx context.Context) (protocol.StatusFrame, error) {
	return l.dev.ReadStatus()
}

// drive sends the plan one command per period, then a stop. onStatus, if
// set, sees every status frame. It returns the last status received.
func drive(ctx context.Context, l link, plan []command, period time.Duration, onStatus func(protocol.StatusFrame, time.Duration)) (protocol.StatusFrame, error) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var last protocol.StatusFrame
	exchange := func(cmd command, flags uint16) error {
		if err := l.Send(cmd, flags); err != nil {
			return err
		}
		sctx, cancel := context.WithTimeout(ctx, 10*period)
		defer cancel()
		status, err := l.Status(sctx)
		if err != nil {
			return fmt.Errorf("waiting for status: %w", err)
		}
		last = status
		if onStatus != nil {
			onStatus(status, period)
		}
		printStatus(status)
		return nil
	}

	for i, cmd := range plan {
		flags := protocol.CmdEnable
		if i == 0 {
			flags |= protocol.CmdResetOdometry
		}
		if err := exchange(cmd, flags); err != nil {
			return last, err
		}

		select {
		case <-ctx.Done():
			fmt.Println("Interrupted, stopping")
			return last, l.Send(command{}, 0)
		case <-ticker.C:
		}
	}

	return last, exchange(command{}, 0)
}
