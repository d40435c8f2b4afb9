package main

import (
	"context"
	"fmt"
	"math"
	"net"
	"time"

	"diffbot/config"
	"diffbot/controller"
	"diffbot/core"
	"diffbot/host/regmap"
	"diffbot/host/rover"
	"diffbot/kinematics"
	"diffbot/log"
	"diffbot/protocol"
)

// plant turns the controller's reported body velocity into encoder counts
type plant struct {
	geometry     kinematics.Geometry
	countsPerRev float64
	left, right  float64
	ctrl         *controller.Controller
}

func newPlant(cfg *config.RobotConfig, ctrl *controller.Controller) *plant {
	return &plant{
		geometry:     cfg.Geometry,
		countsPerRev: float64(cfg.Encoder.CountsPerRev),
		ctrl:         ctrl,
	}
}

// advance moves the wheels for dt at the velocity in s and feeds the
// counts back to the controller
func (p *plant) advance(s protocol.StatusFrame, dt time.Duration) {
	wheels := kinematics.UniToDiff(float64(s.Linear), float64(s.Angular), p.geometry.WheelRadius, p.geometry.TrackWidth)
	perRad := p.countsPerRev / (2 * math.Pi)
	p.left += wheels.Left * dt.Seconds() * perRad
	p.right += wheels.Right * dt.Seconds() * perRad
	p.ctrl.UpdateEncoders(int32(math.Round(p.left)), int32(math.Round(p.right)))
}

func runSim(ctx context.Context, cfg *config.RobotConfig, plan []command, period time.Duration, linkName string, dump bool) error {
	ctrl, err := controller.New(cfg, core.NewMonotonicClock())
	if err != nil {
		return err
	}
	p := newPlant(cfg, ctrl)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var l link
	switch linkName {
	case "serial":
		hostSide, deviceSide := net.Pipe()
		go func() {
			if err := ctrl.Serve(ctx, deviceSide); err != nil {
				log.Error("simulated controller stopped", "err", err)
			}
		}()
		client := rover.New(hostSide)
		defer client.Close()
		l = &serialLink{client: client}

	case "i2c":
		bank := regmap.NewBank(cfg.Link.I2CAddress)
		go func() {
			if err := ctrl.ServeRegisters(ctx, regmap.New(bank, cfg.Link.I2CAddress), period/2); err != nil {
				log.Error("simulated controller stopped", "err", err)
			}
		}()
		l = &i2cLink{dev: regmap.New(bank, cfg.Link.I2CAddress)}

	default:
		return fmt.Errorf("unknown link %q", linkName)
	}

	fmt.Printf("Simulating %s over %s, %d steps of %v\n", cfg.Name, linkName, len(plan), period)
	_, err = drive(ctx, l, plan, period, p.advance)

	pose := ctrl.Pose()
	fmt.Printf("\nFinal pose: x=%.3f m y=%.3f m heading=%.3f rad\n", pose.X, pose.Y, pose.Heading)
	if dump {
		ctrl.DumpEvents(func(s string) { fmt.Println(s) })
	}
	return err
}
