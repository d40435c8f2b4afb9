package controller

import (
	"context"
	"fmt"
	"time"

	"diffbot/host/regmap"
	"diffbot/kinematics"
)

// PollRegisters runs one control step against an I2C register map. A new
// command sequence number is applied with HandleCommand; otherwise the
// previous command keeps being tracked. The status block is refreshed
// afterwards.
func (c *Controller) PollRegisters(dev *regmap.Device) error {
	cmd, err := dev.ReadCommand()
	if err != nil {
		return err
	}

	c.mu.Lock()
	fresh := !c.polled || cmd.Sequence != c.sequence
	c.polled = true
	c.mu.Unlock()

	if fresh {
		c.HandleCommand(cmd)
	} else {
		c.Update(kinematics.UnicycleVelocity{
			Linear:  float64(cmd.Linear),
			Angular: float64(cmd.Angular),
		})
	}

	return dev.WriteStatus(c.Status())
}

// ServeRegisters polls the register map every period until ctx is done
func (c *Controller) ServeRegisters(ctx context.Context, dev *regmap.Device, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	c.logger.Info("serving register map", "addr", dev.Address(), "period", period)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.PollRegisters(dev); err != nil {
				return fmt.Errorf("serve registers: %w", err)
			}
		}
	}
}
