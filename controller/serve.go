package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"diffbot/core"
	"diffbot/protocol"
)

// Serve runs the device side of the serial link: every command block is
// applied with HandleCommand and answered with a status block. Serve
// returns when ctx is done or the link fails, and closes port on return.
func (c *Controller) Serve(ctx context.Context, port io.ReadWriteCloser) error {
	conn := protocol.NewConn(port)
	defer conn.Close()

	c.logger.Info("serving", "version", protocol.Version)
	for {
		block, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		}

		cmd, err := protocol.DecodeCommand(block.Payload)
		if err != nil {
			c.events.Record(core.EvtFrameError, core.ChanLinear, c.clock.Now(), float64(len(block.Payload)), float64(block.Sequence))
			c.logger.Warn("bad command frame", "seq", block.Sequence, "len", len(block.Payload), "err", err)
			continue
		}

		c.HandleCommand(cmd)
		if _, err := conn.Send(c.Status().Bytes()); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}
}
