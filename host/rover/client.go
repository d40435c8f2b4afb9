// Package rover is the host side of the serial link: it sends velocity
// commands to the drive controller and collects its status replies.
package rover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"diffbot/config"
	"diffbot/host/serial"
	"diffbot/log"
	"diffbot/protocol"
)

// ErrNotConnected is returned after the client has been closed
var ErrNotConnected = errors.New("not connected to controller")

// Client talks to one drive controller
type Client struct {
	mu       sync.Mutex
	conn     *protocol.Conn
	sequence uint16
	last     protocol.StatusFrame
	haveLast bool
}

// Dial opens the serial device named by link and starts a client on it
func Dial(link config.Link) (*Client, error) {
	port, err := serial.Open(serial.ConfigFromLink(link))
	if err != nil {
		return nil, err
	}
	log.Info("connected to controller", "device", link.Device, "baud", link.Baud)
	return New(port), nil
}

// New starts a client on an open port
func New(port io.ReadWriteCloser) *Client {
	return &Client{conn: protocol.NewConn(port)}
}

// SendVelocity sends a velocity command and returns its sequence number
func (c *Client) SendVelocity(linear, angular float64, flags uint16) (uint16, error) {
	c.mu.Lock()
	conn := c.conn
	c.sequence++
	frame := protocol.CommandFrame{
		Linear:   float32(linear),
		Angular:  float32(angular),
		Flags:    flags,
		Sequence: c.sequence,
	}
	c.mu.Unlock()

	if conn == nil {
		return 0, ErrNotConnected
	}
	if _, err := conn.Send(frame.Bytes()); err != nil {
		return 0, fmt.Errorf("send velocity: %w", err)
	}
	return frame.Sequence, nil
}

// Stop commands zero velocity with the motors disabled
func (c *Client) Stop() error {
	_, err := c.SendVelocity(0, 0, 0)
	return err
}

// WaitStatus blocks until the next status frame arrives or ctx is done.
// Blocks that do not hold a status frame are skipped.
func (c *Client) WaitStatus(ctx context.Context) (protocol.StatusFrame, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return protocol.StatusFrame{}, ErrNotConnected
	}

	for {
		block, err := conn.Receive(ctx)
		if err != nil {
			return protocol.StatusFrame{}, err
		}
		status, err := protocol.DecodeStatus(block.Payload)
		if err != nil {
			log.Warn("ignoring short status block", "seq", block.Sequence, "len", len(block.Payload))
			continue
		}

		c.mu.Lock()
		c.last = status
		c.haveLast = true
		c.mu.Unlock()
		return status, nil
	}
}

// LastStatus returns the most recent status frame, if any
func (c *Client) LastStatus() (protocol.StatusFrame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.haveLast
}

// Dropped returns the number of corrupt blocks seen on the link
func (c *Client) Dropped() int {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0
	}
	return conn.Dropped()
}

// Close shuts the link down
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
