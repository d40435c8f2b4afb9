// Package serial opens the serial link to the drive controller.
package serial

import (
	"io"

	"diffbot/config"
)

// Port represents a serial port. Besides the native port this is
// satisfied by in-memory pipes in simulations and tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the default link settings for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100,
	}
}

// ConfigFromLink builds a port configuration from the robot's link
// settings
func ConfigFromLink(link config.Link) *Config {
	cfg := DefaultConfig(link.Device)
	if link.Baud != 0 {
		cfg.Baud = link.Baud
	}
	if link.ReadTimeoutMS != 0 {
		cfg.ReadTimeout = link.ReadTimeoutMS
	}
	return cfg
}
