// Package regmap exposes the command and status frames as an I2C register
// map. The host writes a CommandFrame at RegCommand and reads the
// StatusFrame at RegStatus.
package regmap

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"

	"diffbot/protocol"
)

// Register layout
const (
	RegCommand = 0x00
	RegStatus  = 0x20

	// MapSize covers both blocks
	MapSize = RegStatus + protocol.StatusFrameSize

	DefaultAddress = 0x42
)

var (
	ErrNoDevice      = errors.New("no device at address")
	ErrEmptyWrite    = errors.New("i2c transaction needs a register byte")
	ErrRegisterRange = errors.New("register access out of range")
)

// Device accesses the register map of one controller over an I2C bus
type Device struct {
	bus  drivers.I2C
	addr uint16
}

// New creates a device at addr on bus
func New(bus drivers.I2C, addr uint16) *Device {
	return &Device{bus: bus, addr: addr}
}

// Address returns the device's bus address
func (d *Device) Address() uint16 {
	return d.addr
}

// WriteCommand stores a command frame in the command block
func (d *Device) WriteCommand(f protocol.CommandFrame) error {
	w := make([]byte, 1+protocol.CommandFrameSize)
	w[0] = RegCommand
	if err := f.Encode(w[1:]); err != nil {
		return err
	}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// ReadCommand reads the command block
func (d *Device) ReadCommand() (protocol.CommandFrame, error) {
	buf := make([]byte, protocol.CommandFrameSize)
	if err := d.bus.Tx(d.addr, []byte{RegCommand}, buf); err != nil {
		return protocol.CommandFrame{}, fmt.Errorf("read command: %w", err)
	}
	return protocol.DecodeCommand(buf)
}

// WriteStatus stores a status frame in the status block. This is the
// controller's side of the map.
func (d *Device) WriteStatus(f protocol.StatusFrame) error {
	w := make([]byte, 1+protocol.StatusFrameSize)
	w[0] = RegStatus
	if err := f.Encode(w[1:]); err != nil {
		return err
	}
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// ReadStatus reads the status block
func (d *Device) ReadStatus() (protocol.StatusFrame, error) {
	buf := make([]byte, protocol.StatusFrameSize)
	if err := d.bus.Tx(d.addr, []byte{RegStatus}, buf); err != nil {
		return protocol.StatusFrame{}, fmt.Errorf("read status: %w", err)
	}
	return protocol.DecodeStatus(buf)
}
