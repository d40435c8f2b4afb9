package controller

import (
	"io"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// UARTPort adapts a UART to the port Serve expects. Reads with nothing
// buffered return io.EOF, which the link treats as a read timeout.
type UARTPort struct {
	uart   drivers.UART
	closed atomic.Bool
}

// NewUARTPort wraps uart
func NewUARTPort(uart drivers.UART) *UARTPort {
	return &UARTPort{uart: uart}
}

// Read reads whatever the UART has buffered
func (p *UARTPort) Read(b []byte) (int, error) {
	if p.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	n := p.uart.Buffered()
	if n == 0 {
		return 0, io.EOF
	}
	if n < len(b) {
		b = b[:n]
	}
	return p.uart.Read(b)
}

// Write writes b to the UART
func (p *UARTPort) Write(b []byte) (int, error) {
	if p.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return p.uart.Write(b)
}

// Close marks the port closed. The UART itself stays configured.
func (p *UARTPort) Close() error {
	p.closed.Store(true)
	return nil
}
