package regmap

import "sync"

// Bank is an in-memory register map answering on one address. It
// implements drivers.I2C, so a host Device and the controller can share it
// in simulations.
type Bank struct {
	mu   sync.Mutex
	addr uint16
	regs [MapSize]byte
}

// NewBank creates an empty register map at addr
func NewBank(addr uint16) *Bank {
	return &Bank{addr: addr}
}

// Tx implements drivers.I2C. The first byte of w selects the register; any
// further bytes of w are written from there, then r is filled from the
// same register.
func (b *Bank) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return ErrNoDevice
	}
	if len(w) == 0 {
		return ErrEmptyWrite
	}

	reg := int(w[0])
	data := w[1:]
	if reg+len(data) > MapSize || reg+len(r) > MapSize {
		return ErrRegisterRange
	}

	b.mu.Lock()
	copy(b.regs[reg:], data)
	copy(r, b.regs[reg:])
	b.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the registers
func (b *Bank) Snapshot() [MapSize]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs
}
