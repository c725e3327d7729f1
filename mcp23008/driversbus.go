package mcp23008

import "tinygo.org/x/drivers"

// DriversBus adapts a tinygo.org/x/drivers I2C implementation (for
// example machine.I2C0 on TinyGo targets) to the driver's Bus
// interface.
//
// drivers.I2C carries no portable clock control, so Configure is a
// no-op: set the bus frequency when configuring the underlying bus,
// before handing it over.
type DriversBus struct {
	bus drivers.I2C
}

// NewDriversBus wraps a preconfigured drivers.I2C bus.
func NewDriversBus(bus drivers.I2C) *DriversBus {
	return &DriversBus{bus: bus}
}

// Configure is a no-op; see the type comment.
func (b *DriversBus) Configure(freq Frequency) error { return nil }

// Write transmits data in one transaction. Tx takes the 7-bit address,
// so the driver's 8-bit form is shifted down here.
func (b *DriversBus) Write(addr uint8, data []byte) error {
	return b.bus.Tx(uint16(addr>>1), data, nil)
}

// Read writes the optional register preamble and reads n bytes with a
// repeated start in between.
func (b *DriversBus) Read(addr uint8, regData []byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.bus.Tx(uint16(addr>>1), regData, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

var _ Bus = (*DriversBus)(nil)
