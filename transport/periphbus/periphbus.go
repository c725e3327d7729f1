// Package periphbus exposes a periph.io I2C bus as an mcp23008.Bus, the
// usual path on Linux hosts (open the bus with i2creg after host.Init).
package periphbus

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"expio/mcp23008"
)

// Bus wraps a periph.io i2c.Bus.
type Bus struct {
	bus i2c.Bus
}

// New wraps bus. The caller keeps ownership and closes it.
func New(bus i2c.Bus) *Bus {
	return &Bus{bus: bus}
}

// Configure sets the bus clock via SetSpeed. On Linux the kernel
// driver owns the clock and SetSpeed fails; the bus is still clocked
// (dtparam=i2c_arm_baudrate on the Pi), so that failure is not fatal.
func (b *Bus) Configure(freq mcp23008.Frequency) error {
	_ = b.bus.SetSpeed(physic.Frequency(freq) * physic.Hertz)
	return nil
}

// Write transmits data in one transaction. periph uses 7-bit
// addresses, so the driver's 8-bit form is shifted down here.
func (b *Bus) Write(addr uint8, data []byte) error {
	return b.bus.Tx(uint16(addr>>1), data, nil)
}

// Read writes the optional register preamble and reads n bytes with a
// repeated start in between.
func (b *Bus) Read(addr uint8, regData []byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := b.bus.Tx(uint16(addr>>1), regData, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

var _ mcp23008.Bus = (*Bus)(nil)
