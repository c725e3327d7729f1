package mcp23008

// Frequency selects the I2C bus clock used to talk to the expander.
type Frequency uint32

// The MCP23008 supports three bus speeds. Not every bus master can do
// 1.7 MHz; check the transport before asking for it.
const (
	Freq100KHz  Frequency = 100_000
	Freq400KHz  Frequency = 400_000
	Freq1700KHz Frequency = 1_700_000
)

// Bus is the abstract I2C transport the driver runs on. Implementations
// wrap a concrete bus master: a TinyGo machine.I2C via DriversBus, a
// periph.io bus, a USB-serial bridge, or a mock in tests.
//
// Addresses are passed in 8-bit (write) form, i.e. the 7-bit bus address
// shifted left by one. Adapters for 7-bit ecosystems shift back at the
// boundary.
//
// All methods are synchronous and block for the duration of the bus
// transaction. A failed transaction means the device did not acknowledge;
// the driver treats that as fatal and never retries.
type Bus interface {
	// Configure sets the bus clock. Implementations whose clock is fixed
	// elsewhere (kernel, board init) may treat this as a no-op.
	Configure(freq Frequency) error

	// Write transmits data to the device in a single transaction.
	Write(addr uint8, data []byte) error

	// Read reads n bytes from the device. If regData is non-empty it is
	// transmitted first with a repeated start before the read, which is
	// how register selection reaches the chip.
	Read(addr uint8, regData []byte, n int) ([]byte, error)
}
