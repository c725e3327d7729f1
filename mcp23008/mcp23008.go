// Package mcp23008 drives the Microchip MCP23008 I2C 8-bit GPIO
// expander.
//
// The Expander type owns the chip: it validates the hardware address
// strap, resets the registers to power-on defaults, and exposes the
// direction, polarity, pull-up, output, input and interrupt registers
// as atomic operations. Individual pins are used through lightweight
// handles (Input, Output, InputOutput) created from the Expander.
//
// All register operations, including the single-pin write path, run
// under the chip mutex, so handles held by different goroutines can
// touch the same Expander without losing updates.
package mcp23008

import (
	"fmt"
	"sync"
)

// Expander is one physical MCP23008 on an I2C bus.
//
// Nothing is cached: every read goes to hardware (the exception being
// ReadOutputs, which reads the chip's own output latch rather than the
// pin, per the chip's design). If something else writes the chip
// outside this driver, the driver will not notice.
type Expander struct {
	bus  Bus
	addr uint8

	// Serializes every register transaction sequence. Read-modify-write
	// operations hold it end to end.
	mu sync.Mutex
}

// New configures the bus clock, validates the 3-bit address strap set
// on the A0..A2 pins, and resets the chip: all pins input, every other
// register cleared.
//
// A zero freq selects 100 kHz. The Expander must outlive any pin
// handles created from it.
func New(bus Bus, strap uint8, freq Frequency) (*Expander, error) {
	if strap > 7 {
		return nil, fmt.Errorf("%w: got %d", ErrStrapRange, strap)
	}
	if freq == 0 {
		freq = Freq100KHz
	}

	e := &Expander{
		bus:  bus,
		addr: BaseAddress | strap<<1,
	}

	if err := bus.Configure(freq); err != nil {
		return nil, fmt.Errorf("mcp23008: configure bus: %w", err)
	}
	if err := e.reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// Address returns the device address in 8-bit form (BaseAddress | strap<<1).
func (e *Expander) Address() uint8 {
	return e.addr
}

// reset restores power-on-equivalent register state, one transaction
// per register.
func (e *Expander) reset() error {
	if err := e.writeRegister(regIODIR, 0xFF); err != nil {
		return err
	}
	for reg := uint8(regIPOL); reg <= regOLAT; reg++ {
		if err := e.writeRegister(reg, 0); err != nil {
			return err
		}
	}
	return nil
}

// SetInputPins configures the pins in the mask as inputs. The mask adds
// to previously configured inputs: calling with GP1 and then GP2 leaves
// both set to input.
func (e *Expander) SetInputPins(pins uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.readRegister(regIODIR)
	if err != nil {
		return err
	}
	return e.writeRegister(regIODIR, value|pins)
}

// SetOutputPins configures the pins in the mask as outputs. Like
// SetInputPins, the mask adds to previously configured outputs.
func (e *Expander) SetOutputPins(pins uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.readRegister(regIODIR)
	if err != nil {
		return err
	}
	return e.writeRegister(regIODIR, value&^pins)
}

// WriteOutputs sets all output pins at once. The value replaces the
// whole latch; it is not merged with the previous one.
func (e *Expander) WriteOutputs(values uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeRegister(regGPIO, values)
}

// ReadOutputs returns the last values written to the output pins, from
// the OLAT register. This is the commanded state, not the pin level.
func (e *Expander) ReadOutputs() (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readRegister(regOLAT)
}

// ReadInputs returns the live state of the pins.
func (e *Expander) ReadInputs() (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readRegister(regGPIO)
}

// SetInputPolarity sets per-pin read polarity. A 1 bit inverts that
// pin's value as seen by ReadInputs.
func (e *Expander) SetInputPolarity(values uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeRegister(regIPOL, values)
}

// InputPolarity returns the current polarity register.
func (e *Expander) InputPolarity() (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readRegister(regIPOL)
}

// SetPullups enables the internal 100 kOhm pull-up for every 1 bit and
// disables it for every 0 bit.
func (e *Expander) SetPullups(values uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeRegister(regGPPU, values)
}

// Pullups returns the current pull-up register.
func (e *Expander) Pullups() (uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.readRegister(regGPPU)
}

// InterruptOnChanges enables interrupt generation for the given pins on
// any level change. The INT line stays asserted until
// AcknowledgeInterrupt is called, and no further interrupt fires before
// that.
//
// Two register sequences run here (interrupt control, then enable);
// the lock covers both, but the chip sees them as separate writes.
func (e *Expander) InterruptOnChanges(pins uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Compare against the previous value, not DEFVAL.
	value, err := e.readRegister(regINTCON)
	if err != nil {
		return err
	}
	if err := e.writeRegister(regINTCON, value&^pins); err != nil {
		return err
	}

	value, err = e.readRegister(regGPINTEN)
	if err != nil {
		return err
	}
	return e.writeRegister(regGPINTEN, value|pins)
}

// DisableInterrupts turns off interrupt generation for the given pins.
func (e *Expander) DisableInterrupts(pins uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.readRegister(regGPINTEN)
	if err != nil {
		return err
	}
	return e.writeRegister(regGPINTEN, value&^pins)
}

// AcknowledgeInterrupt reports which pins raised the pending interrupt
// and the pin states captured at trigger time. Reading the capture
// register is what re-arms the INT line, so this must be called after
// every interrupt or no further ones arrive.
func (e *Expander) AcknowledgeInterrupt() (pins, values uint8, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pins, err = e.readRegister(regINTF)
	if err != nil {
		return 0, 0, err
	}
	values, err = e.readRegister(regINTCAP)
	if err != nil {
		return 0, 0, err
	}
	return pins, values, nil
}

// readPin samples the live level of one pin.
func (e *Expander) readPin(pin Pin) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.readRegister(regGPIO)
	if err != nil {
		return false, err
	}
	return value&uint8(pin) != 0, nil
}

// latchedPin returns the last commanded value of one pin, from OLAT.
func (e *Expander) latchedPin(pin Pin) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.readRegister(regOLAT)
	if err != nil {
		return false, err
	}
	return value&uint8(pin) != 0, nil
}

// writePin updates one output pin, leaving the others as last
// commanded. The latch read and the port write happen under the chip
// mutex, so concurrent writes to disjoint pins cannot lose an update.
func (e *Expander) writePin(pin Pin, value bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	outputs, err := e.readRegister(regOLAT)
	if err != nil {
		return err
	}
	if value {
		outputs |= uint8(pin)
	} else {
		outputs &^= uint8(pin)
	}
	return e.writeRegister(regGPIO, outputs)
}

// setPinMode sets the pull configuration for one pin. PullDown returns
// ErrPullDownUnsupported: the chip has no pull-down resistors.
func (e *Expander) setPinMode(pin Pin, pull PullMode) error {
	switch pull {
	case PullNone, PullUp:
	case PullDown:
		return ErrPullDownUnsupported
	default:
		return fmt.Errorf("mcp23008: unknown pull mode %d", pull)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pullups, err := e.readRegister(regGPPU)
	if err != nil {
		return err
	}
	if pull == PullUp {
		pullups |= uint8(pin)
	} else {
		pullups &^= uint8(pin)
	}
	return e.writeRegister(regGPPU, pullups)
}

// readRegister selects reg and reads back one byte in a single
// combined transaction.
func (e *Expander) readRegister(reg uint8) (uint8, error) {
	buf, err := e.bus.Read(e.addr, []byte{reg}, 1)
	if err != nil {
		return 0, fmt.Errorf("read register %#02x: %w: %w", reg, ErrNoAck, err)
	}
	return buf[0], nil
}

// writeRegister transmits the register address and value as one
// two-byte transaction.
func (e *Expander) writeRegister(reg, value uint8) error {
	if err := e.bus.Write(e.addr, []byte{reg, value}); err != nil {
		return fmt.Errorf("write register %#02x: %w: %w", reg, ErrNoAck, err)
	}
	return nil
}
