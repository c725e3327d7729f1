package mcp23008

import "math/bits"

// Pin is a bitmask naming expander pins. The Expander's bulk register
// operations accept any mask (including PinAll); a pin handle binds
// exactly one bit.
type Pin uint8

const (
	GP0 Pin = 1 << iota
	GP1
	GP2
	GP3
	GP4
	GP5
	GP6
	GP7
)

// PinAll addresses all eight pins in bulk register operations. It is
// not a valid handle mask.
const PinAll Pin = 0xFF

// PullMode selects the input pull configuration of a pin. The MCP23008
// only has pull-ups; PullDown is rejected, never silently remapped.
type PullMode uint8

const (
	PullNone PullMode = iota
	PullUp
	PullDown
)

// DigitalIn is the capability surface of a pure input pin.
type DigitalIn interface {
	Read() (bool, error)
	Mode(pull PullMode) error
	Connected() bool
}

// DigitalOut is the capability surface of a pure output pin. Read
// returns the last commanded value, not the level on the pin.
type DigitalOut interface {
	Write(value bool) error
	Read() (bool, error)
	Connected() bool
}

// DigitalInOut is a pin whose direction can change at runtime.
type DigitalInOut interface {
	Read() (bool, error)
	Write(value bool) error
	Mode(pull PullMode) error
	Input() error
	Output() error
	Connected() bool
}

// Handles hold a plain reference to their Expander and own nothing; the
// Expander must outlive them. The chip keeps one direction bit per pin,
// so the last handle (or bulk call) to set a pin's direction wins: two
// handles bound to the same bit with different intended directions is
// undefined by construction. That hazard is documented here rather
// than enforced.

func validateHandlePin(pin Pin) error {
	if bits.OnesCount8(uint8(pin)) != 1 {
		return ErrPinMask
	}
	return nil
}

// Input is a read-only view of one expander pin.
type Input struct {
	e   *Expander
	pin Pin
}

// AsInput configures pin as an input and returns a handle for it.
func (e *Expander) AsInput(pin Pin) (*Input, error) {
	if err := validateHandlePin(pin); err != nil {
		return nil, err
	}
	if err := e.SetInputPins(uint8(pin)); err != nil {
		return nil, err
	}
	return &Input{e: e, pin: pin}, nil
}

// Read samples the live pin level. High reads true.
func (p *Input) Read() (bool, error) {
	return p.e.readPin(p.pin)
}

// Mode sets the pull configuration. PullDown fails with
// ErrPullDownUnsupported.
func (p *Input) Mode(pull PullMode) error {
	return p.e.setPinMode(p.pin, pull)
}

// Connected always reports true: an expander pin has no notion of
// being unplugged distinct from any other GPIO pin.
func (p *Input) Connected() bool { return true }

// Output is a write-mostly view of one expander pin.
type Output struct {
	e   *Expander
	pin Pin
}

// AsOutput configures pin as an output and returns a handle for it.
func (e *Expander) AsOutput(pin Pin) (*Output, error) {
	if err := validateHandlePin(pin); err != nil {
		return nil, err
	}
	if err := e.SetOutputPins(uint8(pin)); err != nil {
		return nil, err
	}
	return &Output{e: e, pin: pin}, nil
}

// Write drives the pin high or low.
func (p *Output) Write(value bool) error {
	return p.e.writePin(p.pin, value)
}

// Read returns the last value commanded through the output latch,
// independent of the electrical load on the pin.
func (p *Output) Read() (bool, error) {
	return p.e.latchedPin(p.pin)
}

// Connected always reports true.
func (p *Output) Connected() bool { return true }

// InputOutput is a pin handle that can switch direction at runtime.
// It starts out as an output.
type InputOutput struct {
	e   *Expander
	pin Pin
}

// AsInputOutput configures pin as an output and returns a
// direction-switchable handle for it.
func (e *Expander) AsInputOutput(pin Pin) (*InputOutput, error) {
	if err := validateHandlePin(pin); err != nil {
		return nil, err
	}
	if err := e.SetOutputPins(uint8(pin)); err != nil {
		return nil, err
	}
	return &InputOutput{e: e, pin: pin}, nil
}

// Read samples the live pin level.
func (p *InputOutput) Read() (bool, error) {
	return p.e.readPin(p.pin)
}

// Write drives the pin high or low. Only meaningful while the pin is
// in the output direction.
func (p *InputOutput) Write(value bool) error {
	return p.e.writePin(p.pin, value)
}

// Mode sets the pull configuration for the input direction.
func (p *InputOutput) Mode(pull PullMode) error {
	return p.e.setPinMode(p.pin, pull)
}

// Output switches the pin to the output direction.
func (p *InputOutput) Output() error {
	return p.e.SetOutputPins(uint8(p.pin))
}

// Input switches the pin to the input direction.
func (p *InputOutput) Input() error {
	return p.e.SetInputPins(uint8(p.pin))
}

// Connected always reports true.
func (p *InputOutput) Connected() bool { return true }

var (
	_ DigitalIn    = (*Input)(nil)
	_ DigitalOut   = (*Output)(nil)
	_ DigitalInOut = (*InputOutput)(nil)
)
