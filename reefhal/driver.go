// Package reefhal plugs the MCP23008 expander into reef-pi's hardware
// abstraction layer, exposing the eight pins as hal.DigitalInputPin /
// hal.DigitalOutputPin so reef-pi equipment and inlets can sit on the
// expander like on any board pin.
//
// reef-pi calls pins concurrently, and it may use the same pin as an
// inlet one moment and an outlet the next. Every pin operation first
// forces the direction it needs, then acts; the driver keeps a shadow
// of the commanded latch under its own mutex so the two steps cannot
// interleave between pins.
package reefhal

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/reef-pi/hal"

	"expio/mcp23008"
)

// expanderPin is one bit on the expander (0..7).
type expanderPin struct {
	drv *driver
	n   int
}

func (p *expanderPin) Name() string { return fmt.Sprintf("MCP23008:%d", p.n) }
func (p *expanderPin) Number() int  { return p.n }
func (p *expanderPin) Close() error { return nil }

// Read switches the pin to input and samples the live level.
func (p *expanderPin) Read() (bool, error) {
	return p.drv.readPin(p.n)
}

// Write switches the pin to output and drives it.
func (p *expanderPin) Write(state bool) error {
	return p.drv.writePin(p.n, state)
}

// LastState returns the last commanded output value. This is the
// shadow latch, not the level on the pin; use Read for that.
func (p *expanderPin) LastState() bool {
	return p.drv.lastState(p.n)
}

// driver is the reef-pi driver instance for one chip.
type driver struct {
	exp *mcp23008.Expander

	// Guards shadow and keeps direction-then-act sequences whole.
	mu     sync.Mutex
	shadow uint8

	debug bool
	meta  hal.Metadata
	pins  []*expanderPin
}

func (d *driver) Close() error { return nil }

func (d *driver) Metadata() hal.Metadata { return d.meta }

func (d *driver) DigitalInputPins() []hal.DigitalInputPin {
	out := make([]hal.DigitalInputPin, len(d.pins))
	for i, p := range d.pins {
		out[i] = p
	}
	return out
}

func (d *driver) DigitalOutputPins() []hal.DigitalOutputPin {
	out := make([]hal.DigitalOutputPin, len(d.pins))
	for i, p := range d.pins {
		out[i] = p
	}
	return out
}

func (d *driver) DigitalInputPin(n int) (hal.DigitalInputPin, error) {
	if n < 0 || n >= len(d.pins) {
		return nil, fmt.Errorf("mcp23008: invalid pin %d", n)
	}
	return d.pins[n], nil
}

func (d *driver) DigitalOutputPin(n int) (hal.DigitalOutputPin, error) {
	if n < 0 || n >= len(d.pins) {
		return nil, fmt.Errorf("mcp23008: invalid pin %d", n)
	}
	return d.pins[n], nil
}

func (d *driver) Pins(cap hal.Capability) ([]hal.Pin, error) {
	switch cap {
	case hal.DigitalInput, hal.DigitalOutput:
		var pins []hal.Pin
		for _, p := range d.pins {
			pins = append(pins, p)
		}
		sort.Slice(pins, func(i, j int) bool { return pins[i].Name() < pins[j].Name() })
		return pins, nil
	default:
		return nil, fmt.Errorf("mcp23008: unsupported capability: %s", cap.String())
	}
}

func (d *driver) readPin(n int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mask := uint8(1 << n)
	if err := d.exp.SetInputPins(mask); err != nil {
		return false, fmt.Errorf("mcp23008 pin %d: set input: %w", n, err)
	}
	values, err := d.exp.ReadInputs()
	if err != nil {
		return false, fmt.Errorf("mcp23008 pin %d: read: %w", n, err)
	}
	level := values&mask != 0
	if d.debug {
		log.Printf("mcp23008 read pin=%d port=%#02x level=%v", n, values, level)
	}
	return level, nil
}

func (d *driver) writePin(n int, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	mask := uint8(1 << n)
	if err := d.exp.SetOutputPins(mask); err != nil {
		return fmt.Errorf("mcp23008 pin %d: set output: %w", n, err)
	}
	prev := d.shadow
	if on {
		d.shadow |= mask
	} else {
		d.shadow &^= mask
	}
	if d.debug {
		log.Printf("mcp23008 write pin=%d on=%v shadow %#02x -> %#02x", n, on, prev, d.shadow)
	}
	if err := d.exp.WriteOutputs(d.shadow); err != nil {
		d.shadow = prev
		return fmt.Errorf("mcp23008 pin %d: write shadow=%#02x failed: %w", n, d.shadow, err)
	}
	return nil
}

func (d *driver) lastState(n int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shadow&(1<<n) != 0
}
