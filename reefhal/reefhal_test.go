package reefhal

import (
	"fmt"
	"testing"

	"github.com/reef-pi/hal"
)

// fakeI2C stands in for reef-pi's kernel-backed i2c.Bus. It models the
// expander's register file: port writes land in the output latch, port
// reads return separately controlled input levels.
type fakeI2C struct {
	regs   [0x0B]uint8
	inputs uint8
	addrs  []byte
	fail   bool
}

func (b *fakeI2C) SetAddress(addr byte) error { return nil }

func (b *fakeI2C) WriteBytes(addr byte, data []byte) error {
	if b.fail {
		return fmt.Errorf("i2c write failed")
	}
	b.addrs = append(b.addrs, addr)
	if len(data) == 2 {
		reg, value := data[0], data[1]
		if reg == 0x09 {
			reg = 0x0A
		}
		b.regs[reg] = value
	}
	return nil
}

func (b *fakeI2C) ReadBytes(addr byte, n int) ([]byte, error) {
	return nil, fmt.Errorf("unexpected raw read")
}

func (b *fakeI2C) ReadFromReg(addr, reg byte, value []byte) error {
	if b.fail {
		return fmt.Errorf("i2c read failed")
	}
	b.addrs = append(b.addrs, addr)
	if reg == 0x09 {
		value[0] = b.inputs
	} else {
		value[0] = b.regs[reg]
	}
	return nil
}

func (b *fakeI2C) WriteToReg(addr, reg byte, value []byte) error {
	return b.WriteBytes(addr, append([]byte{reg}, value...))
}

func (b *fakeI2C) Close() error { return nil }

func newTestDriver(t *testing.T, bus *fakeI2C, params map[string]interface{}) hal.Driver {
	t.Helper()
	if params == nil {
		params = map[string]interface{}{"Strap": 0}
	}
	d, err := Factory().NewDriver(params, bus)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFactoryMetadata(t *testing.T) {
	meta := Factory().Metadata()
	if meta.Name != "mcp23008" {
		t.Errorf("name = %q, want mcp23008", meta.Name)
	}
	caps := make(map[hal.Capability]bool)
	for _, c := range meta.Capabilities {
		caps[c] = true
	}
	if !caps[hal.DigitalInput] || !caps[hal.DigitalOutput] {
		t.Error("driver should advertise digital input and output")
	}
}

func TestValidateParameters(t *testing.T) {
	f := Factory()

	good := []map[string]interface{}{
		{"Strap": 0},
		{"Strap": 7, "Frequency": 400000},
		{"Strap": 3, "Frequency": 1700000, "Debug": true},
		{"Strap": float64(2)}, // JSON numbers decode as float64
	}
	for _, params := range good {
		if ok, errs := f.ValidateParameters(params); !ok {
			t.Errorf("params %v rejected: %v", params, errs)
		}
	}

	bad := []map[string]interface{}{
		{},
		{"Strap": 8},
		{"Strap": -1},
		{"Strap": "three"},
		{"Strap": 0, "Frequency": 123456},
		{"Strap": 0, "Debug": "yes"},
	}
	for _, params := range bad {
		if ok, _ := f.ValidateParameters(params); ok {
			t.Errorf("params %v accepted", params)
		}
	}
}

func TestNewDriverAddressesSevenBit(t *testing.T) {
	bus := &fakeI2C{}
	newTestDriver(t, bus, map[string]interface{}{"Strap": 3})

	// 8-bit 0x46 on the wire is kernel address 0x23.
	for _, addr := range bus.addrs {
		if addr != 0x23 {
			t.Fatalf("bus saw address %#02x, want 0x23", addr)
		}
	}
	if bus.regs[0x00] != 0xFF {
		t.Errorf("IODIR = %#02x after init, want 0xFF", bus.regs[0x00])
	}
}

func TestNewDriverRejectsWrongBus(t *testing.T) {
	_, err := Factory().NewDriver(map[string]interface{}{"Strap": 0}, "not a bus")
	if err == nil {
		t.Error("NewDriver accepted a non-i2c bus")
	}
}

func TestPinEnumeration(t *testing.T) {
	d := newTestDriver(t, &fakeI2C{}, nil)

	input, ok := d.(hal.DigitalInputDriver)
	if !ok {
		t.Fatal("driver does not implement DigitalInputDriver")
	}
	output, ok := d.(hal.DigitalOutputDriver)
	if !ok {
		t.Fatal("driver does not implement DigitalOutputDriver")
	}
	if n := len(input.DigitalInputPins()); n != 8 {
		t.Errorf("input pins = %d, want 8", n)
	}
	if n := len(output.DigitalOutputPins()); n != 8 {
		t.Errorf("output pins = %d, want 8", n)
	}

	pin, err := input.DigitalInputPin(5)
	if err != nil {
		t.Fatal(err)
	}
	if pin.Name() != "MCP23008:5" {
		t.Errorf("pin name = %q, want MCP23008:5", pin.Name())
	}
	if _, err := input.DigitalInputPin(8); err == nil {
		t.Error("DigitalInputPin(8) should fail")
	}
	if _, err := output.DigitalOutputPin(-1); err == nil {
		t.Error("DigitalOutputPin(-1) should fail")
	}
}

func TestPinWriteDrivesLatch(t *testing.T) {
	bus := &fakeI2C{}
	d := newTestDriver(t, bus, nil)
	output := d.(hal.DigitalOutputDriver)

	p2, _ := output.DigitalOutputPin(2)
	p6, _ := output.DigitalOutputPin(6)

	if err := p2.Write(true); err != nil {
		t.Fatal(err)
	}
	if err := p6.Write(true); err != nil {
		t.Fatal(err)
	}
	if bus.regs[0x0A] != 0x44 {
		t.Errorf("latch = %#02x, want 0x44", bus.regs[0x0A])
	}
	if bus.regs[0x00]&0x44 != 0 {
		t.Errorf("IODIR = %#02x, pins 2 and 6 should be outputs", bus.regs[0x00])
	}
	if !p2.LastState() || !p6.LastState() {
		t.Error("LastState should report the commanded values")
	}

	if err := p2.Write(false); err != nil {
		t.Fatal(err)
	}
	if bus.regs[0x0A] != 0x40 {
		t.Errorf("latch = %#02x after clearing pin 2, want 0x40", bus.regs[0x0A])
	}
	if p2.LastState() {
		t.Error("LastState(2) should be false after clearing")
	}
}

func TestPinReadSamplesLiveLevel(t *testing.T) {
	bus := &fakeI2C{}
	d := newTestDriver(t, bus, nil)
	input := d.(hal.DigitalInputDriver)

	pin, _ := input.DigitalInputPin(4)
	bus.inputs = 0x10
	level, err := pin.Read()
	if err != nil {
		t.Fatal(err)
	}
	if !level {
		t.Error("pin 4 should read high")
	}
	if bus.regs[0x00]&0x10 == 0 {
		t.Errorf("IODIR = %#02x, pin 4 should be an input", bus.regs[0x00])
	}

	bus.inputs = 0
	level, err = pin.Read()
	if err != nil {
		t.Fatal(err)
	}
	if level {
		t.Error("pin 4 should read low")
	}
}

func TestPinWriteFailureRestoresShadow(t *testing.T) {
	bus := &fakeI2C{}
	d := newTestDriver(t, bus, nil)
	output := d.(hal.DigitalOutputDriver)

	pin, _ := output.DigitalOutputPin(0)
	if err := pin.Write(true); err != nil {
		t.Fatal(err)
	}

	bus.fail = true
	if err := pin.Write(false); err == nil {
		t.Fatal("write should fail when the bus fails")
	}
	if !pin.LastState() {
		t.Error("failed write should not change LastState")
	}
}
