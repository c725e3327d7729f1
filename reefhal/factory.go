package reefhal

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/reef-pi/hal"
	"github.com/reef-pi/rpi/i2c"

	"expio/mcp23008"
)

const (
	paramStrap     = "Strap"     // int, A0..A2 strap value 0..7
	paramFrequency = "Frequency" // int, bus clock in Hz
	paramDebug     = "Debug"     // bool
)

type factory struct {
	meta       hal.Metadata
	parameters []hal.ConfigParameter
}

var (
	f    *factory
	once sync.Once
)

func Factory() hal.DriverFactory {
	once.Do(func() {
		f = &factory{
			meta: hal.Metadata{
				Name:        "mcp23008",
				Description: "MCP23008 8-bit I2C GPIO expander (8 pins, per-pin direction and pull-up)",
				Capabilities: []hal.Capability{
					hal.DigitalInput,
					hal.DigitalOutput,
				},
			},
			parameters: []hal.ConfigParameter{
				{Name: paramStrap, Type: hal.Integer, Order: 0, Default: 0},
				{Name: paramFrequency, Type: hal.Integer, Order: 1, Default: 100000},
				{Name: paramDebug, Type: hal.Boolean, Order: 2, Default: false},
			},
		}
	})
	return f
}

func (f *factory) Metadata() hal.Metadata               { return f.meta }
func (f *factory) GetParameters() []hal.ConfigParameter { return f.parameters }

func (f *factory) ValidateParameters(params map[string]interface{}) (bool, map[string][]string) {
	errs := make(map[string][]string)

	if v, ok := params[paramStrap]; ok {
		strap, good := hal.ConvertToInt(v)
		if !good {
			errs[paramStrap] = append(errs[paramStrap], "must be an integer")
		} else if strap < 0 || strap > 7 {
			errs[paramStrap] = append(errs[paramStrap], "must be the A0..A2 strap value, 0 to 7")
		}
	} else {
		errs[paramStrap] = append(errs[paramStrap], "is required")
	}

	if v, ok := params[paramFrequency]; ok {
		freq, good := hal.ConvertToInt(v)
		if !good {
			errs[paramFrequency] = append(errs[paramFrequency], "must be an integer")
		} else {
			switch freq {
			case 100000, 400000, 1700000:
			default:
				errs[paramFrequency] = append(errs[paramFrequency], "must be 100000, 400000 or 1700000")
			}
		}
	}

	if v, ok := params[paramDebug]; ok {
		if _, good := v.(bool); !good {
			errs[paramDebug] = append(errs[paramDebug], "must be boolean")
		}
	}

	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (f *factory) NewDriver(params map[string]interface{}, bus interface{}) (hal.Driver, error) {
	// reef-pi may or may not have validated already, do not rely on it.
	if ok, failures := f.ValidateParameters(params); !ok {
		return nil, fmt.Errorf("%s", hal.ToErrorString(failures))
	}

	i2cBus, ok := bus.(i2c.Bus)
	if !ok {
		return nil, fmt.Errorf("mcp23008: expected i2c.Bus, got %T", bus)
	}

	strap, _ := hal.ConvertToInt(params[paramStrap])
	freq := 100000
	if v, ok := params[paramFrequency]; ok {
		freq, _ = hal.ConvertToInt(v)
	}
	debug := false
	if v, ok := params[paramDebug]; ok {
		debug, _ = v.(bool)
	}

	if debug {
		if b, err := json.MarshalIndent(params, "", "  "); err == nil {
			log.Printf("mcp23008 NewDriver params:\n%s", string(b))
		}
	}

	exp, err := mcp23008.New(&rpiBus{bus: i2cBus}, uint8(strap), mcp23008.Frequency(freq))
	if err != nil {
		return nil, fmt.Errorf("mcp23008 strap=%d init failed: %w", strap, err)
	}

	d := &driver{
		exp:   exp,
		debug: debug,
		meta:  f.meta,
	}
	for i := 0; i < 8; i++ {
		d.pins = append(d.pins, &expanderPin{drv: d, n: i})
	}

	if debug {
		log.Printf("mcp23008 init strap=%d addr=%#02x freq=%d", strap, exp.Address(), freq)
	}
	return d, nil
}

// rpiBus adapts reef-pi's i2c.Bus to the expander's bus contract.
// reef-pi addresses devices with 7-bit addresses; the expander hands
// down the 8-bit form, so every call shifts right once.
type rpiBus struct {
	bus i2c.Bus
}

var _ mcp23008.Bus = (*rpiBus)(nil)

// Configure is a no-op: on the Pi the kernel i2c-dev driver owns the
// bus clock (dtparam=i2c_arm_baudrate), userland cannot change it.
func (b *rpiBus) Configure(freq mcp23008.Frequency) error { return nil }

func (b *rpiBus) Write(addr uint8, data []byte) error {
	return b.bus.WriteBytes(addr>>1, data)
}

func (b *rpiBus) Read(addr uint8, regData []byte, n int) ([]byte, error) {
	if len(regData) == 1 {
		buf := make([]byte, n)
		if err := b.bus.ReadFromReg(addr>>1, regData[0], buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	if len(regData) > 0 {
		if err := b.bus.WriteBytes(addr>>1, regData); err != nil {
			return nil, err
		}
	}
	return b.bus.ReadBytes(addr>>1, n)
}
