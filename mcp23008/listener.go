package mcp23008

import (
	"errors"
	"sync"
)

// InterruptHandler receives the pin that raised an interrupt and the
// level the chip captured for it at trigger time.
type InterruptHandler func(pin Pin, level bool)

// Listener fans interrupts out to per-pin handlers. The MCP23008 has a
// single INT line; wire it to whatever edge detection the platform
// offers and call Service from that callback.
type Listener struct {
	e *Expander

	mu       sync.Mutex
	handlers map[Pin]InterruptHandler
}

// NewListener returns a Listener for e with no pins watched.
func NewListener(e *Expander) *Listener {
	return &Listener{
		e:        e,
		handlers: make(map[Pin]InterruptHandler, 8),
	}
}

// Watch enables interrupt-on-change for pin and registers handler for
// it, replacing any previous handler.
func (l *Listener) Watch(pin Pin, handler InterruptHandler) error {
	if err := validateHandlePin(pin); err != nil {
		return err
	}
	if handler == nil {
		return errors.New("mcp23008: nil interrupt handler")
	}

	l.mu.Lock()
	l.handlers[pin] = handler
	l.mu.Unlock()

	return l.e.InterruptOnChanges(uint8(pin))
}

// Unwatch disables interrupt generation for pin and drops its handler.
func (l *Listener) Unwatch(pin Pin) error {
	l.mu.Lock()
	delete(l.handlers, pin)
	l.mu.Unlock()

	return l.e.DisableInterrupts(uint8(pin))
}

// Service acknowledges the pending interrupt and invokes the handler of
// every watched pin present in the interrupt flags, passing the level
// captured at trigger time. It must be called after every interrupt:
// the acknowledgment read is what re-arms the chip's INT line.
//
// Handlers run on the calling goroutine with no Listener lock held.
func (l *Listener) Service() error {
	flags, captured, err := l.e.AcknowledgeInterrupt()
	if err != nil {
		return err
	}

	type dispatch struct {
		pin     Pin
		level   bool
		handler InterruptHandler
	}
	var pending []dispatch

	l.mu.Lock()
	for pin, handler := range l.handlers {
		if flags&uint8(pin) != 0 {
			pending = append(pending, dispatch{
				pin:     pin,
				level:   captured&uint8(pin) != 0,
				handler: handler,
			})
		}
	}
	l.mu.Unlock()

	for _, d := range pending {
		d.handler(d.pin, d.level)
	}
	return nil
}
