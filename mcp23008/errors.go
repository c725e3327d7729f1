package mcp23008

import "errors"

// The driver has no degraded mode: every error below is final for the
// operation that returned it. Use errors.Is to classify.
var (
	// ErrStrapRange reports an address strap outside 0..7 at construction.
	ErrStrapRange = errors.New("mcp23008: address strap out of range (must be 0..7)")

	// ErrNoAck reports a bus transaction the chip did not acknowledge.
	// A silent expander indicates a wiring or power fault, so the driver
	// never retries.
	ErrNoAck = errors.New("mcp23008: missing ACK from expander")

	// ErrPullDownUnsupported reports a request for pull-down mode, which
	// this chip family does not have.
	ErrPullDownUnsupported = errors.New("mcp23008: pull-down is not supported")

	// ErrPinMask reports a pin handle mask that does not name exactly
	// one pin.
	ErrPinMask = errors.New("mcp23008: pin handle requires a single-bit mask")
)
