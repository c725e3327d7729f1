package serialbridge

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the byte stream to the bridge MCU. Reads must time out
// rather than block forever, or a dead bridge would hang the caller;
// the tarm implementation gets that from its ReadTimeout.
type Port interface {
	io.ReadWriteCloser
}

// PortConfig holds serial device settings.
type PortConfig struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate. USB CDC bridges ignore it, real UARTs do not.
	Baud int

	// ReadTimeout bounds a single Read.
	ReadTimeout time.Duration
}

// DefaultPortConfig returns settings that work for USB CDC bridges.
func DefaultPortConfig(device string) *PortConfig {
	return &PortConfig{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// OpenPort opens the native serial device.
func OpenPort(cfg *PortConfig) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("serialbridge: nil port config")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serialbridge: open %s: %w", cfg.Device, err)
	}
	return port, nil
}
