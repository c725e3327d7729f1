// Package serialbridge reaches an MCP23008 wired to a USB-serial I2C
// bridge MCU. The bridge firmware speaks a small framed protocol: each
// request is one frame whose payload is a command byte followed by
// VLQ-encoded fields, answered by a frame with the same sequence
// number carrying a status byte (and data, for reads). A non-zero
// status means the remote bus saw no ACK from the chip.
package serialbridge

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"expio/mcp23008"
)

// Command bytes understood by the bridge firmware.
const (
	cmdConfigure = 0x01 // freq
	cmdWrite     = 0x02 // addr, data
	cmdRead      = 0x03 // addr, regData, n
)

const (
	statusOK   = 0x00
	statusNack = 0x01
)

// maxReadAttempts bounds how many timed-out port reads a round trip
// tolerates before giving up on the bridge.
const maxReadAttempts = 32

var (
	// ErrRemoteNack reports a transaction the expander did not
	// acknowledge on the bridge's side of the link.
	ErrRemoteNack = errors.New("serialbridge: remote bus reported missing ACK")

	// ErrNoReply reports a bridge that stopped answering.
	ErrNoReply = errors.New("serialbridge: no reply from bridge")
)

// Bridge implements mcp23008.Bus over a serial link. Round trips are
// synchronous: one request in flight at a time, matched to its reply
// by sequence number.
type Bridge struct {
	mu   sync.Mutex
	port Port
	seq  uint8
	rx   []byte
}

// NewBridge wraps an open port.
func NewBridge(port Port) *Bridge {
	return &Bridge{port: port}
}

// Dial opens device with default settings and returns a Bridge on it.
func Dial(device string) (*Bridge, error) {
	port, err := OpenPort(DefaultPortConfig(device))
	if err != nil {
		return nil, err
	}
	return NewBridge(port), nil
}

// Close closes the underlying port.
func (b *Bridge) Close() error {
	return b.port.Close()
}

// Configure asks the bridge to set its I2C clock.
func (b *Bridge) Configure(freq mcp23008.Frequency) error {
	payload := appendVLQ([]byte{cmdConfigure}, uint32(freq))
	reply, err := b.roundTrip(payload)
	if err != nil {
		return err
	}
	return checkStatus(reply)
}

// Write forwards a write transaction to the bridge's bus.
func (b *Bridge) Write(addr uint8, data []byte) error {
	payload := appendVLQ([]byte{cmdWrite}, uint32(addr))
	payload = appendBytes(payload, data)
	reply, err := b.roundTrip(payload)
	if err != nil {
		return err
	}
	return checkStatus(reply)
}

// Read forwards a register-select read transaction to the bridge's bus.
func (b *Bridge) Read(addr uint8, regData []byte, n int) ([]byte, error) {
	payload := appendVLQ([]byte{cmdRead}, uint32(addr))
	payload = appendBytes(payload, regData)
	payload = appendVLQ(payload, uint32(n))

	reply, err := b.roundTrip(payload)
	if err != nil {
		return nil, err
	}
	rest := reply
	if err := consumeStatus(&rest); err != nil {
		return nil, err
	}
	data, err := parseBytes(&rest)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("serialbridge: short read: got %d bytes, want %d", len(data), n)
	}
	// The parsed field aliases the receive buffer.
	return append([]byte(nil), data...), nil
}

func checkStatus(reply []byte) error {
	rest := reply
	return consumeStatus(&rest)
}

func consumeStatus(reply *[]byte) error {
	if len(*reply) == 0 {
		return errTruncated
	}
	status := (*reply)[0]
	*reply = (*reply)[1:]
	if status != statusOK {
		return fmt.Errorf("%w (status %d)", ErrRemoteNack, status)
	}
	return nil
}

// roundTrip sends one framed request and collects the matching reply.
// Replies with stale sequence numbers (late answers to an abandoned
// request) are dropped.
func (b *Bridge) roundTrip(payload []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seq := b.seq
	b.seq = (b.seq + 1) & seqMask

	frame, err := encodeFrame(seq, payload)
	if err != nil {
		return nil, err
	}
	if _, err := b.port.Write(frame); err != nil {
		return nil, fmt.Errorf("serialbridge: write: %w", err)
	}

	var chunk [frameLengthMax]byte
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		for {
			rseq, reply, consumed, ok := decodeFrame(b.rx)
			if consumed > 0 {
				b.rx = append(b.rx[:0], b.rx[consumed:]...)
			}
			if !ok {
				break
			}
			if rseq == seq {
				return reply, nil
			}
		}

		n, err := b.port.Read(chunk[:])
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("serialbridge: read: %w", err)
		}
		b.rx = append(b.rx, chunk[:n]...)
	}
	return nil, ErrNoReply
}

var _ mcp23008.Bus = (*Bridge)(nil)
