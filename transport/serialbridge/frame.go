package serialbridge

import (
	"bytes"
	"fmt"
)

// Wire framing: [len][seq][payload...][crc hi][crc lo][0x7E]. len
// counts the whole frame, the sequence byte carries a modulo-16
// counter in its low nibble with a fixed destination nibble above it.
const (
	frameHeaderSize  = 2
	frameTrailerSize = 3
	frameLengthMin   = frameHeaderSize + frameTrailerSize
	frameLengthMax   = 64
	frameSync        = 0x7E
	seqDest          = 0x10
	seqMask          = 0x0F
)

// encodeFrame wraps payload in the header and CRC/sync trailer.
func encodeFrame(seq uint8, payload []byte) ([]byte, error) {
	total := frameHeaderSize + len(payload) + frameTrailerSize
	if total > frameLengthMax {
		return nil, fmt.Errorf("serialbridge: payload too large (%d bytes)", len(payload))
	}
	msg := make([]byte, 0, total)
	msg = append(msg, byte(total), seqDest|seq&seqMask)
	msg = append(msg, payload...)
	crc := crc16(msg)
	return append(msg, byte(crc>>8), byte(crc), frameSync), nil
}

// decodeFrame scans buf for the first complete well-formed frame.
// It returns the frame's sequence number, a copy of its payload, and
// how many bytes of buf were consumed (frame plus any garbage before
// it). ok is false when buf holds no complete frame yet; consumed may
// still be non-zero, telling the caller to discard unframeable bytes.
func decodeFrame(buf []byte) (seq uint8, payload []byte, consumed int, ok bool) {
	start := 0
	for {
		rem := buf[start:]
		if len(rem) < frameLengthMin {
			return 0, nil, start, false
		}

		// Stray sync bytes between frames are legal padding.
		if rem[0] == frameSync {
			start++
			continue
		}

		msgLen := int(rem[0])
		valid := msgLen >= frameLengthMin && msgLen <= frameLengthMax &&
			rem[1]&^seqMask == seqDest
		if valid && len(rem) < msgLen {
			return 0, nil, start, false
		}
		if valid {
			crc := uint16(rem[msgLen-3])<<8 | uint16(rem[msgLen-2])
			valid = rem[msgLen-1] == frameSync && crc == crc16(rem[:msgLen-frameTrailerSize])
		}
		if !valid {
			// Lost framing: skip to the next sync byte and retry.
			if i := bytes.IndexByte(rem[1:], frameSync); i >= 0 {
				start += i + 2
				continue
			}
			return 0, nil, len(buf), false
		}

		payload = append(payload, rem[frameHeaderSize:msgLen-frameTrailerSize]...)
		return rem[1] & seqMask, payload, start + msgLen, true
	}
}
