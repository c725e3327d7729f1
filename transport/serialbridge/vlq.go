package serialbridge

import "errors"

var errTruncated = errors.New("serialbridge: truncated payload field")

// Payload integers use a 7-bit big-endian continuation encoding: each
// byte carries 7 value bits, the high bit marks more bytes to come.

// appendVLQ appends v to dst in wire form.
func appendVLQ(dst []byte, v uint32) []byte {
	sv := int32(v)
	if !(-(1<<26) <= sv && sv < (3<<26)) {
		dst = append(dst, byte((sv>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= sv && sv < (3<<19)) {
		dst = append(dst, byte((sv>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= sv && sv < (3<<12)) {
		dst = append(dst, byte((sv>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= sv && sv < (3<<5)) {
		dst = append(dst, byte((sv>>7)&0x7F)|0x80)
	}
	return append(dst, byte(sv&0x7F))
}

// parseVLQ consumes one encoded integer from *data.
func parseVLQ(data *[]byte) (uint32, error) {
	if len(*data) == 0 {
		return 0, errTruncated
	}
	c := uint32((*data)[0])
	*data = (*data)[1:]

	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if len(*data) == 0 {
			return 0, errTruncated
		}
		c = uint32((*data)[0])
		*data = (*data)[1:]
		v = v<<7 | c&0x7F
	}
	return v, nil
}

// appendBytes appends b with a length prefix.
func appendBytes(dst, b []byte) []byte {
	dst = appendVLQ(dst, uint32(len(b)))
	return append(dst, b...)
}

// parseBytes consumes one length-prefixed byte field from *data.
func parseBytes(data *[]byte) ([]byte, error) {
	n, err := parseVLQ(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, errTruncated
	}
	out := (*data)[:n]
	*data = (*data)[n:]
	return out, nil
}
