package amqp

import (
	"encoding/binary"
	"fmt"
)

// Frame layout: 4-byte big-endian total size, data offset in 4-byte words,
// frame type, and a 2-byte type-specific field (ignored for SASL frames).
const frameHeaderLen = 8

// AppendFrame wraps body in a frame envelope of the given type and appends
// the result to buf.
func AppendFrame(buf []byte, frameType uint8, body []byte) []byte {
	size := uint32(frameHeaderLen + len(body))
	buf = binary.BigEndian.AppendUint32(buf, size)
	buf = append(buf, 2, frameType, 0, 0)
	return append(buf, body...)
}

// ParseFrame extracts the next frame from data.
//
// It returns the frame body, the frame type and the number of bytes
// consumed. A consumed count of zero with a nil error means the frame is
// incomplete and more bytes are needed.
func ParseFrame(data []byte) (body []byte, frameType uint8, consumed int, err error) {
	if len(data) < frameHeaderLen {
		return nil, 0, 0, nil
	}
	size := binary.BigEndian.Uint32(data)
	if size < frameHeaderLen {
		return nil, 0, 0, fmt.Errorf("%w: frame size %d below minimum", ErrMalformed, size)
	}
	if uint64(len(data)) < uint64(size) {
		return nil, 0, 0, nil
	}
	doff := data[4]
	if doff < 2 {
		return nil, 0, 0, fmt.Errorf("%w: data offset %d below minimum", ErrMalformed, doff)
	}
	if uint32(doff)*4 > size {
		return nil, 0, 0, fmt.Errorf("%w: data offset %d exceeds frame size %d", ErrMalformed, doff, size)
	}
	if uint64(len(data)) < uint64(size) {
		return nil, 0, 0, nil
	}
	return data[uint32(doff)*4 : size], data[5], int(size), nil
}
