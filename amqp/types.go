// Package amqp implements the slice of the AMQP 1.0 type system needed by
// the SASL security layer: frame enveloping and the five SASL performative
// bodies (mechanisms, init, challenge, response, outcome).
//
// The codec is deliberately small. It is not a general AMQP encoder; it
// knows exactly the composite shapes the SASL layer puts on the wire and
// accepts the common encodings a peer may legally choose for them.
package amqp

import "errors"

// Type constructors used by the SASL performative bodies.
const (
	codeDescribed  = 0x00
	codeNull       = 0x40
	codeBoolTrue   = 0x41
	codeBoolFalse  = 0x42
	codeUbyte      = 0x50
	codeSmallUlong = 0x53
	codeUlong      = 0x80
	codeUlong0     = 0x44
	codeVbin8      = 0xa0
	codeVbin32     = 0xb0
	codeStr8       = 0xa1
	codeStr32      = 0xb1
	codeSym8       = 0xa3
	codeSym32      = 0xb3
	codeList0      = 0x45
	codeList8      = 0xc0
	codeList32     = 0xd0
	codeArray8     = 0xe0
	codeArray32    = 0xf0
)

// Descriptor codes of the SASL performatives.
const (
	DescMechanisms uint64 = 0x40
	DescInit       uint64 = 0x41
	DescChallenge  uint64 = 0x42
	DescResponse   uint64 = 0x43
	DescOutcome    uint64 = 0x44
)

// FrameTypeSASL is the frame type octet carried by every SASL frame.
const FrameTypeSASL = 1

// Errors reported by the decoder. Malformed input is never fatal to the
// codec itself; callers translate these into framing errors.
var (
	ErrMalformed    = errors.New("amqp: malformed data")
	ErrTypeMismatch = errors.New("amqp: unexpected type constructor")
)
