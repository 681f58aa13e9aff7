package amqp

import (
	"encoding/binary"
	"fmt"
)

// reader is a positional decoder over a single performative body. It is the
// scanning half of the codec: the Scan* functions below walk the described
// list the way the SASL layer expects and tolerate absent or null trailing
// fields.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) byte() (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("%w: truncated", ErrMalformed)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: truncated", ErrMalformed)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// descriptor reads the 0x00 marker and the numeric descriptor that follows.
func (r *reader) descriptor() (uint64, error) {
	marker, err := r.byte()
	if err != nil {
		return 0, err
	}
	if marker != codeDescribed {
		return 0, fmt.Errorf("%w: expected described type, got 0x%02x", ErrTypeMismatch, marker)
	}
	ctor, err := r.byte()
	if err != nil {
		return 0, err
	}
	switch ctor {
	case codeSmallUlong:
		b, err := r.byte()
		return uint64(b), err
	case codeUlong:
		b, err := r.take(8)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(b), nil
	case codeUlong0:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unsupported descriptor constructor 0x%02x", ErrTypeMismatch, ctor)
	}
}

// list reads a list constructor and returns the field count.
func (r *reader) list() (int, error) {
	ctor, err := r.byte()
	if err != nil {
		return 0, err
	}
	switch ctor {
	case codeList0:
		return 0, nil
	case codeList8:
		if _, err := r.byte(); err != nil { // size
			return 0, err
		}
		n, err := r.byte()
		return int(n), err
	case codeList32:
		if _, err := r.uint32(); err != nil { // size
			return 0, err
		}
		n, err := r.uint32()
		return int(n), err
	default:
		return 0, fmt.Errorf("%w: expected list, got 0x%02x", ErrTypeMismatch, ctor)
	}
}

// variable reads a sym8/sym32/vbin8/vbin32/str8/str32 payload given its
// constructor.
func (r *reader) variable(ctor byte) ([]byte, error) {
	var n int
	switch ctor {
	case codeSym8, codeVbin8, codeStr8:
		b, err := r.byte()
		if err != nil {
			return nil, err
		}
		n = int(b)
	case codeSym32, codeVbin32, codeStr32:
		v, err := r.uint32()
		if err != nil {
			return nil, err
		}
		n = int(v)
	default:
		return nil, fmt.Errorf("%w: expected variable-width type, got 0x%02x", ErrTypeMismatch, ctor)
	}
	return r.take(n)
}

// symbol reads a symbol field. Null yields the empty string.
func (r *reader) symbol() (string, error) {
	ctor, err := r.byte()
	if err != nil {
		return "", err
	}
	if ctor == codeNull {
		return "", nil
	}
	if ctor != codeSym8 && ctor != codeSym32 {
		return "", fmt.Errorf("%w: expected symbol, got 0x%02x", ErrTypeMismatch, ctor)
	}
	b, err := r.variable(ctor)
	return string(b), err
}

// binary reads a binary field. Null yields nil.
func (r *reader) binary() ([]byte, error) {
	ctor, err := r.byte()
	if err != nil {
		return nil, err
	}
	if ctor == codeNull {
		return nil, nil
	}
	if ctor != codeVbin8 && ctor != codeVbin32 {
		return nil, fmt.Errorf("%w: expected binary, got 0x%02x", ErrTypeMismatch, ctor)
	}
	return r.variable(ctor)
}

func (r *reader) ubyte() (uint8, error) {
	ctor, err := r.byte()
	if err != nil {
		return 0, err
	}
	if ctor != codeUbyte {
		return 0, fmt.Errorf("%w: expected ubyte, got 0x%02x", ErrTypeMismatch, ctor)
	}
	return r.byte()
}

// symbolArray reads either a symbol array or a lone symbol (a peer may send
// a single mechanism without the array wrapper).
func (r *reader) symbolArray() ([]string, error) {
	ctor, err := r.byte()
	if err != nil {
		return nil, err
	}
	switch ctor {
	case codeNull:
		return nil, nil
	case codeSym8, codeSym32:
		b, err := r.variable(ctor)
		if err != nil {
			return nil, err
		}
		return []string{string(b)}, nil
	case codeArray8, codeArray32:
	default:
		return nil, fmt.Errorf("%w: expected symbol array, got 0x%02x", ErrTypeMismatch, ctor)
	}

	var count int
	if ctor == codeArray8 {
		if _, err := r.byte(); err != nil { // size
			return nil, err
		}
		n, err := r.byte()
		if err != nil {
			return nil, err
		}
		count = int(n)
	} else {
		if _, err := r.uint32(); err != nil { // size
			return nil, err
		}
		n, err := r.uint32()
		if err != nil {
			return nil, err
		}
		count = int(n)
	}
	elemCtor, err := r.byte()
	if err != nil {
		return nil, err
	}
	if elemCtor != codeSym8 && elemCtor != codeSym32 {
		return nil, fmt.Errorf("%w: expected symbol elements, got 0x%02x", ErrTypeMismatch, elemCtor)
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var n int
		if elemCtor == codeSym8 {
			b, err := r.byte()
			if err != nil {
				return nil, err
			}
			n = int(b)
		} else {
			v, err := r.uint32()
			if err != nil {
				return nil, err
			}
			n = int(v)
		}
		b, err := r.take(n)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

// DescriptorOf returns the performative descriptor code of a body without
// consuming it.
func DescriptorOf(body []byte) (uint64, error) {
	r := reader{data: body}
	return r.descriptor()
}

// ScanInit decodes a sasl-init body into its mechanism and initial-response
// fields. The optional hostname field is ignored.
func ScanInit(body []byte) (mech string, initial []byte, err error) {
	r := reader{data: body}
	if _, err = r.descriptor(); err != nil {
		return "", nil, err
	}
	count, err := r.list()
	if err != nil {
		return "", nil, err
	}
	if count < 1 {
		return "", nil, fmt.Errorf("%w: sasl-init requires a mechanism", ErrMalformed)
	}
	if mech, err = r.symbol(); err != nil {
		return "", nil, err
	}
	if count >= 2 {
		if initial, err = r.binary(); err != nil {
			return "", nil, err
		}
	}
	return mech, initial, nil
}

// ScanMechanisms decodes a sasl-mechanisms body into the advertised
// mechanism names.
func ScanMechanisms(body []byte) ([]string, error) {
	r := reader{data: body}
	if _, err := r.descriptor(); err != nil {
		return nil, err
	}
	count, err := r.list()
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, nil
	}
	return r.symbolArray()
}

// ScanBinary decodes a single-binary body (sasl-challenge, sasl-response).
func ScanBinary(body []byte) ([]byte, error) {
	r := reader{data: body}
	if _, err := r.descriptor(); err != nil {
		return nil, err
	}
	count, err := r.list()
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, nil
	}
	return r.binary()
}

// ScanOutcome decodes a sasl-outcome body into its code and optional
// additional data.
func ScanOutcome(body []byte) (code uint8, additional []byte, err error) {
	r := reader{data: body}
	if _, err = r.descriptor(); err != nil {
		return 0, nil, err
	}
	count, err := r.list()
	if err != nil {
		return 0, nil, err
	}
	if count < 1 {
		return 0, nil, fmt.Errorf("%w: sasl-outcome requires a code", ErrMalformed)
	}
	if code, err = r.ubyte(); err != nil {
		return 0, nil, err
	}
	if count >= 2 {
		if additional, err = r.binary(); err != nil {
			return 0, nil, err
		}
	}
	return code, additional, nil
}
