package amqp

import "encoding/binary"

// appendValue helpers. Each returns the extended slice; small encodings are
// preferred when the payload fits.

func appendUbyte(buf []byte, v uint8) []byte {
	return append(buf, codeUbyte, v)
}

func appendSymbol(buf []byte, s string) []byte {
	if len(s) <= 0xff {
		buf = append(buf, codeSym8, byte(len(s)))
	} else {
		buf = append(buf, codeSym32)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	}
	return append(buf, s...)
}

func appendBinary(buf []byte, b []byte) []byte {
	if len(b) <= 0xff {
		buf = append(buf, codeVbin8, byte(len(b)))
	} else {
		buf = append(buf, codeVbin32)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	}
	return append(buf, b...)
}

// appendSymbolArray encodes values as an array with a single symbol
// constructor shared by every element.
func appendSymbolArray(buf []byte, values []string) []byte {
	// Element payload first, so the outer size prefix is known.
	var elems []byte
	wide := false
	for _, v := range values {
		if len(v) > 0xff {
			wide = true
		}
	}
	for _, v := range values {
		if wide {
			elems = binary.BigEndian.AppendUint32(elems, uint32(len(v)))
		} else {
			elems = append(elems, byte(len(v)))
		}
		elems = append(elems, v...)
	}
	ctor := byte(codeSym8)
	if wide {
		ctor = codeSym32
	}
	// size covers count + element constructor + elements
	if len(elems)+2 <= 0xff && len(values) <= 0xff {
		buf = append(buf, codeArray8, byte(len(elems)+2), byte(len(values)), ctor)
	} else {
		buf = append(buf, codeArray32)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(elems)+5))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(values)))
		buf = append(buf, ctor)
	}
	return append(buf, elems...)
}

// appendDescribed wraps pre-encoded list fields in a described list with a
// smallulong descriptor.
func appendDescribed(buf []byte, descriptor uint64, fields ...[]byte) []byte {
	buf = append(buf, codeDescribed, codeSmallUlong, byte(descriptor))
	var size int
	for _, f := range fields {
		size += len(f)
	}
	if size+1 <= 0xff && len(fields) <= 0xff {
		buf = append(buf, codeList8, byte(size+1), byte(len(fields)))
	} else {
		buf = append(buf, codeList32)
		buf = binary.BigEndian.AppendUint32(buf, uint32(size+4))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(fields)))
	}
	for _, f := range fields {
		buf = append(buf, f...)
	}
	return buf
}

// EncodeMechanisms encodes a sasl-mechanisms body advertising mechs.
func EncodeMechanisms(mechs []string) []byte {
	return appendDescribed(nil, DescMechanisms, appendSymbolArray(nil, mechs))
}

// EncodeInit encodes a sasl-init body. hostname is omitted when empty.
func EncodeInit(mech string, initial []byte, hostname string) []byte {
	fields := [][]byte{appendSymbol(nil, mech), appendBinary(nil, initial)}
	if hostname != "" {
		fields = append(fields, appendSymbol(nil, hostname))
	}
	return appendDescribed(nil, DescInit, fields...)
}

// EncodeChallenge encodes a sasl-challenge body.
func EncodeChallenge(data []byte) []byte {
	return appendDescribed(nil, DescChallenge, appendBinary(nil, data))
}

// EncodeResponse encodes a sasl-response body.
func EncodeResponse(data []byte) []byte {
	return appendDescribed(nil, DescResponse, appendBinary(nil, data))
}

// EncodeOutcome encodes a sasl-outcome body. additional is omitted when nil.
func EncodeOutcome(code uint8, additional []byte) []byte {
	fields := [][]byte{appendUbyte(nil, code)}
	if additional != nil {
		fields = append(fields, appendBinary(nil, additional))
	}
	return appendDescribed(nil, DescOutcome, fields...)
}
