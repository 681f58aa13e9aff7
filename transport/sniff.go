package transport

// Protocol classifies the first bytes seen on a connection.
type Protocol int

const (
	// ProtoInsufficient means not enough bytes have arrived to decide.
	ProtoInsufficient Protocol = iota
	// ProtoUnknown means the bytes match no protocol we recognize.
	ProtoUnknown
	// ProtoSSL means the bytes look like a TLS/SSL handshake.
	ProtoSSL
	// ProtoAMQPOther means an AMQP header with an unrecognized version.
	ProtoAMQPOther
	// ProtoAMQPSASL means the AMQP 1.0 SASL security-layer header.
	ProtoAMQPSASL
	// ProtoAMQP means the plain AMQP 1.0 header.
	ProtoAMQP
)

// String returns a diagnostic name suitable for error messages.
func (p Protocol) String() string {
	switch p {
	case ProtoInsufficient:
		return "insufficient data to determine protocol"
	case ProtoSSL:
		return "SSL/TLS connection"
	case ProtoAMQPOther:
		return "unknown AMQP protocol"
	case ProtoAMQPSASL:
		return "AMQP SASL layer"
	case ProtoAMQP:
		return "AMQP 1.0 layer"
	default:
		return "unknown protocol"
	}
}

// Protocol header prefixes, 8 bytes each.
var (
	// HeaderSASL is the SASL security-layer header: AMQP, protocol id 3,
	// version 1.0.0.
	HeaderSASL = []byte{'A', 'M', 'Q', 'P', 0x03, 0x01, 0x00, 0x00}

	// HeaderAMQP is the plain AMQP 1.0 header.
	HeaderAMQP = []byte{'A', 'M', 'Q', 'P', 0x00, 0x01, 0x00, 0x00}
)

// HeaderLen is the length of every AMQP protocol header.
const HeaderLen = 8

// SniffHeader classifies a byte prefix. It reports ProtoInsufficient until
// enough bytes are present to decide.
func SniffHeader(data []byte) Protocol {
	if len(data) == 0 {
		return ProtoInsufficient
	}
	// TLS: handshake record, or an SSLv2 client hello.
	if data[0] == 0x16 {
		return ProtoSSL
	}
	if data[0]&0x80 != 0 {
		if len(data) < 3 {
			return ProtoInsufficient
		}
		if data[2] == 0x01 {
			return ProtoSSL
		}
		return ProtoUnknown
	}
	for i := 0; i < len(data) && i < 4; i++ {
		if data[i] != "AMQP"[i] {
			return ProtoUnknown
		}
	}
	if len(data) < HeaderLen {
		return ProtoInsufficient
	}
	switch {
	case data[4] == 0x03 && data[5] == 0x01 && data[6] == 0x00 && data[7] == 0x00:
		return ProtoAMQPSASL
	case data[4] == 0x00 && data[5] == 0x01 && data[6] == 0x00 && data[7] == 0x00:
		return ProtoAMQP
	default:
		return ProtoAMQPOther
	}
}
