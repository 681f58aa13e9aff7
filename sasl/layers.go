package sasl

import (
	"errors"

	"github.com/smnsjas/go-amqp-sasl/transport"
)

// layerFunc is one direction of an I/O layer, bound to a context.
type layerFunc func(s *Sasl, t *transport.Transport, data []byte) (int, error)

// layer pairs an input and an output function. Four instances exist per
// context, covering every combination of "header still to read" and
// "header still to write"; they swap themselves into the transport's layer
// slot as the handshake advances.
type layer struct {
	s      *Sasl
	input  layerFunc
	output layerFunc
}

func (l *layer) ProcessInput(t *transport.Transport, data []byte) (int, error) {
	return l.input(l.s, t, data)
}

func (l *layer) ProcessOutput(t *transport.Transport, buf []byte) (int, error) {
	return l.output(l.s, t, buf)
}

// inputReadHeader sniffs the peer's protocol header. Anything other than
// the exact SASL header is a fatal framing error.
func inputReadHeader(s *Sasl, t *transport.Transport, data []byte) (int, error) {
	eos := t.TailClosed()
	proto := transport.SniffHeader(data)
	switch proto {
	case transport.ProtoAMQPSASL:
		if t.Layer() == s.readHeaderLayer {
			t.SetLayer(s.steadyLayer)
		} else {
			t.SetLayer(s.writeHeaderLayer)
		}
		if t.TraceFrames() {
			t.Logger().Debug("  <- SASL", "transport", t.ID())
		}
		s.SetExternalSecurity(t.TLS())
		return transport.HeaderLen, nil
	case transport.ProtoInsufficient:
		if !eos {
			return 0, nil
		}
	}
	t.SetCloseSent()
	aborted := ""
	if eos {
		aborted = " (connection aborted)"
	}
	t.Errorf(transport.ConditionFramingError,
		"SASL header mismatch: %s ['%s']%s", proto, transport.Quote(data), aborted)
	t.SetErrorLayer()
	return 0, transport.ErrEOS
}

// outputWriteHeader emits our own SASL header, then advances the layer.
func outputWriteHeader(s *Sasl, t *transport.Transport, buf []byte) (int, error) {
	if len(buf) < transport.HeaderLen {
		return 0, nil
	}
	if t.TraceFrames() {
		t.Logger().Debug("  -> SASL", "transport", t.ID())
	}
	copy(buf, transport.HeaderSASL)
	if t.Layer() == s.writeHeaderLayer {
		t.SetLayer(s.steadyLayer)
	} else {
		t.SetLayer(s.readHeaderLayer)
	}
	return transport.HeaderLen, nil
}

// inputSteady consumes SASL frames until the input side concludes, then
// hands remaining bytes to the passthrough. End of stream inside SASL
// framing is a fatal error: the handshake never ends mid-frame.
func inputSteady(s *Sasl, t *transport.Transport, data []byte) (int, error) {
	if t.TailClosed() {
		t.SetCloseSent()
		t.Errorf(transport.ConditionFramingError, "connection aborted")
		t.SetErrorLayer()
		return 0, transport.ErrEOS
	}

	if !s.inputBypass {
		n, err := s.saslInput(t, data)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, transport.ErrEOS) {
			return n, err
		}
		s.inputBypass = true
		if s.outputBypass {
			t.SetLayer(transport.Passthrough)
		}
	}
	return transport.Passthrough.ProcessInput(t, data)
}

// outputSteady drains SASL frames until the output side concludes, then
// hands the stream to the passthrough.
func outputSteady(s *Sasl, t *transport.Transport, buf []byte) (int, error) {
	if !s.outputBypass {
		var n int
		var err error
		if t.CloseSent() {
			err = transport.ErrEOS
		} else {
			n, err = s.saslOutput(t, buf)
		}
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, transport.ErrEOS) {
			return n, err
		}
		s.outputBypass = true
		if s.inputBypass {
			t.SetLayer(transport.Passthrough)
		}
	}
	return transport.Passthrough.ProcessOutput(t, buf)
}
