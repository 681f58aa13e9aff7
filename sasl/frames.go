package sasl

import (
	"strings"

	"github.com/smnsjas/go-amqp-sasl/amqp"
	"github.com/smnsjas/go-amqp-sasl/transport"
)

// saslInput feeds bytes to the frame dispatcher. A zero-byte consumption
// in a final input state means the SASL layer is done reading; the caller
// turns that into the input bypass.
func (s *Sasl) saslInput(t *transport.Transport, data []byte) (int, error) {
	s.process()

	n, err := s.dispatchInput(t, data)
	if err != nil {
		return n, err
	}
	if n == 0 && s.finalInput() {
		return 0, transport.ErrEOS
	}
	return n, nil
}

// saslOutput drives pending emissions into buf. With nothing staged and
// the machine in a final output state it signals end of stream, closing
// the read tail as well when the handshake failed.
func (s *Sasl) saslOutput(t *transport.Transport, buf []byte) (int, error) {
	s.process()
	s.postFrame()

	if len(s.pending) == 0 && s.finalOutput() {
		if s.outcome != OutcomeOK && s.finalInput() {
			t.CloseTail()
		}
		return 0, transport.ErrEOS
	}
	n := copy(buf, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// dispatchInput parses complete SASL frames out of data and hands each to
// its handler. Incomplete trailing bytes are left unconsumed. Malformed
// frames attach a framing-error condition and poison the transport.
func (s *Sasl) dispatchInput(t *transport.Transport, data []byte) (int, error) {
	consumed := 0
	for {
		body, frameType, n, err := amqp.ParseFrame(data[consumed:])
		if err != nil {
			return consumed, s.framingError(t, err)
		}
		if n == 0 {
			return consumed, nil
		}
		if frameType != amqp.FrameTypeSASL {
			return consumed, s.framingError(t, &transport.Condition{
				Name:        transport.ConditionFramingError,
				Description: "unexpected frame type during SASL negotiation",
			})
		}
		if len(body) > 0 {
			if err := s.dispatchFrame(t, body); err != nil {
				return consumed, s.framingError(t, err)
			}
		}
		consumed += n
	}
}

// framingError marks the transport fatally broken and returns its
// condition as the error the byte-pipe contract propagates.
func (s *Sasl) framingError(t *transport.Transport, err error) error {
	t.SetCloseSent()
	t.Errorf(transport.ConditionFramingError, "malformed SASL frame: %v", err)
	t.SetErrorLayer()
	return t.Condition()
}

// dispatchFrame routes one performative body to its handler.
func (s *Sasl) dispatchFrame(t *transport.Transport, body []byte) error {
	code, err := amqp.DescriptorOf(body)
	if err != nil {
		return err
	}
	switch code {
	case amqp.DescMechanisms:
		return s.handleMechanisms(body)
	case amqp.DescInit:
		return s.handleInit(body)
	case amqp.DescChallenge:
		return s.handleChallenge(body)
	case amqp.DescResponse:
		return s.handleResponse(body)
	case amqp.DescOutcome:
		return s.handleOutcome(t, body)
	default:
		return &transport.Condition{
			Name:        transport.ConditionFramingError,
			Description: "unexpected SASL performative",
		}
	}
}

// handleInit runs on the server when the client announces its mechanism
// choice and initial response.
func (s *Sasl) handleInit(body []byte) error {
	mech, recv, err := amqp.ScanInit(body)
	if err != nil {
		return err
	}
	s.selectedMech = mech
	s.provider.ProcessInit(s, mech, recv)
	return nil
}

// handleMechanisms runs on the client when the server's mechanism list
// arrives. The list is filtered through the allow-list before the
// provider selects from it; an empty or unacceptable list concludes the
// handshake with a permanent failure instead of tearing the connection.
func (s *Sasl) handleMechanisms(body []byte) error {
	// The anonymous short-circuit already chose; ignore the real list.
	if s.last == StatePretendOutcome {
		return nil
	}
	offered, err := amqp.ScanMechanisms(body)
	if err != nil {
		return err
	}
	var kept []string
	for _, mech := range offered {
		if s.mechIncluded(mech) {
			kept = append(kept, mech)
		}
	}
	if s.provider.InitClient(s) && s.provider.ProcessMechanisms(s, strings.Join(kept, " ")) {
		s.setDesiredState(StatePostedInit)
	} else {
		s.outcome = OutcomeSysPerm
		s.setDesiredState(StateRecvedOutcome)
	}
	return nil
}

// handleChallenge runs on the client for each server challenge.
func (s *Sasl) handleChallenge(body []byte) error {
	recv, err := amqp.ScanBinary(body)
	if err != nil {
		return err
	}
	s.provider.ProcessChallenge(s, recv)
	return nil
}

// handleResponse runs on the server for each client response.
func (s *Sasl) handleResponse(body []byte) error {
	recv, err := amqp.ScanBinary(body)
	if err != nil {
		return err
	}
	s.provider.ProcessResponse(s, recv)
	return nil
}

// handleOutcome runs on the client when the server concludes the
// handshake.
func (s *Sasl) handleOutcome(t *transport.Transport, body []byte) error {
	code, _, err := amqp.ScanOutcome(body)
	if err != nil {
		return err
	}
	s.outcome = Outcome(code)
	t.SetAuthenticated(s.outcome == OutcomeOK)
	s.setDesiredState(StateRecvedOutcome)
	return nil
}

// postFrame is the drive loop: while the desired state is ahead of
// progress, emit the frame the desired state calls for, or redirect to a
// prerequisite state first. The desired state is re-read after every
// emission because a handler may have advanced it mid-drive.
func (s *Sasl) postFrame() {
	out := s.bytesOut
	desired := s.desired
	for s.desired > s.last {
		switch desired {
		case StatePostedInit:
			s.emit(amqp.EncodeInit(s.selectedMech, out, ""))
		case StatePretendOutcome:
			if s.last < StatePostedInit {
				desired = StatePostedInit
				continue
			}
		case StatePostedMechanisms:
			mechlist := s.provider.ListMechs(s)
			s.emit(amqp.EncodeMechanisms(s.splitMechs(mechlist)))
		case StatePostedResponse:
			s.emit(amqp.EncodeResponse(out))
		case StatePostedChallenge:
			if s.last < StatePostedMechanisms {
				desired = StatePostedMechanisms
				continue
			}
			s.emit(amqp.EncodeChallenge(out))
		case StatePostedOutcome:
			if s.last < StatePostedMechanisms {
				desired = StatePostedMechanisms
				continue
			}
			s.emit(amqp.EncodeOutcome(uint8(s.outcome), nil))
		case StateRecvedOutcome:
			if s.last < StatePostedInit && s.outcome == OutcomeOK {
				desired = StatePostedInit
				continue
			}
		case StateNone:
			return
		}
		s.last = desired
		desired = s.desired
	}
}

// emit stages one frame for the output side and posts a transport event.
func (s *Sasl) emit(body []byte) {
	s.pending = amqp.AppendFrame(s.pending, amqp.FrameTypeSASL, body)
	s.transport.Emit()
}
