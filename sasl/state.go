package sasl

// State is one step of the negotiation. The integer order matters: the
// machine never moves the desired state to a lower ordinal.
type State int

const (
	// StateNone is the initial state of both roles.
	StateNone State = iota
	// StatePostedInit means the client has queued its sasl-init frame.
	StatePostedInit
	// StatePostedMechanisms means the server has queued its mechanism list.
	StatePostedMechanisms
	// StatePostedResponse means the client has queued a sasl-response.
	StatePostedResponse
	// StatePostedChallenge means the server has queued a sasl-challenge.
	StatePostedChallenge
	// StatePretendOutcome is the client's anonymous short-circuit: init is
	// posted without waiting for the mechanism list and the output side is
	// finished, while input still waits for the server's real outcome.
	StatePretendOutcome
	// StatePostedOutcome means the server has queued the sasl-outcome.
	StatePostedOutcome
	// StateRecvedOutcome means the client has observed the outcome.
	StateRecvedOutcome
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StatePostedInit:
		return "PostedInit"
	case StatePostedMechanisms:
		return "PostedMechanisms"
	case StatePostedResponse:
		return "PostedResponse"
	case StatePostedChallenge:
		return "PostedChallenge"
	case StatePretendOutcome:
		return "PretendOutcome"
	case StatePostedOutcome:
		return "PostedOutcome"
	case StateRecvedOutcome:
		return "RecvedOutcome"
	default:
		return "Unknown"
	}
}

// serverState reports whether a server may request this state.
func (s State) serverState() bool {
	return s == StateNone ||
		s == StatePostedMechanisms ||
		s == StatePostedChallenge ||
		s == StatePostedOutcome
}

// clientState reports whether a client may request this state.
func (s State) clientState() bool {
	return s == StateNone ||
		s == StatePostedInit ||
		s == StatePostedResponse ||
		s == StatePretendOutcome ||
		s == StateRecvedOutcome
}

// Outcome is the result of the handshake. The non-negative values are the
// wire codes of the sasl-outcome frame.
type Outcome int

const (
	// OutcomeNone means the negotiation has not concluded.
	OutcomeNone Outcome = -1
	// OutcomeOK means authentication succeeded.
	OutcomeOK Outcome = 0
	// OutcomeAuth means authentication failed due to bad credentials.
	OutcomeAuth Outcome = 1
	// OutcomeSys means an unspecified system error.
	OutcomeSys Outcome = 2
	// OutcomeSysPerm means a permanent system error.
	OutcomeSysPerm Outcome = 3
	// OutcomeSysTemp means a temporary system error.
	OutcomeSysTemp Outcome = 4
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "None"
	case OutcomeOK:
		return "OK"
	case OutcomeAuth:
		return "Auth"
	case OutcomeSys:
		return "Sys"
	case OutcomeSysPerm:
		return "SysPerm"
	case OutcomeSysTemp:
		return "SysTemp"
	default:
		return "Unknown"
	}
}

// setDesiredState requests a transition. Backward moves and role-foreign
// states are logged and dropped; everything else records the intent and
// emits a transport event. Requesting the already-reached challenge or
// response state rewinds progress one step so the frame is emitted again,
// which is how multi-round exchanges repeat.
func (s *Sasl) setDesiredState(desired State) {
	t := s.transport
	switch {
	case s.last > desired:
		t.Logger().Warn("dropping SASL frame request: already in a later state",
			"transport", t.ID(), "requested", desired, "last", s.last)
	case s.client && !desired.clientState():
		t.Logger().Warn("dropping server SASL frame request on a client",
			"transport", t.ID(), "requested", desired)
	case !s.client && !desired.serverState():
		t.Logger().Warn("dropping client SASL frame request on a server",
			"transport", t.ID(), "requested", desired)
	default:
		if s.last == desired && desired == StatePostedResponse {
			s.last = StatePostedInit
		}
		if s.last == desired && desired == StatePostedChallenge {
			s.last = StatePostedMechanisms
		}
		s.desired = desired
		t.Emit()
	}
}

// finalInput reports whether the input side has nothing left to consume as
// SASL frames.
func (s *Sasl) finalInput() bool {
	return s.last == StateRecvedOutcome || s.desired == StatePostedOutcome
}

// finalOutput reports whether the output side has nothing left to emit.
func (s *Sasl) finalOutput() bool {
	return s.last == StatePretendOutcome ||
		s.last == StateRecvedOutcome ||
		s.last == StatePostedOutcome
}
