package sasl

import (
	"bytes"
	"strings"
)

// DefaultProvider is the built-in mechanism provider. It implements
// ANONYMOUS, EXTERNAL and PLAIN without any external SASL library.
//
// On the client it prefers EXTERNAL when a lower security layer
// established an identity, then PLAIN when credentials are configured,
// then ANONYMOUS. On the server it advertises what it can actually
// verify: ANONYMOUS always, EXTERNAL when the lower layer authenticated
// the peer, PLAIN only when a VerifyPlain hook is installed.
type DefaultProvider struct {
	// VerifyPlain authorizes a PLAIN authentication on the server side.
	// Nil disables PLAIN entirely.
	VerifyPlain func(username, password string) bool
}

// Mechanism names implemented by the default provider.
const (
	MechAnonymous = "ANONYMOUS"
	MechExternal  = "EXTERNAL"
	MechPlain     = "PLAIN"
)

// ListMechs implements Provider.
func (p *DefaultProvider) ListMechs(s *Sasl) string {
	mechs := []string{MechAnonymous}
	if s.ExternalAuth() != "" {
		mechs = append([]string{MechExternal}, mechs...)
	}
	if p.VerifyPlain != nil {
		mechs = append(mechs, MechPlain)
	}
	return strings.Join(mechs, " ")
}

// InitServer implements Provider.
func (p *DefaultProvider) InitServer(s *Sasl) bool { return true }

// InitClient implements Provider.
func (p *DefaultProvider) InitClient(s *Sasl) bool { return true }

// ProcessMechanisms implements Provider.
func (p *DefaultProvider) ProcessMechanisms(s *Sasl, mechs string) bool {
	switch {
	case s.ExternalAuth() != "" && wordInList(mechs, MechExternal):
		// RFC 4422: empty authzid, the identity comes from the lower layer.
		s.ChooseMech(MechExternal, []byte{})
	case s.username != "" && wordInList(mechs, MechPlain):
		ir := make([]byte, 0, len(s.username)+len(s.password)+2)
		ir = append(ir, 0)
		ir = append(ir, s.username...)
		ir = append(ir, 0)
		ir = append(ir, s.password...)
		s.ChooseMech(MechPlain, ir)
	case wordInList(mechs, MechAnonymous):
		s.ChooseMech(MechAnonymous, []byte{})
	default:
		return false
	}
	return true
}

// ProcessInit implements Provider.
func (p *DefaultProvider) ProcessInit(s *Sasl, mech string, recv []byte) {
	switch mech {
	case MechAnonymous:
		s.SendOutcome(OutcomeOK)
	case MechExternal:
		if s.ExternalAuth() != "" {
			s.SetAuthenticatedUser(s.ExternalAuth())
			s.SendOutcome(OutcomeOK)
		} else {
			s.SendOutcome(OutcomeAuth)
		}
	case MechPlain:
		user, pass, ok := splitPlain(recv)
		if ok && p.VerifyPlain != nil && p.VerifyPlain(user, pass) {
			s.SetAuthenticatedUser(user)
			s.SendOutcome(OutcomeOK)
		} else {
			s.SendOutcome(OutcomeAuth)
		}
	default:
		s.SendOutcome(OutcomeAuth)
	}
}

// ProcessChallenge implements Provider. None of the built-in mechanisms
// are multi-round; an unexpected challenge gets an empty response so the
// exchange stays well-formed and the server decides the outcome.
func (p *DefaultProvider) ProcessChallenge(s *Sasl, recv []byte) {
	s.SendResponse([]byte{})
}

// ProcessResponse implements Provider. The built-in mechanisms conclude
// on init, so any response is unexpected and refused.
func (p *DefaultProvider) ProcessResponse(s *Sasl, recv []byte) {
	s.SendOutcome(OutcomeAuth)
}

// Free implements Provider.
func (p *DefaultProvider) Free(s *Sasl) {}

// splitPlain parses a PLAIN initial response: authzid NUL authcid NUL
// passwd. The authzid is ignored.
func splitPlain(recv []byte) (user, pass string, ok bool) {
	parts := bytes.SplitN(recv, []byte{0}, 3)
	if len(parts) != 3 {
		return "", "", false
	}
	return string(parts[1]), string(parts[2]), true
}
