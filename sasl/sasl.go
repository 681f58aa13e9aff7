package sasl

import (
	"os"

	"github.com/smnsjas/go-amqp-sasl/transport"
)

// ConfigPathEnv names the environment variable that seeds the provider
// configuration directory when a context is created.
const ConfigPathEnv = "PN_SASL_CONFIG_PATH"

// Config carries construction parameters for a SASL context.
type Config struct {
	// Provider supplies the mechanism implementation. Defaults to the
	// built-in ANONYMOUS/PLAIN/EXTERNAL provider.
	Provider Provider

	// LookupEnv overrides environment lookup for ConfigPathEnv, so tests
	// can inject a configuration path deterministically. Defaults to
	// os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Sasl is the negotiation context attached to a single transport. It holds
// the configuration inputs, the state machine and the staged frame bytes.
// The transport exclusively owns its context; the back-reference here is
// non-owning and used for logging and event emission.
type Sasl struct {
	transport *transport.Transport
	client    bool
	provider  Provider

	desired State
	last    State
	outcome Outcome

	selectedMech string
	included     string
	restricted   bool

	username     string
	password     string
	configName   string
	configDir    string
	remoteFQDN   string
	externalAuth string
	externalSSF  int

	// bytesOut is staged for the next init/challenge/response emission.
	bytesOut []byte

	// pending holds encoded frames not yet drained by the output side.
	pending []byte

	inputBypass  bool
	outputBypass bool
	freed        bool

	implContext any

	headerLayer      *layer
	writeHeaderLayer *layer
	readHeaderLayer  *layer
	steadyLayer      *layer
}

// New attaches a SASL context with default configuration to t. It is
// idempotent: the first call creates the context and installs the header
// layer, later calls return the existing context.
func New(t *transport.Transport) *Sasl {
	return NewWithConfig(t, Config{})
}

// NewWithConfig attaches a SASL context to t. See New.
func NewWithConfig(t *transport.Transport, cfg Config) *Sasl {
	if existing, ok := t.Attachment().(*Sasl); ok {
		return existing
	}
	lookup := cfg.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	provider := cfg.Provider
	if provider == nil {
		provider = &DefaultProvider{}
	}
	s := &Sasl{
		transport: t,
		client:    !t.Server(),
		provider:  provider,
		outcome:   OutcomeNone,
	}
	if s.client {
		s.configName = "amqp-client"
	} else {
		s.configName = "amqp-server"
	}
	if dir, ok := lookup(ConfigPathEnv); ok {
		s.configDir = dir
	}
	s.headerLayer = &layer{s: s, input: inputReadHeader, output: outputWriteHeader}
	s.writeHeaderLayer = &layer{s: s, input: inputSteady, output: outputWriteHeader}
	s.readHeaderLayer = &layer{s: s, input: inputReadHeader, output: outputSteady}
	s.steadyLayer = &layer{s: s, input: inputSteady, output: outputSteady}
	t.SetLayer(s.headerLayer)
	t.SetAttachment(s)
	return s
}

// Transport returns the transport this context is attached to.
func (s *Sasl) Transport() *transport.Transport { return s.transport }

// Client reports whether this is the initiating side of the handshake.
func (s *Sasl) Client() bool { return s.client }

// AllowedMechs restricts the mechanisms this end will advertise or accept
// to the given space-separated list. The empty string removes the
// restriction. Setting the list to exactly "ANONYMOUS" on a client
// short-circuits the handshake: the init frame is posted without waiting
// for the server's mechanism list.
func (s *Sasl) AllowedMechs(mechs string) {
	if mechs == "" {
		s.included = ""
		s.restricted = false
		return
	}
	s.included = mechs
	s.restricted = true
	if mechs == "ANONYMOUS" {
		s.forceAnonymous()
	}
}

// ConfigName selects the provider configuration name. Defaults to
// "amqp-client" or "amqp-server" by role.
func (s *Sasl) ConfigName(name string) { s.configName = name }

// ConfigPath selects the provider configuration directory. The empty
// string clears it.
func (s *Sasl) ConfigPath(dir string) { s.configDir = dir }

// Done records the outcome a server will emit. It does not itself queue
// the outcome frame; providers use SendOutcome for that.
func (s *Sasl) Done(o Outcome) { s.outcome = o }

// User returns the username: on a server the identity the mechanism
// authenticated, on a client the one configured with SetUserPassword.
func (s *Sasl) User() string { return s.username }

// Mech returns the selected mechanism, empty until one is chosen.
func (s *Sasl) Mech() string { return s.selectedMech }

// Outcome returns the negotiation outcome, OutcomeNone until concluded.
func (s *Sasl) Outcome() Outcome { return s.outcome }

// SetRemoteHostname records the expected FQDN of the peer, for mechanisms
// that bind to it.
func (s *Sasl) SetRemoteHostname(fqdn string) { s.remoteFQDN = fqdn }

// RemoteHostname returns the configured peer FQDN.
func (s *Sasl) RemoteHostname() string { return s.remoteFQDN }

// SetUserPassword configures the client credentials.
func (s *Sasl) SetUserPassword(user, password string) {
	s.username = user
	s.password = password
}

// SetExternalSecurity records the security context inherited from a lower
// TLS layer: its strength factor and the authenticated identity. An empty
// authid clears the identity.
func (s *Sasl) SetExternalSecurity(ssf int, authid string) {
	s.externalSSF = ssf
	s.externalAuth = authid
}

// ExternalSSF returns the strength factor of the lower security layer,
// zero when there is none.
func (s *Sasl) ExternalSSF() int { return s.externalSSF }

// ExternalAuth returns the identity established by the lower security
// layer.
func (s *Sasl) ExternalAuth() string { return s.externalAuth }

// SetImplContext stores provider-owned state scoped to this context.
func (s *Sasl) SetImplContext(v any) { s.implContext = v }

// ImplContext returns the provider-owned state.
func (s *Sasl) ImplContext() any { return s.implContext }

// Free releases the context. The provider's teardown runs exactly once;
// the password and any staged frame bytes are cleared.
func (s *Sasl) Free() {
	if s.freed {
		return
	}
	s.freed = true
	s.provider.Free(s)
	s.implContext = nil
	s.password = ""
	s.bytesOut = nil
	s.pending = nil
}

// ChooseMech records the client's mechanism selection and stages its
// initial response. Providers call this from ProcessMechanisms.
func (s *Sasl) ChooseMech(mech string, initial []byte) {
	s.selectedMech = mech
	s.bytesOut = initial
}

// SendChallenge stages challenge data and requests its emission. Providers
// call this from ProcessInit or ProcessResponse on the server side.
func (s *Sasl) SendChallenge(data []byte) {
	s.bytesOut = data
	s.setDesiredState(StatePostedChallenge)
}

// SendResponse stages response data and requests its emission. Providers
// call this from ProcessChallenge on the client side.
func (s *Sasl) SendResponse(data []byte) {
	s.bytesOut = data
	s.setDesiredState(StatePostedResponse)
}

// SendOutcome records the outcome and requests emission of the
// sasl-outcome frame. Server side only.
func (s *Sasl) SendOutcome(o Outcome) {
	s.outcome = o
	s.transport.SetAuthenticated(o == OutcomeOK)
	s.setDesiredState(StatePostedOutcome)
}

// SetAuthenticatedUser records the identity the mechanism established.
// Server-side providers call this on success.
func (s *Sasl) SetAuthenticatedUser(user string) { s.username = user }

// forceAnonymous pretends a mechanisms frame offering only ANONYMOUS
// arrived, so the client can post init before any server bytes flow. Only
// the client can take this shortcut; the server does not know SASL is in
// use until it sees the client's header.
func (s *Sasl) forceAnonymous() {
	if !s.client {
		return
	}
	if s.provider.InitClient(s) && s.provider.ProcessMechanisms(s, "ANONYMOUS") {
		s.setDesiredState(StatePretendOutcome)
	} else {
		s.outcome = OutcomeSysPerm
		s.setDesiredState(StateRecvedOutcome)
	}
}

// process runs the role's lazy initialization: a server queues its
// mechanism list the first time the negotiation is pumped.
func (s *Sasl) process() {
	if s.client {
		return
	}
	if s.desired < StatePostedMechanisms {
		if !s.provider.InitServer(s) {
			return
		}
		s.setDesiredState(StatePostedMechanisms)
	}
}
