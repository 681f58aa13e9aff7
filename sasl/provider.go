package sasl

// Provider implements the mechanism side of the negotiation. The state
// machine calls it at fixed points of the handshake; the provider steers
// the machine back through the Sasl helpers ChooseMech, SendChallenge,
// SendResponse and SendOutcome.
//
// # Thread Safety
//
// Provider implementations are NOT safe for concurrent use across
// contexts unless stateless. Per-context state belongs in the context's
// ImplContext slot, which Free releases.
type Provider interface {
	// ListMechs returns the space-separated mechanism list a server
	// advertises, before allow-list filtering. An empty list is legal and
	// yields an empty mechanisms frame.
	ListMechs(s *Sasl) string

	// InitServer prepares the provider for the server role. Returning
	// false postpones the mechanisms frame; the next pump retries.
	InitServer(s *Sasl) bool

	// InitClient prepares the provider for the client role. Returning
	// false fails the handshake permanently.
	InitClient(s *Sasl) bool

	// ProcessInit handles the client's mechanism choice and initial
	// response on the server. The provider answers with SendChallenge or
	// SendOutcome.
	ProcessInit(s *Sasl, mech string, recv []byte)

	// ProcessMechanisms selects from the filtered, space-separated
	// mechanism list on the client and stages the initial response via
	// ChooseMech. Returning false means no offered mechanism is
	// acceptable.
	ProcessMechanisms(s *Sasl, mechs string) bool

	// ProcessChallenge handles a server challenge on the client and
	// answers with SendResponse.
	ProcessChallenge(s *Sasl, recv []byte)

	// ProcessResponse handles a client response on the server and answers
	// with SendChallenge or SendOutcome.
	ProcessResponse(s *Sasl, recv []byte)

	// Free releases provider state held for this context. Called exactly
	// once, from the context's teardown.
	Free(s *Sasl)
}
