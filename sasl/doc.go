// Package sasl implements the AMQP 1.0 SASL negotiation state machine.
//
// A Sasl attaches to a transport.Transport and takes over its I/O layer
// slot: first exchanging the 8-byte SASL protocol header, then SASL frames
// (mechanisms, init, challenge, response, outcome), and finally handing
// the stream off untouched to the layer above once both directions have
// observed the outcome.
//
// The machine is role-asymmetric. A client only ever posts init, response
// and the two outcome-observing pseudo-states; a server only ever posts
// mechanisms, challenge and outcome. Progress is monotonic: the desired
// state may never move backwards, and illegal requests are logged and
// dropped rather than acted on.
//
// Mechanism logic lives behind the Provider interface; the package ships
// a built-in provider covering ANONYMOUS, PLAIN and EXTERNAL.
//
// # Authentication Flow
//
// The typical client flow is:
//  1. Peer advertises mechanisms; the provider picks one and stages an
//     initial response.
//  2. The machine posts init and, for multi-round mechanisms, answers
//     each challenge with a response.
//  3. The peer posts an outcome; the transport records whether the
//     handshake authenticated.
package sasl
