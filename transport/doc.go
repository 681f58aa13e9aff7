// Package transport provides the byte-pipe shell the SASL layer plugs
// into: a half-duplex buffer contract, a swappable I/O layer slot, protocol
// header sniffing, AMQP error conditions and a transport event collector.
//
// A Transport owns no socket. The caller pushes received bytes in with
// Push and drains bytes to send with Pop; each delegates to the currently
// installed Layer, which may replace itself mid-call as the protocol
// advances.
//
// # Thread Safety
//
// A Transport is NOT safe for concurrent use. Push and Pop must be
// alternated from a single goroutine; the layers keep handshake state
// between calls.
package transport
