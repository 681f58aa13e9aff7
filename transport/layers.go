package transport

// Passthrough forwards bytes untouched between the wire and the layer
// above. A security layer installs it once its handshake no longer owns
// the stream.
var Passthrough Layer = passthroughLayer{}

type passthroughLayer struct{}

func (passthroughLayer) ProcessInput(t *Transport, data []byte) (int, error) {
	return t.app.ProcessInput(t, data)
}

func (passthroughLayer) ProcessOutput(t *Transport, buf []byte) (int, error) {
	return t.app.ProcessOutput(t, buf)
}

// errorLayer refuses traffic in both directions. Installed after a fatal
// protocol error.
type errorLayer struct{}

func (errorLayer) ProcessInput(t *Transport, data []byte) (int, error) {
	return 0, ErrEOS
}

func (errorLayer) ProcessOutput(t *Transport, buf []byte) (int, error) {
	return 0, ErrEOS
}

// appQueue is the default top layer: a pair of in-memory byte queues
// standing in for the AMQP frame layer. Inbound bytes accumulate for
// Received; outbound bytes queued with Send drain to the wire.
type appQueue struct{}

func (appQueue) ProcessInput(t *Transport, data []byte) (int, error) {
	t.inbound = append(t.inbound, data...)
	return len(data), nil
}

func (appQueue) ProcessOutput(t *Transport, buf []byte) (int, error) {
	n := copy(buf, t.outbound)
	t.outbound = t.outbound[n:]
	return n, nil
}
