package transport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// ErrEOS is the end-of-stream sentinel of the byte-pipe contract. A layer
// returns it from ProcessInput when it will consume no further input, and
// from ProcessOutput when it will produce no further output.
var ErrEOS = errors.New("transport: end of stream")

// Layer is one element of the transport's I/O stack. Input flows from the
// wire up, output from the application down. A layer may call SetLayer on
// the transport to replace itself as the protocol advances.
type Layer interface {
	// ProcessInput consumes wire bytes. It returns the number of bytes
	// consumed, or ErrEOS when this direction is finished.
	ProcessInput(t *Transport, data []byte) (int, error)

	// ProcessOutput fills buf with wire bytes. It returns the number of
	// bytes produced, or ErrEOS when this direction is finished.
	ProcessOutput(t *Transport, buf []byte) (int, error)
}

// Config carries the construction parameters of a Transport.
type Config struct {
	// Server marks the transport as the listening side of the connection.
	Server bool

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger

	// Collector receives transport events. Optional.
	Collector *Collector

	// TraceFrames enables per-frame trace logging.
	TraceFrames bool
}

// Transport is the byte-pipe shell. It owns the layer stack and the
// connection-scoped error and authentication state.
type Transport struct {
	id     string
	server bool
	logger *slog.Logger

	layer Layer
	app   Layer

	collector *Collector
	trace     bool

	condition     *Condition
	closeSent     bool
	tailClosed    bool
	authenticated bool

	tlsSSF     int
	tlsSubject string

	attachment any

	inbound  []byte
	outbound []byte
}

// New creates a transport with the application byte queue installed as the
// top layer and no security layer; callers install one with SetLayer.
func New(cfg Config) *Transport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Transport{
		id:        uuid.New().String(),
		server:    cfg.Server,
		logger:    logger,
		collector: cfg.Collector,
		trace:     cfg.TraceFrames,
	}
	t.app = appQueue{}
	t.layer = t.app
	return t
}

// ID returns the transport's unique identifier.
func (t *Transport) ID() string { return t.id }

// Server reports whether this is the listening side.
func (t *Transport) Server() bool { return t.server }

// Logger returns the transport's logger, never nil.
func (t *Transport) Logger() *slog.Logger { return t.logger }

// Collector returns the event collector, which may be nil.
func (t *Transport) Collector() *Collector { return t.collector }

// TraceFrames reports whether frame tracing is enabled.
func (t *Transport) TraceFrames() bool { return t.trace }

// Emit posts a transport event to the collector, if one is attached.
func (t *Transport) Emit() {
	if t.collector != nil {
		t.collector.Put(Event{Type: EventTransport, Transport: t})
	}
}

// SetLayer replaces the active I/O layer.
func (t *Transport) SetLayer(l Layer) { t.layer = l }

// Layer returns the active I/O layer.
func (t *Transport) Layer() Layer { return t.layer }

// SetAppLayer replaces the layer above the security layer: the one the
// passthrough forwards to once negotiation is complete.
func (t *Transport) SetAppLayer(l Layer) { t.app = l }

// AppLayer returns the layer above the security layer.
func (t *Transport) AppLayer() Layer { return t.app }

// Push feeds received wire bytes into the stack. It returns the number of
// bytes consumed; ErrEOS means the transport will read no more.
func (t *Transport) Push(data []byte) (int, error) {
	return t.layer.ProcessInput(t, data)
}

// Pop drains wire bytes to send from the stack into buf. It returns the
// number of bytes produced; ErrEOS means the transport will write no more.
func (t *Transport) Pop(buf []byte) (int, error) {
	return t.layer.ProcessOutput(t, buf)
}

// CloseTail marks the read side closed: no bytes beyond those already
// pushed will ever arrive.
func (t *Transport) CloseTail() { t.tailClosed = true }

// TailClosed reports whether the read side has been closed.
func (t *Transport) TailClosed() bool { return t.tailClosed }

// SetCloseSent records that the transport has committed to closing.
func (t *Transport) SetCloseSent() { t.closeSent = true }

// CloseSent reports whether the transport has committed to closing.
func (t *Transport) CloseSent() bool { return t.closeSent }

// SetAuthenticated records the result of the security handshake.
func (t *Transport) SetAuthenticated(ok bool) { t.authenticated = ok }

// Authenticated reports whether the peer authenticated successfully.
func (t *Transport) Authenticated() bool { return t.authenticated }

// SetTLS records the security context established by a lower TLS layer:
// its strength factor and the authenticated peer subject.
func (t *Transport) SetTLS(ssf int, subject string) {
	t.tlsSSF = ssf
	t.tlsSubject = subject
}

// TLS returns the security context of the lower TLS layer, zero-valued
// when the connection is not secured.
func (t *Transport) TLS() (ssf int, subject string) {
	return t.tlsSSF, t.tlsSubject
}

// SetAttachment stores an opaque value scoped to the transport's lifetime.
func (t *Transport) SetAttachment(v any) { t.attachment = v }

// Attachment returns the value stored with SetAttachment.
func (t *Transport) Attachment() any { return t.attachment }

// Condition returns the fatal error condition, or nil.
func (t *Transport) Condition() *Condition { return t.condition }

// Errorf attaches an error condition and logs it. Only the first condition
// sticks; later ones are logged but do not overwrite it.
func (t *Transport) Errorf(name, format string, args ...any) {
	desc := fmt.Sprintf(format, args...)
	t.logger.Error("transport error",
		"transport", t.id,
		"condition", name,
		"description", desc,
	)
	if t.condition == nil {
		t.condition = &Condition{Name: name, Description: desc}
	}
	t.Emit()
}

// SetErrorLayer replaces the active layer with one that refuses further
// traffic in both directions.
func (t *Transport) SetErrorLayer() {
	t.layer = errorLayer{}
}

// Send queues application bytes to go out on the wire once the security
// layer has handed the stream over.
func (t *Transport) Send(data []byte) {
	t.outbound = append(t.outbound, data...)
}

// Received drains the application bytes delivered up through the stack.
func (t *Transport) Received() []byte {
	b := t.inbound
	t.inbound = nil
	return b
}

// Quote renders raw bytes for inclusion in an error description: printable
// ASCII other than '"' and '\' is kept, everything else becomes \xNN.
func Quote(data []byte) string {
	return quote(data)
}
