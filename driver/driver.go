// Package driver provides a buffer-pump convenience API over a transport
// with its SASL layer attached: a pair of in-memory buffers standing in
// for a socket, event dispatch, and a Pump helper that cross-wires two
// drivers to run a complete handshake without any I/O.
package driver

import (
	"errors"
	"log/slog"

	"github.com/smnsjas/go-amqp-sasl/sasl"
	"github.com/smnsjas/go-amqp-sasl/transport"
)

// Config carries the construction parameters of a Driver.
type Config struct {
	// Server marks this driver as the listening side.
	Server bool

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger

	// TraceFrames enables per-frame trace logging.
	TraceFrames bool

	// Username and Password configure client credentials.
	Username string
	Password string

	// AllowedMechs restricts acceptable mechanisms, space-separated.
	AllowedMechs string

	// RemoteHostname is the expected FQDN of the peer.
	RemoteHostname string

	// Provider overrides the mechanism provider.
	Provider sasl.Provider

	// VerifyPlain enables and authorizes server-side PLAIN when no
	// Provider override is given.
	VerifyPlain func(username, password string) bool

	// LookupEnv overrides environment lookup for the SASL layer.
	LookupEnv func(key string) (string, bool)
}

// Driver owns a transport and its SASL context and pumps bytes between
// them and the caller.
type Driver struct {
	transport *transport.Transport
	sasl      *sasl.Sasl
	collector *transport.Collector

	// inbuf holds pushed wire bytes the layers have not consumed yet,
	// typically the tail of a partial frame.
	inbuf []byte
}

// New creates a driver with a freshly bound transport and SASL context.
func New(cfg Config) *Driver {
	collector := transport.NewCollector()
	t := transport.New(transport.Config{
		Server:      cfg.Server,
		Logger:      cfg.Logger,
		Collector:   collector,
		TraceFrames: cfg.TraceFrames,
	})
	provider := cfg.Provider
	if provider == nil {
		provider = &sasl.DefaultProvider{VerifyPlain: cfg.VerifyPlain}
	}
	s := sasl.NewWithConfig(t, sasl.Config{
		Provider:  provider,
		LookupEnv: cfg.LookupEnv,
	})
	if cfg.Username != "" || cfg.Password != "" {
		s.SetUserPassword(cfg.Username, cfg.Password)
	}
	if cfg.RemoteHostname != "" {
		s.SetRemoteHostname(cfg.RemoteHostname)
	}
	// Last: an allow-list of exactly ANONYMOUS short-circuits immediately
	// and must see the credentials above.
	if cfg.AllowedMechs != "" {
		s.AllowedMechs(cfg.AllowedMechs)
	}
	return &Driver{transport: t, sasl: s, collector: collector}
}

// Transport returns the underlying transport.
func (d *Driver) Transport() *transport.Transport { return d.transport }

// SASL returns the attached SASL context.
func (d *Driver) SASL() *sasl.Sasl { return d.sasl }

// Write feeds wire bytes received from the peer into the stack. Bytes the
// layers cannot consume yet (a partial frame) are buffered and retried on
// the next Write. The returned error is transport.ErrEOS once the read
// side refuses further traffic.
func (d *Driver) Write(p []byte) (int, error) {
	d.inbuf = append(d.inbuf, p...)
	for len(d.inbuf) > 0 {
		n, err := d.transport.Push(d.inbuf)
		if n > 0 {
			d.inbuf = d.inbuf[n:]
		}
		if err != nil {
			return len(p), err
		}
		if n == 0 {
			break
		}
	}
	return len(p), nil
}

// Read drains wire bytes to send to the peer into p. It returns 0, nil
// when nothing is pending, and transport.ErrEOS once the write side is
// finished for good.
func (d *Driver) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := d.transport.Pop(p[total:])
		total += n
		if err != nil {
			if total > 0 && errors.Is(err, transport.ErrEOS) {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// CloseRead marks the peer's byte stream finished: nothing further will be
// written into this driver. The layers get one final look at any buffered
// bytes so they can observe end of stream.
func (d *Driver) CloseRead() {
	d.transport.CloseTail()
	n, _ := d.transport.Push(d.inbuf)
	if n > 0 {
		d.inbuf = d.inbuf[n:]
	}
}

// Dispatch drains collected events to fn and reports whether any fired.
func (d *Driver) Dispatch(fn func(transport.Event)) bool {
	fired := false
	for {
		e, ok := d.collector.Next()
		if !ok {
			return fired
		}
		fired = true
		if fn != nil {
			fn(e)
		}
	}
}

// Finished reports whether the driver can make no further progress: a
// fatal condition is attached or the read tail is closed.
func (d *Driver) Finished() bool {
	return d.transport.Condition() != nil || d.transport.TailClosed()
}

// Pump shuttles bytes between two drivers until neither makes progress,
// then returns the first fatal condition either transport attached, if
// any. This runs a complete handshake in memory.
func Pump(a, b *Driver) error {
	buf := make([]byte, 4096)
	shuttle := func(src, dst *Driver) (bool, error) {
		n, err := src.Read(buf)
		if err != nil && !errors.Is(err, transport.ErrEOS) {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		if _, err := dst.Write(buf[:n]); err != nil && !errors.Is(err, transport.ErrEOS) {
			return true, err
		}
		return true, nil
	}
	for {
		fwd, err := shuttle(a, b)
		if err != nil {
			return err
		}
		rev, err := shuttle(b, a)
		if err != nil {
			return err
		}
		if !fwd && !rev {
			break
		}
	}
	if c := a.transport.Condition(); c != nil {
		return c
	}
	if c := b.transport.Condition(); c != nil {
		return c
	}
	return nil
}
