package transport

import (
	"bytes"
	"errors"
	"testing"
)

// TestAppQueue verifies the default top layer shuttles application bytes.
func TestAppQueue(t *testing.T) {
	tr := New(Config{})

	n, err := tr.Push([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Push() = %d, %v", n, err)
	}
	if got := tr.Received(); !bytes.Equal(got, []byte("hello")) {
		t.Errorf("Received() = %q", got)
	}
	if got := tr.Received(); got != nil {
		t.Errorf("Received() after drain = %q, want nil", got)
	}

	tr.Send([]byte("world"))
	buf := make([]byte, 3)
	n, err = tr.Pop(buf)
	if err != nil || n != 3 {
		t.Fatalf("Pop() = %d, %v", n, err)
	}
	if string(buf) != "wor" {
		t.Errorf("Pop() produced %q", buf)
	}
	n, _ = tr.Pop(buf)
	if n != 2 || string(buf[:n]) != "ld" {
		t.Errorf("second Pop() = %d %q", n, buf[:n])
	}
}

// TestPassthrough verifies the passthrough layer forwards both directions
// to the app layer.
func TestPassthrough(t *testing.T) {
	tr := New(Config{})
	tr.SetLayer(Passthrough)

	if _, err := tr.Push([]byte("in")); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if got := tr.Received(); !bytes.Equal(got, []byte("in")) {
		t.Errorf("Received() = %q", got)
	}

	tr.Send([]byte("out"))
	buf := make([]byte, 16)
	n, err := tr.Pop(buf)
	if err != nil || string(buf[:n]) != "out" {
		t.Errorf("Pop() = %q, %v", buf[:n], err)
	}
}

// TestErrorLayer verifies the error layer refuses both directions.
func TestErrorLayer(t *testing.T) {
	tr := New(Config{})
	tr.SetErrorLayer()

	if _, err := tr.Push([]byte("x")); !errors.Is(err, ErrEOS) {
		t.Errorf("Push() error = %v, want ErrEOS", err)
	}
	if _, err := tr.Pop(make([]byte, 8)); !errors.Is(err, ErrEOS) {
		t.Errorf("Pop() error = %v, want ErrEOS", err)
	}
}

// TestErrorf verifies the first condition sticks and events fire.
func TestErrorf(t *testing.T) {
	collector := NewCollector()
	tr := New(Config{Collector: collector})

	tr.Errorf(ConditionFramingError, "broken: %d", 7)
	tr.Errorf("amqp:connection:forced", "second")

	c := tr.Condition()
	if c == nil {
		t.Fatal("Condition() = nil")
	}
	if c.Name != ConditionFramingError {
		t.Errorf("condition name = %q", c.Name)
	}
	if c.Description != "broken: 7" {
		t.Errorf("condition description = %q", c.Description)
	}
	if !IsFramingError(c) {
		t.Error("IsFramingError() = false")
	}
	if collector.Len() == 0 {
		t.Error("expected events on the collector")
	}
}

// TestCollector verifies FIFO drain.
func TestCollector(t *testing.T) {
	c := NewCollector()
	if _, ok := c.Next(); ok {
		t.Error("Next() on empty collector reported an event")
	}
	c.Put(Event{Type: EventTransport})
	c.Put(Event{Type: EventTransport})
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	for i := 0; i < 2; i++ {
		if _, ok := c.Next(); !ok {
			t.Fatalf("Next() #%d reported no event", i)
		}
	}
	if _, ok := c.Next(); ok {
		t.Error("collector should be drained")
	}
}

// TestTransportState verifies the scalar state accessors.
func TestTransportState(t *testing.T) {
	tr := New(Config{Server: true})
	if !tr.Server() {
		t.Error("Server() = false")
	}
	if tr.ID() == "" {
		t.Error("ID() is empty")
	}
	if tr.Authenticated() {
		t.Error("new transport should not be authenticated")
	}
	tr.SetAuthenticated(true)
	if !tr.Authenticated() {
		t.Error("SetAuthenticated(true) not recorded")
	}
	tr.SetTLS(256, "CN=peer")
	ssf, subject := tr.TLS()
	if ssf != 256 || subject != "CN=peer" {
		t.Errorf("TLS() = %d, %q", ssf, subject)
	}
	tr.CloseTail()
	if !tr.TailClosed() {
		t.Error("CloseTail() not recorded")
	}
}
