package sasl

import (
	"testing"

	"github.com/smnsjas/go-amqp-sasl/transport"
)

// countingProvider records teardown calls.
type countingProvider struct {
	DefaultProvider
	freed int
}

func (p *countingProvider) Free(s *Sasl) { p.freed++ }

// TestNew_Idempotent verifies the context is created once per transport.
func TestNew_Idempotent(t *testing.T) {
	tr := transport.New(transport.Config{})
	a := NewWithConfig(tr, Config{LookupEnv: noEnv})
	b := New(tr)
	if a != b {
		t.Error("New() must return the existing context")
	}
	if tr.Layer() == nil {
		t.Fatal("New() must install the header layer")
	}
}

// TestNew_ConfigDefaults verifies role naming and environment seeding.
func TestNew_ConfigDefaults(t *testing.T) {
	client := newTestContext(t, false)
	if client.configName != "amqp-client" {
		t.Errorf("client config name = %q", client.configName)
	}
	server := newTestContext(t, true)
	if server.configName != "amqp-server" {
		t.Errorf("server config name = %q", server.configName)
	}

	tr := transport.New(transport.Config{})
	env := func(key string) (string, bool) {
		if key == ConfigPathEnv {
			return "/etc/sasl2", true
		}
		return "", false
	}
	s := NewWithConfig(tr, Config{LookupEnv: env})
	if s.configDir != "/etc/sasl2" {
		t.Errorf("config dir = %q, want env seed", s.configDir)
	}

	s.ConfigPath("")
	if s.configDir != "" {
		t.Error("ConfigPath(\"\") must clear the directory")
	}
	s.ConfigName("broker")
	if s.configName != "broker" {
		t.Errorf("config name = %q", s.configName)
	}
}

// TestFree_Once verifies provider teardown runs exactly once and
// credentials are dropped.
func TestFree_Once(t *testing.T) {
	p := &countingProvider{}
	tr := transport.New(transport.Config{})
	s := NewWithConfig(tr, Config{Provider: p, LookupEnv: noEnv})
	s.SetUserPassword("guest", "secret")
	s.SetImplContext(struct{}{})

	s.Free()
	s.Free()

	if p.freed != 1 {
		t.Errorf("provider freed %d times, want 1", p.freed)
	}
	if s.password != "" {
		t.Error("Free() must clear the password")
	}
	if s.ImplContext() != nil {
		t.Error("Free() must drop the provider context")
	}
}

// TestForceAnonymous_ServerIgnored verifies the short-circuit is a client
// capability only.
func TestForceAnonymous_ServerIgnored(t *testing.T) {
	server := newTestContext(t, true)
	server.AllowedMechs("ANONYMOUS")
	if server.desired != StateNone {
		t.Errorf("desired = %v, server must not take the anonymous shortcut", server.desired)
	}
}

// TestForceAnonymous_Refused verifies a refusing provider turns the
// shortcut into a permanent failure.
func TestForceAnonymous_Refused(t *testing.T) {
	tr := transport.New(transport.Config{})
	s := NewWithConfig(tr, Config{Provider: &refusingProvider{}, LookupEnv: noEnv})
	s.AllowedMechs("ANONYMOUS")
	if s.Outcome() != OutcomeSysPerm {
		t.Errorf("outcome = %v, want SysPerm", s.Outcome())
	}
	if s.desired != StateRecvedOutcome {
		t.Errorf("desired = %v, want RecvedOutcome", s.desired)
	}
}

// refusingProvider rejects every mechanism offering.
type refusingProvider struct{ DefaultProvider }

func (*refusingProvider) ProcessMechanisms(s *Sasl, mechs string) bool { return false }
