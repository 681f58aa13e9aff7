package sasl

import (
	"fmt"
	"strings"
	"testing"
)

// TestWordInList covers the allow-list matching rules.
func TestWordInList(t *testing.T) {
	tests := []struct {
		list, word string
		want       bool
	}{
		{"PLAIN", "PLAIN", true},
		{"PLAIN", "plain", true},
		{"ANONYMOUS PLAIN EXTERNAL", "PLAIN", true},
		{"ANONYMOUS PLAIN", "EXTERNAL", false},
		{"PLAINX", "PLAIN", false},
		{"PLAIN", "PLAINX", false},
		{"", "PLAIN", false},
		{"PLAIN EXTERNAL", "PLAIN EXTERNAL", false}, // embedded space never matches
		{"  PLAIN   EXTERNAL ", "external", true},
	}
	for _, tt := range tests {
		if got := wordInList(tt.list, tt.word); got != tt.want {
			t.Errorf("wordInList(%q, %q) = %v, want %v", tt.list, tt.word, got, tt.want)
		}
	}
}

// TestMechIncluded_Unrestricted verifies the absent allow-list admits
// everything.
func TestMechIncluded_Unrestricted(t *testing.T) {
	s := newTestContext(t, false)
	for _, mech := range []string{"PLAIN", "GSSAPI", "X-ANYTHING"} {
		if !s.mechIncluded(mech) {
			t.Errorf("mechIncluded(%q) = false without an allow-list", mech)
		}
	}

	s.AllowedMechs("PLAIN")
	if s.mechIncluded("GSSAPI") {
		t.Error("mechIncluded(GSSAPI) = true with allow-list PLAIN")
	}
	s.AllowedMechs("")
	if !s.mechIncluded("GSSAPI") {
		t.Error("clearing the allow-list must restore universal admission")
	}
}

// TestSplitMechs verifies tokenizing, filtering and the fail-closed cap.
func TestSplitMechs(t *testing.T) {
	s := newTestContext(t, true)

	got := s.splitMechs("  ANONYMOUS  PLAIN   EXTERNAL ")
	if strings.Join(got, ",") != "ANONYMOUS,PLAIN,EXTERNAL" {
		t.Errorf("splitMechs() = %v", got)
	}

	s.AllowedMechs("plain external")
	got = s.splitMechs("ANONYMOUS PLAIN EXTERNAL")
	if strings.Join(got, ",") != "PLAIN,EXTERNAL" {
		t.Errorf("filtered splitMechs() = %v", got)
	}

	s.AllowedMechs("")
	var many []string
	for i := 0; i < 24; i++ {
		many = append(many, fmt.Sprintf("MECH-%d", i))
	}
	got = s.splitMechs(strings.Join(many, " "))
	if len(got) != maxMechs {
		t.Errorf("splitMechs() kept %d mechanisms, want cap %d", len(got), maxMechs)
	}
	for i, mech := range got {
		if mech != many[i] {
			t.Errorf("mech[%d] = %q, want %q (surplus must drop from the tail)", i, mech, many[i])
		}
	}
}
