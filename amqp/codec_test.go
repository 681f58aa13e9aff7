package amqp

import (
	"bytes"
	"errors"
	"testing"
)

// TestFrameRoundTrip verifies the frame envelope survives encode/parse.
func TestFrameRoundTrip(t *testing.T) {
	body := EncodeChallenge([]byte("abc"))
	wire := AppendFrame(nil, FrameTypeSASL, body)

	got, frameType, n, err := ParseFrame(wire)
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}
	if n != len(wire) {
		t.Errorf("consumed = %d, want %d", n, len(wire))
	}
	if frameType != FrameTypeSASL {
		t.Errorf("frame type = %d, want %d", frameType, FrameTypeSASL)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("body = %x, want %x", got, body)
	}
}

// TestParseFrame_Incomplete verifies that partial frames request more
// bytes instead of failing.
func TestParseFrame_Incomplete(t *testing.T) {
	wire := AppendFrame(nil, FrameTypeSASL, EncodeChallenge([]byte("abcdef")))

	for i := 0; i < len(wire); i++ {
		_, _, n, err := ParseFrame(wire[:i])
		if err != nil {
			t.Fatalf("ParseFrame(%d bytes) error = %v", i, err)
		}
		if n != 0 {
			t.Fatalf("ParseFrame(%d bytes) consumed %d, want 0", i, n)
		}
	}
}

// TestParseFrame_Malformed verifies size and doff validation.
func TestParseFrame_Malformed(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"size below minimum", []byte{0, 0, 0, 4, 2, 1, 0, 0}},
		{"doff below minimum", []byte{0, 0, 0, 8, 1, 1, 0, 0}},
		{"doff beyond frame", []byte{0, 0, 0, 8, 3, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ParseFrame(tt.wire); !errors.Is(err, ErrMalformed) {
				t.Errorf("ParseFrame() error = %v, want ErrMalformed", err)
			}
		})
	}
}

// TestMechanismsRoundTrip verifies that an encoded mechanism list decodes
// to the same set.
func TestMechanismsRoundTrip(t *testing.T) {
	tests := [][]string{
		{},
		{"ANONYMOUS"},
		{"EXTERNAL", "ANONYMOUS", "PLAIN"},
		{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O", "P"},
	}
	for _, mechs := range tests {
		body := EncodeMechanisms(mechs)
		code, err := DescriptorOf(body)
		if err != nil {
			t.Fatalf("DescriptorOf() error = %v", err)
		}
		if code != DescMechanisms {
			t.Fatalf("descriptor = %#x, want %#x", code, DescMechanisms)
		}
		got, err := ScanMechanisms(body)
		if err != nil {
			t.Fatalf("ScanMechanisms(%v) error = %v", mechs, err)
		}
		if len(got) != len(mechs) {
			t.Fatalf("ScanMechanisms(%v) = %v", mechs, got)
		}
		for i := range mechs {
			if got[i] != mechs[i] {
				t.Errorf("mech[%d] = %q, want %q", i, got[i], mechs[i])
			}
		}
	}
}

// TestScanMechanisms_LoneSymbol verifies a peer may send one mechanism
// without the array wrapper.
func TestScanMechanisms_LoneSymbol(t *testing.T) {
	body := []byte{
		0x00, 0x53, 0x40, // descriptor
		0xc0, 12, 1, // list8
		0xa3, 9, 'A', 'N', 'O', 'N', 'Y', 'M', 'O', 'U', 'S',
	}
	got, err := ScanMechanisms(body)
	if err != nil {
		t.Fatalf("ScanMechanisms() error = %v", err)
	}
	if len(got) != 1 || got[0] != "ANONYMOUS" {
		t.Errorf("ScanMechanisms() = %v, want [ANONYMOUS]", got)
	}
}

// TestInitRoundTrip verifies the init body with and without an initial
// response.
func TestInitRoundTrip(t *testing.T) {
	tests := []struct {
		mech    string
		initial []byte
	}{
		{"ANONYMOUS", []byte{}},
		{"PLAIN", []byte("\x00guest\x00secret")},
	}
	for _, tt := range tests {
		body := EncodeInit(tt.mech, tt.initial, "")
		mech, initial, err := ScanInit(body)
		if err != nil {
			t.Fatalf("ScanInit() error = %v", err)
		}
		if mech != tt.mech {
			t.Errorf("mech = %q, want %q", mech, tt.mech)
		}
		if !bytes.Equal(initial, tt.initial) {
			t.Errorf("initial = %x, want %x", initial, tt.initial)
		}
	}
}

// TestInitHostname verifies the optional hostname field is tolerated.
func TestInitHostname(t *testing.T) {
	body := EncodeInit("PLAIN", []byte("ir"), "broker.example.com")
	mech, initial, err := ScanInit(body)
	if err != nil {
		t.Fatalf("ScanInit() error = %v", err)
	}
	if mech != "PLAIN" || !bytes.Equal(initial, []byte("ir")) {
		t.Errorf("ScanInit() = %q, %q", mech, initial)
	}
}

// TestOutcomeRoundTrip verifies every outcome code survives the codec.
func TestOutcomeRoundTrip(t *testing.T) {
	for code := uint8(0); code <= 4; code++ {
		body := EncodeOutcome(code, nil)
		got, additional, err := ScanOutcome(body)
		if err != nil {
			t.Fatalf("ScanOutcome(%d) error = %v", code, err)
		}
		if got != code {
			t.Errorf("code = %d, want %d", got, code)
		}
		if additional != nil {
			t.Errorf("additional = %x, want nil", additional)
		}
	}

	body := EncodeOutcome(0, []byte("extra"))
	_, additional, err := ScanOutcome(body)
	if err != nil {
		t.Fatalf("ScanOutcome() error = %v", err)
	}
	if !bytes.Equal(additional, []byte("extra")) {
		t.Errorf("additional = %q, want %q", additional, "extra")
	}
}

// TestChallengeResponseBinary verifies the single-binary bodies and that
// large payloads switch to the wide encodings.
func TestChallengeResponseBinary(t *testing.T) {
	big := bytes.Repeat([]byte{0xab}, 300)
	for _, data := range [][]byte{nil, []byte{}, []byte("tok"), big} {
		for _, body := range [][]byte{EncodeChallenge(data), EncodeResponse(data)} {
			got, err := ScanBinary(body)
			if err != nil {
				t.Fatalf("ScanBinary() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("ScanBinary() = %d bytes, want %d", len(got), len(data))
			}
		}
	}
}

// TestScanTruncated verifies truncated bodies report ErrMalformed rather
// than panic or misread.
func TestScanTruncated(t *testing.T) {
	body := EncodeInit("PLAIN", []byte("\x00u\x00p"), "")
	for i := 1; i < len(body); i++ {
		if _, _, err := ScanInit(body[:i]); err == nil {
			t.Errorf("ScanInit(%d bytes) expected error", i)
		}
	}
}
