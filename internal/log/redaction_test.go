package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestRedactingHandler(t *testing.T) {
	tests := []struct {
		name     string
		attrs    []any
		expected map[string]string
	}{
		{
			name: "sensitive keys are redacted",
			attrs: []any{
				slog.String("password", "secret123"),
				slog.String("initial_response", "AGd1ZXN0AHNlY3JldA=="),
				slog.String("mechanism", "PLAIN"), // safe
			},
			expected: map[string]string{
				"password":         "[REDACTED]",
				"initial_response": "[REDACTED]",
				"mechanism":        "PLAIN",
			},
		},
		{
			name: "case insensitive matching",
			attrs: []any{
				slog.String("UserPassword", "secret"),
				slog.String("CHALLENGE_DATA", "xyz"),
			},
			expected: map[string]string{
				"UserPassword":   "[REDACTED]",
				"CHALLENGE_DATA": "[REDACTED]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
			logger.Info("handshake", tt.attrs...)

			var result map[string]any
			if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
				t.Fatalf("failed to parse log output: %v", err)
			}
			for k, want := range tt.expected {
				got, ok := result[k]
				if !ok {
					t.Errorf("key %s not found in output", k)
					continue
				}
				if got != want {
					t.Errorf("key %s: got %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestRedactingHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("handshake", slog.Group("sasl",
		slog.String("password", "hidden"),
		slog.String("user", "visible"),
	))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	group, ok := result["sasl"].(map[string]any)
	if !ok {
		t.Fatalf("group missing from output: %v", result)
	}
	if group["password"] != "[REDACTED]" {
		t.Errorf("password = %v, want redacted", group["password"])
	}
	if group["user"] != "visible" {
		t.Errorf("user = %v, want visible", group["user"])
	}
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := NewRedactingHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(base).With("token", "abc", "transport", "t1")
	logger.Info("pump")

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if result["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want redacted", result["token"])
	}
	if result["transport"] != "t1" {
		t.Errorf("transport = %v", result["transport"])
	}
}
