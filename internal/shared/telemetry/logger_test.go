package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	write(&buf, "warn", "notification.failed", map[string]any{
		"msg":   "spoofed",
		"error": errors.New("smtp down"),
		"kind":  "signature_requested",
	})

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["msg"] != "notification.failed" {
		t.Fatalf("expected msg to be preserved, got %v", payload["msg"])
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", payload["level"])
	}
	if payload["error"] != "smtp down" {
		t.Fatalf("expected error string, got %v", payload["error"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}
