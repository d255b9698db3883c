package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRedactValue(t *testing.T) {
	if got := RedactValue("sk-abcdefghijklmnop"); got != "****mnop" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := RedactValue("Bearer sk-abcdefgh"); got != "Bearer ****efgh" {
		t.Fatalf("unexpected bearer mask %q", got)
	}
	if got := RedactValue("abc"); got != "****" {
		t.Fatalf("unexpected short mask %q", got)
	}
	if got := RedactValue("  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestRedactJSONMasksCommandKeys(t *testing.T) {
	raw := json.RawMessage(`{"type":"process-text","apiKey":"sk-abcdefghijklmnop","instructions":"Fix grammar"}`)
	redacted, ok := RedactJSON(raw).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", RedactJSON(raw))
	}
	if redacted["apiKey"] != "****mnop" {
		t.Fatalf("expected masked apiKey, got %v", redacted["apiKey"])
	}
	if redacted["instructions"] != "Fix grammar" {
		t.Fatalf("expected instructions untouched")
	}
	if got := RedactJSON(json.RawMessage(`not json `)); got != "not json" {
		t.Fatalf("expected raw text fallback, got %v", got)
	}
	if RedactJSON(nil) != nil {
		t.Fatalf("expected nil for empty payload")
	}
}

func TestRedactAnyStruct(t *testing.T) {
	type report struct {
		Type   string `json:"type"`
		APIKey string `json:"apiKey"`
	}
	redacted, ok := RedactAny(report{Type: "load-saved-data", APIKey: "sk-abcdefghijklmnop"}).(map[string]any)
	if !ok {
		t.Fatalf("expected struct to be converted to map")
	}
	if redacted["apiKey"] != "****mnop" || redacted["type"] != "load-saved-data" {
		t.Fatalf("unexpected redaction %v", redacted)
	}
	if RedactAny("plain") != "plain" || RedactAny(3) != 3 {
		t.Fatalf("expected scalars to pass through")
	}
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	setup, err := NewFileLogger(dir, false)
	if err != nil || setup.Enabled {
		t.Fatalf("expected disabled logger without debug")
	}
	setup, err = NewFileLogger(dir, true)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	defer setup.Close()
	if !setup.Enabled || setup.Path != filepath.Join(dir, "logs", logFileName) {
		t.Fatalf("unexpected setup %+v", setup)
	}
	setup.Logger.Info("test.event", "k", "v")
	data, err := os.ReadFile(setup.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data[:len(data)-1], &entry); err != nil {
		t.Fatalf("expected json log line: %v", err)
	}
	if entry["msg"] != "test.event" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
