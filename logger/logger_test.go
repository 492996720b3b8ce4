package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: "json", Output: "stdout"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "debug", Format: "json"}, "apiclient")

	l.WithComponent("dispatch").Debug("dispatch ok", Fields(FieldEndpoint, "/users", FieldStatusCode, 200))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "dispatch ok" {
		t.Errorf("expected message 'dispatch ok', got %v", entry["message"])
	}
	if entry[FieldService] != "apiclient" {
		t.Errorf("expected service field, got %v", entry[FieldService])
	}
	if entry[FieldComponent] != "dispatch" {
		t.Errorf("expected component field, got %v", entry[FieldComponent])
	}
	if entry[FieldEndpoint] != "/users" {
		t.Errorf("expected endpoint field, got %v", entry[FieldEndpoint])
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "warn", Format: "json"}, "svc")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestNewWithWriter_ConsoleNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "info", Format: "console", NoColor: true}, "apiclient")
	l.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "[API][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("discarded")
}

func TestWithContext_CallID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "debug", Format: "json"}, "svc")

	ctx := ContextWithCallID(context.Background(), "call-123")
	if got := CallIDFromContext(ctx); got != "call-123" {
		t.Fatalf("expected call-123, got %q", got)
	}

	l.WithContext(ctx).Info("with call")
	if !strings.Contains(buf.String(), `"call_id":"call-123"`) {
		t.Errorf("expected call_id in output, got %q", buf.String())
	}
}

func TestCallIDFromContext_Missing(t *testing.T) {
	if got := CallIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty call id, got %q", got)
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, &Config{Level: "debug", Format: "json"}, "svc")

	l.WithFields(map[string]interface{}{"key": "value"}).WithError(fmt.Errorf("boom")).Error("failed")

	out := buf.String()
	if !strings.Contains(out, `"key":"value"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("expected key and error fields, got %q", out)
	}
}

func TestInitAndGlobal(t *testing.T) {
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}

	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"disabled level", Config{Level: "disabled", Format: "json"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)
	t.Cleanup(func() { Unregister("my-component") })

	if got := Get("my-component"); got != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGetUnregistered(t *testing.T) {
	if got := Get("unregistered-component"); got == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"op", "save", "id", 42}, map[string]interface{}{"op": "save", "id": 42}},
		{"odd number of args", []interface{}{"op", "save", "trailing"}, map[string]interface{}{"op": "save"}},
		{"empty", []interface{}{}, map[string]interface{}{}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Errorf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("dispatch", fmt.Errorf("something broke"))
	if fields[FieldOperation] != "dispatch" {
		t.Errorf("expected operation 'dispatch', got %v", fields[FieldOperation])
	}
	if fields[FieldError] != "something broke" {
		t.Errorf("expected error 'something broke', got %v", fields[FieldError])
	}
}

func TestMergeWithErrorAndDuration(t *testing.T) {
	fields := MergeWithError(map[string]interface{}{"op": "save"}, fmt.Errorf("test error"))
	if fields[FieldError] != "test error" || fields["op"] != "save" {
		t.Errorf("unexpected fields %v", fields)
	}
	if got := MergeWithError(nil, fmt.Errorf("x")); got[FieldError] != "x" {
		t.Errorf("expected error field from nil map, got %v", got)
	}

	fields = MergeWithDuration(nil, 200*time.Millisecond)
	if fields[FieldDuration] != int64(200) {
		t.Errorf("expected duration 200, got %v", fields[FieldDuration])
	}
}

func TestNewWithStderrOutput(t *testing.T) {
	l := New(&Config{Level: "info", Format: "json", Output: "stderr"}, "test")
	if l == nil {
		t.Fatal("expected non-nil logger with stderr output")
	}
	if outputWriter("stderr") != os.Stderr {
		t.Error("expected stderr writer")
	}
}
