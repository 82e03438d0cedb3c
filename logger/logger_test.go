package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "clinicq", buf)
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	l.Info("room created", map[string]interface{}{"tenant": "T1"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "room created" {
		t.Errorf("expected message 'room created', got %v", entry["message"])
	}
	if entry["tenant"] != "T1" {
		t.Errorf("expected tenant 'T1', got %v", entry["tenant"])
	}
	if entry["service"] != "clinicq" {
		t.Errorf("expected service 'clinicq', got %v", entry["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn message, got %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "nonsense")

	l.Debug("hidden")
	l.Info("visible")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug should be filtered at the fallback info level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Error("expected info message at the fallback level")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("sse")

	l.Info("hello")
	if !strings.Contains(buf.String(), `"component":"sse"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
	if l.service != "clinicq" {
		t.Errorf("service should be preserved, got %q", l.service)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")

	jsonLogger(&buf, "info").WithContext(ctx).Info("with request")
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("expected request_id field, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{"room_id": "r1"}).
		WithError(fmt.Errorf("boom"))

	l.Error("failed")
	out := buf.String()
	if !strings.Contains(out, `"room_id":"r1"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("expected room_id and error fields, got %q", out)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "clinicq", &buf)

	l.Info("listening")
	out := buf.String()
	if !strings.Contains(out, "[CLI][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "listening") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestNop(t *testing.T) {
	Nop().Error("discarded")
}

func TestGlobalLogger(t *testing.T) {
	Init(Config{Level: "info", Format: "json", ServiceName: "clinicq"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger after Init")
	}

	custom := NewDefault("custom")
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected SetGlobalLogger to replace the global logger")
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Error("expected a derived logger for an unregistered name")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
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
		{"valid json", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
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

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"op", "save", "id", 42}, map[string]interface{}{"op": "save", "id": 42}},
		{"odd number of args", []interface{}{"op", "save", "trailing"}, map[string]interface{}{"op": "save"}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Fatalf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("create-room", fmt.Errorf("broken"))
	if ef[FieldOperation] != "create-room" || ef[FieldError] != "broken" {
		t.Errorf("unexpected error fields: %v", ef)
	}

	df := DurationFields("query", 150*time.Millisecond)
	if df[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", df[FieldDuration])
	}
}
