package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New()
	l.SetOutput(buf)
	l.SetIncludeCaller(false)
	return l
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetLevel(WARN)

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("Expected debug/info suppressed at WARN level, got %q", out)
	}
	if !strings.Contains(out, "warn msg") {
		t.Errorf("Expected warn message, got %q", out)
	}
}

func TestJSONEntryShape(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetService("voicemart")

	l.WithField("request_id", "req-1").Error("transcription failed", errors.New("boom"))

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON entry, got %q: %v", buf.String(), err)
	}
	if entry.Level != "ERROR" {
		t.Errorf("Expected level ERROR, got %s", entry.Level)
	}
	if entry.Message != "transcription failed" {
		t.Errorf("Unexpected message: %q", entry.Message)
	}
	if entry.Error != "boom" {
		t.Errorf("Expected error field, got %q", entry.Error)
	}
	if entry.Service != "voicemart" {
		t.Errorf("Expected service stamped, got %q", entry.Service)
	}
	if entry.Fields["request_id"] != "req-1" {
		t.Errorf("Expected request_id field, got %v", entry.Fields)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf)
	child := parent.WithField("component", "nlu")

	child.Info("from child")
	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if entry.Fields["component"] != "nlu" {
		t.Errorf("Expected child field, got %v", entry.Fields)
	}

	buf.Reset()
	parent.Info("from parent")
	entry = Entry{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if _, have := entry.Fields["component"]; have {
		t.Error("Expected parent logger unaffected by WithField")
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.SetJSONFormat(false)
	l.SetService("api")

	l.Infof("processed %d queries", 3)
	out := buf.String()
	if !strings.Contains(out, "processed 3 queries") || !strings.Contains(out, "[api]") {
		t.Errorf("Unexpected text output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"info", INFO},
		{"nonsense", INFO},
		{"", INFO},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGetLoggerSingleton(t *testing.T) {
	if GetLogger() != GetLogger() {
		t.Error("Expected GetLogger to return the same instance")
	}
}
