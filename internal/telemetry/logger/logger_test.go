package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("parse log line %q: %v", line, err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default config", DefaultConfig()},
		{"console format", Config{Level: "debug", Format: "console", Output: &bytes.Buffer{}}},
		{"caller", Config{Level: "info", AddCaller: true, Output: &bytes.Buffer{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"debug", l.Debug},
		{"info", l.Info},
		{"warn", l.Warn},
		{"error", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("test message", "component", "store")

			entry := decodeLine(t, buf)
			if entry["msg"] != "test message" {
				t.Errorf("msg = %v, want 'test message'", entry["msg"])
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["component"] != "store" {
				t.Errorf("component = %v, want store", entry["component"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.With("backend", "badger").Info("opened")

	entry := decodeLine(t, buf)
	if entry["backend"] != "badger" {
		t.Errorf("backend = %v, want badger", entry["backend"])
	}
}

func TestLogger_ErrorValue(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.Warn("put failed", "error", errors.New("disk full"))

	entry := decodeLine(t, buf)
	if entry["error"] != "disk full" {
		t.Errorf("error = %v, want 'disk full'", entry["error"])
	}
}

func TestLogger_BadKey(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.Info("odd args", "user_id")

	entry := decodeLine(t, buf)
	if entry["!BADKEY"] != "user_id" {
		t.Errorf("!BADKEY = %v, want user_id", entry["!BADKEY"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("Debug/Info messages should be filtered when level is warn")
	}

	l.Warn("warn message")
	if buf.Len() == 0 {
		t.Error("Warn message should be logged")
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, "error")

	l.Info("info message")
	if buf.Len() > 0 {
		t.Error("Info should be filtered at error level")
	}

	SetLevel("debug")
	defer SetLevel("info")

	l.Info("info message after level change")
	if buf.Len() == 0 {
		t.Error("Info should be logged after level changed to debug")
	}
	if level := GetLevel(); level != "debug" {
		t.Errorf("GetLevel() = %q, want %q", level, "debug")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"ERROR", "error"},
		{"invalid", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pwdless.log")

	l, err := New(Config{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Info("written to file", "user_id", "u1")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, buf := newBufferLogger(t, "info")
	SetDefault(l)
	SetDefault(nil)

	Info("via package helper")
	if !strings.Contains(buf.String(), "via package helper") {
		t.Error("package-level Info should use the default logger")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped", "k", "v")
	l.With("a", 1).WithContext(WithOperationID(t.Context(), "x")).Info("dropped")
}
