package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level to be enabled")
	}

	child := logger.Named("client").ForRequest("abc")
	if child == nil || child.Logger == nil {
		t.Fatal("Expected child logger")
	}
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	if _, err := NewLogger(Config{Format: "xml"}); err == nil {
		t.Error("Expected error for unknown encoding")
	}
}

func TestNewLoggerFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "true")
	t.Setenv("LOG_LEVEL", "warn")

	logger, err := NewLoggerFromEnv()
	if err != nil {
		t.Fatalf("NewLoggerFromEnv failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Expected info to be disabled at warn level")
	}
}

func TestGlobal(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	logger, _ := NewLogger(DefaultConfig())
	SetGlobal(logger)
	if L() != logger {
		t.Error("Expected L() to return the global logger")
	}

	SetGlobal(nil)
	if L() == nil {
		t.Error("Expected SetGlobal(nil) to install a no-op logger")
	}
}

func TestFromConfig_FillsDefaults(t *testing.T) {
	logger, err := FromConfig(Config{Development: true})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Expected debug level for development config")
	}

	logger, err = FromConfig(Config{Level: "error"})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("Expected warn to be disabled at error level")
	}
}
