package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewFallsBackToInfo(t *testing.T) {
	logger, err := New("nonsense", "json")
	if err != nil {
		t.Fatal(err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be disabled at the fallback level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be enabled")
	}
}

func TestNewDebugConsole(t *testing.T) {
	logger, err := New("DEBUG", "console")
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("nil logger")
	}
}
