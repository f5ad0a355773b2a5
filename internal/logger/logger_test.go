package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"optionstracker/configs"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		l, err := New(configs.LogConfig{Level: tt.level, Encoding: "json"})
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.level, err)
		}
		if !l.Core().Enabled(tt.want) {
			t.Errorf("New(%q): level %v not enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q): level %v enabled, want disabled", tt.level, tt.want-1)
		}
	}
}

func TestNewConsole(t *testing.T) {
	if _, err := New(configs.LogConfig{Level: "info", Encoding: "console", Sampling: true}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}
