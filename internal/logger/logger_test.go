package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"dividend-projection-lab/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"nonsense", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(config.LogConfig{Level: tt.level, Encoding: "json"})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !log.Core().Enabled(tt.want) {
				t.Errorf("level %s should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && log.Core().Enabled(tt.want-1) {
				t.Errorf("level %s should be disabled", tt.want-1)
			}
		})
	}
}

func TestNew_Encodings(t *testing.T) {
	for _, enc := range []string{"json", "console", ""} {
		log, err := New(config.LogConfig{Level: "info", Encoding: enc, Sampling: true})
		if err != nil {
			t.Fatalf("encoding %q: New failed: %v", enc, err)
		}
		log.Info("logger ready")
	}

	if _, err := New(config.LogConfig{Encoding: "xml"}); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
