package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/quantfold/riskengine/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"INFO", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSetsGlobalLevel(t *testing.T) {
	cfg := &config.Config{Env: "development", LogLevel: "warn", LogFormat: "json"}
	_ = New(cfg)

	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Errorf("global level = %v, want %v", got, zerolog.WarnLevel)
	}
}
