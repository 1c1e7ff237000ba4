package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	tests := []struct {
		name      string
		level     string
		format    string
		wantErr   bool
		wantLevel zapcore.Level
	}{
		{name: "defaults", wantLevel: zapcore.InfoLevel},
		{name: "debug console", level: "debug", format: FormatConsole, wantLevel: zapcore.DebugLevel},
		{name: "warn json", level: "warn", format: FormatJSON, wantLevel: zapcore.WarnLevel},
		{name: "unknown level", level: "loud", wantErr: true},
		{name: "unknown format", level: "info", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			core := Logger().Desugar().Core()
			if !core.Enabled(tt.wantLevel) {
				t.Errorf("level %v is disabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && core.Enabled(tt.wantLevel-1) {
				t.Errorf("level %v is enabled", tt.wantLevel-1)
			}
		})
	}
}
