package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		{"prod default", "prod", "", false, zapcore.InfoLevel},
		{"local default", "local", "", false, zapcore.DebugLevel},
		{"override", "dev", "warn", false, zapcore.WarnLevel},
		{"unknown env", "staging", "", true, 0},
		{"bad level", "prod", "loud", true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLogger(tc.env, "gamerec", tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tc.enabled) {
				t.Errorf("expected %s enabled", tc.enabled)
			}
			if tc.enabled > zapcore.DebugLevel && l.Core().Enabled(tc.enabled-1) {
				t.Errorf("expected %s disabled", tc.enabled-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected nop logger, got nil")
	}

	fallback := zap.NewNop()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}
	if FromContextOr(ctx, fallback) != l {
		t.Error("expected stored logger over fallback")
	}
}
