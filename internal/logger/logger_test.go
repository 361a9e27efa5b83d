package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithAddsScopeToEveryEntry(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	var l Logger = &loggerImpl{base: base, sugared: base.Sugar()}

	scoped := l.With(ScopeFields("u1", "student")...)
	scoped.Info("bulk pass started", Int("candidates", 3))
	l.Info("unscoped")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "u1" || fields["persona"] != "student" {
		t.Errorf("scoped entry fields = %v", fields)
	}
	if _, ok := entries[1].ContextMap()["user_id"]; ok {
		t.Error("With() leaked fields into the parent logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"verbose", nil},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }
