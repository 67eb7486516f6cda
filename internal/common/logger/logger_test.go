package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"searchId": "s-1"}).Info("branch emitted", map[string]interface{}{
		"hotelKey": "118060",
	})
	log.WithError(errors.New("boom")).Warn("delivery failed", nil)
	log.Debug("cache hit", map[string]interface{}{"err": errors.New("ignored")})

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "branch emitted", entries[0].Message)
	assert.Equal(t, "s-1", first["searchId"])
	assert.Equal(t, "118060", first["hotelKey"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, "ignored", entries[2].ContextMap()["err"])
}

func TestMapToZapFields_Empty(t *testing.T) {
	assert.Nil(t, mapToZapFields(nil))
	assert.Nil(t, mapToZapFields(map[string]interface{}{}))
}

func TestNewWithOptions(t *testing.T) {
	l := NewWithOptions(Options{Level: "warn", Format: "json", Output: "stderr", Service: "package-provider"})
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	console := New("debug", "console")
	assert.True(t, console.Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().Info("discarded", map[string]interface{}{"k": "v"})
	NewTestLogger(t).WithFields(map[string]interface{}{"k": "v"}).Error("visible with -v", nil)
}
