// internal/common/logger/logger_test.go
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

func TestZapAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"component": "submission"})

	log.Debug("dropped", nil)
	log.Info("project created", map[string]interface{}{"projectId": "p-1", "riskScore": 0.62})
	log.WithError(errors.New("boom")).Error("index failed", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	created := entries[0].ContextMap()
	assert.Equal(t, "project created", entries[0].Message)
	assert.Equal(t, "submission", created["component"])
	assert.Equal(t, "p-1", created["projectId"])
	assert.Equal(t, 0.62, created["riskScore"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := New("loud", "json")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	assert.True(t, New("debug", "console").Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.WithFields(map[string]interface{}{"a": 1}).WithError(errors.New("x")).Warn("ignored", nil)
	})
}
