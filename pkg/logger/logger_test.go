package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{Logger: zap.New(core)}, logs
}

func TestNewParsesLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		log, err := New(level)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}

func TestWithComponentScopesEntries(t *testing.T) {
	log, logs := observedLogger()

	log.WithComponent("contact").Info("pipeline started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "contact", entries[0].ContextMap()["component"])
}

func TestWithFieldsAccumulate(t *testing.T) {
	log, logs := observedLogger()

	log.WithComponent("analytics").
		WithField("days", 30).
		WithFields(map[string]interface{}{"view": "range"}).
		Info("window loaded")

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "analytics", ctx["component"])
	assert.Equal(t, int64(30), ctx["days"])
	assert.Equal(t, "range", ctx["view"])
}
