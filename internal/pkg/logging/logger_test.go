package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevelAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "service.log")

	logger, err := NewLogger(Options{Service: "minishop-payments", Env: "test", Level: "warn", File: path})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger.Warn("webhook_ledger_unavailable")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(b)
	assert.True(t, strings.Contains(line, `"msg":"webhook_ledger_unavailable"`), line)
	assert.True(t, strings.Contains(line, `"service":"minishop-payments"`), line)
	assert.True(t, strings.Contains(line, `"level":"warn"`), line)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(Options{Service: "svc", Level: "loud"})
	assert.Error(t, err)
}

func TestWithTraceDefaultsUnknownIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	WithTrace(zap.New(core), "", SystemSpanID).Info("boot")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "unknown", fields["trace_id"])
	assert.Equal(t, SystemSpanID, fields["span_id"])
}
