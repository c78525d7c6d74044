package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core), observability.F("component", "test"))

	l.With(observability.F("order_id", int64(7))).Warn("payment_failed",
		observability.F("error", errors.New("card declined")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "payment_failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, int64(7), ctx["order_id"])
	assert.Equal(t, "card declined", ctx["error"])
}
