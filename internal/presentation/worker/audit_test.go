package workerpresentation

import (
	"context"
	"sync"
	"testing"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type entry struct {
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	fields  []observability.Field
}

func newCaptureLogger() captureLogger {
	return captureLogger{mu: &sync.Mutex{}, entries: &[]entry{}}
}

func (l captureLogger) With(fields ...observability.Field) observability.Logger {
	return captureLogger{mu: l.mu, entries: l.entries, fields: append(append([]observability.Field(nil), l.fields...), fields...)}
}
func (l captureLogger) Debug(msg string, fields ...observability.Field) { l.log(msg, fields) }
func (l captureLogger) Info(msg string, fields ...observability.Field)  { l.log(msg, fields) }
func (l captureLogger) Warn(msg string, fields ...observability.Field)  { l.log(msg, fields) }
func (l captureLogger) Error(msg string, fields ...observability.Field) { l.log(msg, fields) }

func (l captureLogger) log(msg string, fields []observability.Field) {
	m := map[string]any{}
	for _, f := range append(append([]observability.Field(nil), l.fields...), fields...) {
		m[f.Key] = f.Value
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, entry{msg: msg, fields: m})
}

type subscriberFunc map[string][]domoutbox.Handler

func (s subscriberFunc) Subscribe(name string, h domoutbox.Handler) { s[name] = append(s[name], h) }

type paidEvent struct{}

func (paidEvent) EventName() string   { return "order.paid" }
func (paidEvent) AggregateID() string { return "7" }

func TestWithEventContextCarriesTraceAndAttrs(t *testing.T) {
	logger := newCaptureLogger()
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID,
	}))

	ctx = WithEventContext(ctx, logger, map[string]string{"event": "order.paid", "tenant": ""})
	logctx.From(ctx).Info("x")

	require.Len(t, *logger.entries, 1)
	f := (*logger.entries)[0].fields
	assert.Equal(t, traceID.String(), f["trace_id"])
	assert.Equal(t, "order.paid", f["event"])
	assert.NotEmpty(t, f["event_id"])
	assert.NotContains(t, f, "tenant")
}

func TestLogEvents(t *testing.T) {
	logger := newCaptureLogger()
	sub := subscriberFunc{}
	LogEvents(sub, logger, "order.paid", "order.canceled")

	require.Len(t, sub["order.paid"], 1)
	require.Len(t, sub["order.canceled"], 1)
	require.NoError(t, sub["order.paid"][0](context.Background(), paidEvent{}))

	require.Len(t, *logger.entries, 1)
	e := (*logger.entries)[0]
	assert.Equal(t, "domain_event_published", e.msg)
	assert.Equal(t, "7", e.fields["aggregate_id"])
	assert.Equal(t, componentAudit, e.fields["component"])
}
