package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishWrapsEventInEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "minishop-payments")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	evt := order.NewOrderCanceledEvent(42, "evt_9", "payment_failed")
	require.NoError(t, p.Publish(ctx, evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "order.canceled", env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, fixed, env.OccurredAt)
	assert.Equal(t, "minishop-payments", env.Producer)
	assert.Equal(t, "42", env.CorrelationID)
	assert.Equal(t, traceID.String(), env.TraceID)
	assert.NotEmpty(t, env.EventID)

	var payload order.OrderCanceledEvent
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, int64(42), payload.OrderID)
	assert.Equal(t, "payment_failed", payload.Reason)
}

func TestPublishReturnsWriteError(t *testing.T) {
	p := newPublisher(&fakeWriter{err: errors.New("leader not available")}, "svc")
	err := p.Publish(context.Background(), order.NewOrderCanceledEvent(1, "evt", "expired"))
	assert.ErrorContains(t, err, "kafka: write order.canceled")
}
