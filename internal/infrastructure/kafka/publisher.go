package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// Envelope wraps every domain event put on the topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes domain events to a single topic, keyed by aggregate so one order's events stay ordered.
// Writes are synchronous; the caller bounds them with its context.
type Publisher struct {
	w        messageWriter
	producer string
	now      func() time.Time
}

func NewPublisher(brokers []string, topic, producer string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}, producer)
}

func newPublisher(w messageWriter, producer string) *Publisher {
	return &Publisher{w: w, producer: producer, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	env, key, err := p.envelope(ctx, e)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka: encode envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", env.EventType, err)
	}
	return nil
}

func (p *Publisher) envelope(ctx context.Context, e domoutbox.Event) (Envelope, []byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("kafka: encode %s: %w", e.EventName(), err)
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    e.EventName(),
		EventVersion: 1,
		OccurredAt:   p.now().UTC(),
		Producer:     p.producer,
		Payload:      payload,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	var key []byte
	if k, ok := e.(domoutbox.Keyed); ok {
		env.CorrelationID = k.AggregateID()
		key = []byte(env.CorrelationID)
	}
	return env, key, nil
}

func (p *Publisher) Close() error { return p.w.Close() }
