package application

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
)

const (
	publishPeer    = "event_bus"
	publishTimeout = 300 * time.Millisecond
)

// Publisher publishes domain events best-effort: a bounded wait, RED metrics, and the error handed back
// for the caller to log. It is safe to use with a nil underlying publisher.
type Publisher struct {
	pub          domoutbox.Publisher
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewPublisher(pub domoutbox.Publisher, tel observability.Observability) *Publisher {
	metrics := observability.NopMetrics()
	if tel != nil {
		metrics = tel.Metrics()
	}
	return &Publisher{
		pub:          pub,
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	if p == nil || p.pub == nil || e == nil {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	outcome := OutcomeSuccess
	err := p.pub.Publish(pubCtx, e)
	if err != nil {
		outcome = OutcomeError
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}

	p.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", outcome),
	)
	p.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)
	return err
}
