package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
)

const componentAudit = "event_audit"

// LogEvents subscribes a handler that writes one structured line per published domain event.
func LogEvents(sub domoutbox.Subscriber, base observability.Logger, names ...string) {
	if base == nil {
		base = observability.NopLogger()
	}
	base = base.With(observability.F("component", componentAudit))

	for _, name := range names {
		sub.Subscribe(name, func(ctx context.Context, e domoutbox.Event) error {
			attrs := map[string]string{"event": e.EventName()}
			if k, ok := e.(domoutbox.Keyed); ok {
				attrs["aggregate_id"] = k.AggregateID()
			}
			ctx = WithEventContext(ctx, base, attrs)
			logctx.FromOr(ctx, base).Info("domain_event_published")
			return nil
		})
	}
}
