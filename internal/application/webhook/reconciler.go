package webhook

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	webhookService    = "webhook-reconciler"
	useCaseReconcile  = "webhook.reconcile"
	reasonIntentFail  = "payment_failed"
	reasonSessionDead = "checkout_expired"
)

// Ledger remembers verified event ids. Record reports true the first time an id is seen.
type Ledger interface {
	Record(ctx context.Context, eventID string) (bool, error)
}

type Disposition string

const (
	// DispositionProcessed: the event drove an order/payment transition.
	DispositionProcessed Disposition = "processed"
	// DispositionAcknowledged: a known lifecycle event that needs no state change.
	DispositionAcknowledged Disposition = "acknowledged"
	// DispositionUnhandled: an event type this service does not subscribe to.
	DispositionUnhandled Disposition = "unhandled"
)

type Result struct {
	Disposition     Disposition `json:"-"`
	EventID         string      `json:"eventId"`
	EventType       string      `json:"eventType"`
	OrderID         int64       `json:"orderId,omitempty"`
	OrderStatus     string      `json:"orderStatus,omitempty"`
	Transition      string      `json:"transition,omitempty"`
	PaymentsUpdated int64       `json:"paymentsUpdated"`
	Duplicate       bool        `json:"duplicate,omitempty"`
}

// settlement is the transition one event type applies.
type settlement struct {
	order    domorder.Status
	payment  dompay.Status
	chargeID func(dompay.Object) string
	reason   string
}

// Reconciler applies verified processor events to orders and payments. Transitions are
// settle a PENDING order once, never flip a terminal order and only touch PENDING payments,
// so redelivery is harmless.
type Reconciler struct {
	orders    domorder.Repository
	payments  dompay.Repository
	ledger    Ledger
	publisher *application.Publisher
	now       func() time.Time
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	evtCounter   observability.Counter // webhook_events_total{type,outcome}
}

// NewReconciler wires the reconciler. ledger and publisher may be nil.
func NewReconciler(
	orders domorder.Repository,
	payments dompay.Repository,
	ledger Ledger,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Reconciler {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Reconciler{
		orders:       orders,
		payments:     payments,
		ledger:       ledger,
		publisher:    application.NewPublisher(publisher, tel),
		now:          time.Now,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", webhookService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		evtCounter:   metrics.Counter(observability.MWebhookEvents),
	}
}

var _ application.UseCase[*dompay.Event, *Result] = (*Reconciler)(nil)

// Execute dispatches one verified event. Failures, panics included, come back as an error next to a
// partially filled Result so the caller can still acknowledge receipt.
func (r *Reconciler) Execute(ctx context.Context, evt *dompay.Event) (res *Result, err error) {
	if evt == nil {
		return nil, fmt.Errorf("webhook: nil event")
	}
	res = &Result{EventID: evt.ID, EventType: string(evt.Type)}

	logger := logctx.FromOr(ctx, r.log).With(
		observability.F("use_case", useCaseReconcile),
		observability.F("event_id", evt.ID),
		observability.F("event_type", string(evt.Type)),
	)
	ctx = logctx.With(ctx, logger)

	ctx, span := r.tel.Tracer().Start(ctx, application.SpanPrefix+"ReconcileWebhook",
		attribute.String("use_case", useCaseReconcile),
		attribute.String("webhook.event_id", evt.ID),
		attribute.String("webhook.event_type", string(evt.Type)),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, "OK"

	defer func() {
		if p := recover(); p != nil {
			logger.Error("webhook_handler_panic",
				observability.F("panic", p),
				observability.F("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("webhook: handler panic: %v", p)
			outcome, statusText = application.OutcomeError, "HANDLER_PANIC"
		}
		if err != nil && outcome != application.OutcomeError {
			outcome = application.OutcomeError
		}

		lat := time.Since(start).Seconds()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.SetAttributes(attribute.String("webhook.disposition", string(res.Disposition)))
		span.End()

		r.reqCounter.Add(1, observability.L("use_case", useCaseReconcile), observability.L("outcome", outcome))
		r.durHistogram.Observe(lat, observability.L("use_case", useCaseReconcile))
		r.evtCounter.Add(1, observability.L("type", typeLabel(evt.Type)), observability.L("outcome", outcome))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("disposition", string(res.Disposition)),
			observability.F("latency_seconds", lat),
		}
		if res.OrderID != 0 {
			fields = append(fields,
				observability.F("order_id", res.OrderID),
				observability.F("transition", res.Transition),
				observability.F("payments_updated", res.PaymentsUpdated),
			)
		}
		if res.Duplicate {
			fields = append(fields, observability.F("duplicate", true))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	r.checkRedelivery(ctx, logger, evt, res)

	var s settlement
	switch evt.Type {
	case dompay.EventIntentSucceeded:
		s = settlement{order: domorder.StatusPaid, payment: dompay.StatusSucceeded,
			chargeID: func(o dompay.Object) string { return o.LatestCharge }}
	case dompay.EventIntentFailed:
		s = settlement{order: domorder.StatusCanceled, payment: dompay.StatusFailed, reason: reasonIntentFail}
	case dompay.EventSessionCompleted:
		s = settlement{order: domorder.StatusPaid, payment: dompay.StatusSucceeded,
			chargeID: func(o dompay.Object) string { return o.PaymentIntent }}
	case dompay.EventSessionExpired:
		s = settlement{order: domorder.StatusCanceled, payment: dompay.StatusFailed, reason: reasonSessionDead}
	case dompay.EventIntentCreated, dompay.EventSessionCreated:
		res.Disposition = DispositionAcknowledged
		statusText = "ACKNOWLEDGED"
		return res, nil
	default:
		res.Disposition = DispositionUnhandled
		statusText = "UNHANDLED"
		logger.Info("webhook_event_unhandled")
		return res, nil
	}

	res.Disposition = DispositionProcessed
	if err := r.settle(ctx, logger, evt, s, res); err != nil {
		outcome, statusText = application.OutcomeError, failureStatus(err)
		return res, err
	}
	return res, nil
}

// settle writes the order status, then resolves every still-pending payment of that order.
func (r *Reconciler) settle(ctx context.Context, logger observability.Logger, evt *dompay.Event, s settlement, res *Result) error {
	orderID, err := evt.Object.OrderID()
	if err != nil {
		logger.Warn("webhook_event_missing_order_reference",
			observability.F("object_id", evt.Object.ID),
			observability.F("metadata_order_id", evt.Object.Metadata[dompay.MetadataOrderID]),
		)
		return err
	}
	res.OrderID = orderID

	var paidAt *time.Time
	if s.order == domorder.StatusPaid {
		at := r.now().UTC()
		paidAt = &at
	}

	prev, err := r.orders.Resolve(ctx, orderID, s.order, paidAt)
	if err != nil {
		return fmt.Errorf("webhook: update order %d: %w", orderID, err)
	}
	transition, err := domorder.Classify(prev, s.order)
	if err != nil {
		return fmt.Errorf("webhook: order %d: %w", orderID, err)
	}
	res.OrderStatus = string(s.order)
	res.Transition = string(transition)
	if transition == domorder.TransitionIgnored {
		res.OrderStatus = string(prev)
		logger.Warn("webhook_terminal_status_kept",
			observability.F("order_id", orderID),
			observability.F("previous_status", string(prev)),
			observability.F("status", string(s.order)),
		)
	}

	var chargeID string
	if s.chargeID != nil {
		chargeID = s.chargeID(evt.Object)
	}
	n, err := r.payments.ResolvePending(ctx, orderID, s.payment, chargeID)
	if err != nil {
		return fmt.Errorf("webhook: resolve payments of order %d: %w", orderID, err)
	}
	res.PaymentsUpdated = n

	if transition.Changed() {
		var e domoutbox.Event
		if s.order == domorder.StatusPaid {
			e = domorder.NewOrderPaidEvent(orderID, evt.ID, chargeID, *paidAt)
		} else {
			e = domorder.NewOrderCanceledEvent(orderID, evt.ID, s.reason)
		}
		if pubErr := r.publisher.Publish(ctx, e); pubErr != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", e.EventName()),
				observability.F("order_id", orderID),
				observability.F("error", pubErr.Error()),
			)
		}
	}
	return nil
}

// checkRedelivery flags events already seen. Redelivered events are still applied.
func (r *Reconciler) checkRedelivery(ctx context.Context, logger observability.Logger, evt *dompay.Event, res *Result) {
	if r.ledger == nil || evt.ID == "" {
		return
	}
	first, err := r.ledger.Record(ctx, evt.ID)
	if err != nil {
		logger.Warn("webhook_ledger_unavailable", observability.F("error", err.Error()))
		return
	}
	if !first {
		res.Duplicate = true
		logger.Info("webhook_event_redelivered")
	}
}

func typeLabel(t dompay.EventType) string {
	switch t {
	case dompay.EventIntentSucceeded, dompay.EventIntentFailed, dompay.EventIntentCreated,
		dompay.EventSessionCompleted, dompay.EventSessionExpired, dompay.EventSessionCreated:
		return string(t)
	}
	return "other"
}
