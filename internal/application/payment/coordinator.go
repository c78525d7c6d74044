package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	paymentService          = "payment-service"
	useCasePaymentIntent    = "payment.create_intent"
	useCaseCheckoutSession  = "payment.create_checkout_session"
	processorPeer           = "stripe"
	checkoutSessionIDMarker = "{CHECKOUT_SESSION_ID}"

	DefaultFrontendURL = "http://localhost:3000"
	DefaultSessionTTL  = 30 * time.Minute
)

var ErrRepository = errors.New("payment: repository failure")

type Config struct {
	// FrontendURL is the base for default checkout success/cancel redirects.
	FrontendURL string
	SessionTTL  time.Duration
}

type CreatePaymentIntentCommand struct {
	OrderID int64 `validate:"gt=0"`
}

func NewCreatePaymentIntentCommand(orderID int64) (CreatePaymentIntentCommand, error) {
	cmd := CreatePaymentIntentCommand{OrderID: orderID}
	if err := application.Validate(cmd); err != nil {
		return CreatePaymentIntentCommand{}, err
	}
	return cmd, nil
}

type PaymentIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
}

type CreateCheckoutSessionCommand struct {
	OrderID    int64 `validate:"gt=0"`
	SuccessURL string
	CancelURL  string
}

func NewCreateCheckoutSessionCommand(orderID int64, successURL, cancelURL string) (CreateCheckoutSessionCommand, error) {
	cmd := CreateCheckoutSessionCommand{
		OrderID:    orderID,
		SuccessURL: strings.TrimSpace(successURL),
		CancelURL:  strings.TrimSpace(cancelURL),
	}
	if err := application.Validate(cmd); err != nil {
		return CreateCheckoutSessionCommand{}, err
	}
	return cmd, nil
}

type CheckoutSessionResult struct {
	SessionID string
	URL       string
	ExpiresAt time.Time
}

// Coordinator starts payment attempts for pending orders. The processor call always happens before
// the local writes, and a failed call leaves no Payment row behind.
type Coordinator struct {
	orders    domorder.Repository
	users     domuser.Repository
	payments  dompay.Repository
	processor dompay.Processor
	cfg       Config
	now       func() time.Time
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewCoordinator(
	orders domorder.Repository,
	users domuser.Repository,
	payments dompay.Repository,
	processor dompay.Processor,
	cfg Config,
	tel observability.Observability,
) *Coordinator {
	if tel == nil {
		tel = observability.Nop()
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = DefaultFrontendURL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	metrics := tel.Metrics()
	return &Coordinator{
		orders:       orders,
		users:        users,
		payments:     payments,
		processor:    processor,
		cfg:          cfg,
		now:          time.Now,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", paymentService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// CreatePaymentIntent starts a processor-side charge for a client-rendered payment form.
func (c *Coordinator) CreatePaymentIntent(ctx context.Context, cmd CreatePaymentIntentCommand) (_ *PaymentIntentResult, err error) {
	ctx, rec := c.begin(ctx, useCasePaymentIntent, "CreatePaymentIntent", cmd.OrderID)
	defer func() { rec.finish(err) }()

	if err := application.Validate(cmd); err != nil {
		rec.fail("INVALID_INPUT")
		return nil, err
	}

	order, customerID, err := c.prepare(ctx, rec, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	var intent *dompay.Intent
	err = c.external(ctx, "payment_intents.create", func() error {
		var callErr error
		intent, callErr = c.processor.CreatePaymentIntent(ctx, dompay.IntentParams{
			AmountMinor: dompay.MinorUnits(order.TotalAmount),
			Currency:    order.Currency,
			CustomerID:  customerID,
			Metadata: map[string]string{
				dompay.MetadataOrderID:     strconv.FormatInt(order.ID, 10),
				dompay.MetadataProductName: productName(order),
			},
		})
		return callErr
	})
	if err != nil {
		rec.fail("PROCESSOR_INTENT_FAILED")
		return nil, upstream(err)
	}
	rec.ref = intent.ID

	if err := c.recordAttempt(ctx, rec, order, intent.ID); err != nil {
		return nil, err
	}

	return &PaymentIntentResult{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// CreateCheckoutSession starts a processor-hosted, time-bounded checkout page.
func (c *Coordinator) CreateCheckoutSession(ctx context.Context, cmd CreateCheckoutSessionCommand) (_ *CheckoutSessionResult, err error) {
	ctx, rec := c.begin(ctx, useCaseCheckoutSession, "CreateCheckoutSession", cmd.OrderID)
	defer func() { rec.finish(err) }()

	if err := application.Validate(cmd); err != nil {
		rec.fail("INVALID_INPUT")
		return nil, err
	}

	order, customerID, err := c.prepare(ctx, rec, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	successURL := cmd.SuccessURL
	if successURL == "" {
		successURL = c.cfg.FrontendURL + "/payment/success?session_id=" + checkoutSessionIDMarker
	}
	cancelURL := cmd.CancelURL
	if cancelURL == "" {
		cancelURL = c.cfg.FrontendURL + "/payment/cancel"
	}

	item := dompay.LineItem{
		Currency: order.Currency,
		Quantity: int64(order.Quantity),
	}
	if order.Product != nil {
		item.Name = order.Product.Name
		item.Description = order.Product.Description
		item.UnitAmountMinor = dompay.MinorUnits(order.Product.Price)
	}

	var session *dompay.Session
	err = c.external(ctx, "checkout_sessions.create", func() error {
		var callErr error
		session, callErr = c.processor.CreateCheckoutSession(ctx, dompay.SessionParams{
			CustomerID: customerID,
			LineItem:   item,
			SuccessURL: successURL,
			CancelURL:  cancelURL,
			ExpiresAt:  c.now().Add(c.cfg.SessionTTL).Truncate(time.Second),
			Metadata: map[string]string{
				dompay.MetadataOrderID:     strconv.FormatInt(order.ID, 10),
				dompay.MetadataUserID:      strconv.FormatInt(order.UserID, 10),
				dompay.MetadataProductName: productName(order),
			},
		})
		return callErr
	})
	if err != nil {
		rec.fail("PROCESSOR_SESSION_FAILED")
		return nil, upstream(err)
	}
	rec.ref = session.ID

	if err := c.recordAttempt(ctx, rec, order, session.ID); err != nil {
		return nil, err
	}

	return &CheckoutSessionResult{SessionID: session.ID, URL: session.URL, ExpiresAt: session.ExpiresAt}, nil
}

// prepare loads the order, enforces PENDING and makes sure the buyer has a processor customer.
func (c *Coordinator) prepare(ctx context.Context, rec *recorder, orderID int64) (*domorder.Order, string, error) {
	order, err := c.orders.Get(ctx, orderID)
	if err != nil {
		rec.fail("ORDER_LOOKUP_FAILED")
		return nil, "", wrapRepositoryError(err)
	}
	if err := order.EnsurePending(); err != nil {
		rec.fail("ORDER_NOT_PENDING")
		rec.span.SetAttributes(attribute.String("order.status", string(order.Status)))
		return nil, "", err
	}
	if order.User == nil {
		rec.fail("USER_LOOKUP_FAILED")
		return nil, "", domuser.ErrNotFound
	}

	customerID, err := c.ensureCustomer(ctx, rec, order.User)
	if err != nil {
		return nil, "", err
	}
	return order, customerID, nil
}

// ensureCustomer creates the processor customer on first use and caches its id on the user.
// A crash between the two steps orphans one remote customer; the next attempt creates another.
func (c *Coordinator) ensureCustomer(ctx context.Context, rec *recorder, u *domuser.User) (string, error) {
	if id, ok := u.CustomerID(); ok {
		return id, nil
	}

	var customerID string
	err := c.external(ctx, "customers.create", func() error {
		var callErr error
		customerID, callErr = c.processor.CreateCustomer(ctx, dompay.CustomerParams{
			Email:  u.Email,
			Name:   u.Name,
			UserID: u.ID,
		})
		return callErr
	})
	if err != nil {
		rec.fail("PROCESSOR_CUSTOMER_FAILED")
		return "", upstream(err)
	}

	if err := c.users.SetStripeCustomerID(ctx, u.ID, customerID); err != nil {
		rec.fail("CUSTOMER_PERSIST_FAILED")
		return "", wrapRepositoryError(err)
	}
	rec.logger.Info("processor_customer_created",
		observability.F("user_id", u.ID),
		observability.F("customer_id", customerID),
	)
	return customerID, nil
}

// recordAttempt stores the processor reference on the order and opens a PENDING payment for it.
// An order settled while the processor call was in flight gets neither.
func (c *Coordinator) recordAttempt(ctx context.Context, rec *recorder, order *domorder.Order, ref string) error {
	if err := c.orders.SetProcessorRef(ctx, order.ID, ref); err != nil {
		rec.fail("ORDER_REF_UPDATE_FAILED")
		return wrapRepositoryError(err)
	}
	p := dompay.NewPending(order.UserID, order.ID, order.TotalAmount, order.Currency)
	if err := c.payments.Insert(ctx, p); err != nil {
		rec.fail("PAYMENT_INSERT_FAILED")
		return wrapRepositoryError(err)
	}
	rec.span.SetAttributes(attribute.Int64("payment.id", p.ID))
	return nil
}

func (c *Coordinator) external(ctx context.Context, endpoint string, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := call()
	outcome := application.OutcomeSuccess
	if err != nil {
		outcome = application.OutcomeError
	}
	c.extCounter.Add(1,
		observability.L("peer", processorPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	c.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", processorPeer),
		observability.L("endpoint", endpoint),
	)
	return err
}

// recorder carries the span, metrics and final log line of one coordinator call.
type recorder struct {
	c          *Coordinator
	ctx        context.Context
	useCase    string
	orderID    int64
	ref        string
	span       trace.Span
	logger     observability.Logger
	start      time.Time
	outcome    string
	statusText string
}

func (c *Coordinator) begin(ctx context.Context, useCase, spanName string, orderID int64) (context.Context, *recorder) {
	logger := logctx.FromOr(ctx, c.log).With(
		observability.F("use_case", useCase),
		observability.F("order_id", orderID),
	)
	ctx, span := c.tel.Tracer().Start(ctx, application.SpanPrefix+spanName,
		attribute.String("use_case", useCase),
		attribute.Int64("order.id", orderID),
	)
	return ctx, &recorder{
		c:          c,
		ctx:        ctx,
		useCase:    useCase,
		orderID:    orderID,
		span:       span,
		logger:     logger,
		start:      time.Now(),
		outcome:    application.OutcomeSuccess,
		statusText: "OK",
	}
}

func (r *recorder) fail(status string) {
	r.outcome, r.statusText = application.OutcomeError, status
}

func (r *recorder) finish(err error) {
	lat := time.Since(r.start).Seconds()
	if err != nil {
		if r.outcome != application.OutcomeError {
			r.fail("FAILED")
		}
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, r.statusText)
	} else {
		r.span.SetStatus(codes.Ok, r.statusText)
	}
	if r.ref != "" {
		r.span.SetAttributes(attribute.String("payment.processor_ref", r.ref))
	}
	r.span.End()

	r.c.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.outcome),
	)
	r.c.durHistogram.Observe(lat, observability.L("use_case", r.useCase))

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.statusText),
		observability.F("latency_seconds", lat),
	}
	if r.ref != "" {
		fields = append(fields, observability.F("processor_ref", r.ref))
	}
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	r.logger.Info("use_case_done", fields...)
}

func productName(o *domorder.Order) string {
	if o.Product == nil {
		return ""
	}
	return o.Product.Name
}

func upstream(err error) error {
	if errors.Is(err, dompay.ErrUpstream) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", dompay.ErrUpstream, err)
}

func wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domorder.ErrNotPending),
		errors.Is(err, domuser.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
