package httppresentation

import (
	"context"
	"net/http"
	"strconv"
	"time"

	appOrder "github.com/Zhima-Mochi/minishop-payments/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-payments/internal/application/payment"
	appWebhook "github.com/Zhima-Mochi/minishop-payments/internal/application/webhook"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

// EventVerifier authenticates a raw webhook body against its signature header.
type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (*dompay.Event, error)
}

type Deps struct {
	CreateOrder  *appOrder.CreateOrderUseCase
	ListProducts *appOrder.ListProductsUseCase
	Payments     *appPayment.Coordinator
	Reconciler   *appWebhook.Reconciler
	Verifier     EventVerifier
	// WebhookConfigured is false when no signing secret is set; webhooks are then refused.
	WebhookConfigured bool
	// Metrics, when set, is mounted on GET /metrics.
	Metrics http.Handler
}

type Handler struct {
	createOrder       *appOrder.CreateOrderUseCase
	listProducts      *appOrder.ListProductsUseCase
	payments          *appPayment.Coordinator
	reconciler        *appWebhook.Reconciler
	verifier          EventVerifier
	webhookConfigured bool
	metrics           http.Handler

	log          observability.Logger
	tel          observability.Observability
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewHandler(deps Deps, logger observability.Logger, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = tel.Logger()
	}
	return &Handler{
		createOrder:       deps.CreateOrder,
		listProducts:      deps.ListProducts,
		payments:          deps.Payments,
		reconciler:        deps.Reconciler,
		verifier:          deps.Verifier,
		webhookConfigured: deps.WebhookConfigured,
		metrics:           deps.Metrics,
		log:               baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:               tel,
		reqCounter:        tel.Metrics().Counter(observability.MHTTPRequests),
		durHistogram:      tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)

	// Trace → request logger → access log → HTTP metrics → handler
	h.handle(r, http.MethodGet, "/products", h.handleListProducts)
	h.handle(r, http.MethodPost, "/orders", h.handleCreateOrder)
	h.handle(r, http.MethodPost, "/payment-intents", h.handleCreatePaymentIntent)
	h.handle(r, http.MethodPost, "/checkout-sessions", h.handleCreateCheckoutSession)
	h.handle(r, http.MethodPost, "/webhook", h.handleWebhook)
	h.handle(r, http.MethodGet, "/health", h.handleHealth)

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	return r
}

func (h *Handler) handle(r chi.Router, method, route string, handler http.HandlerFunc) {
	wrapped := h.withTrace(
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
		)(
			h.withAccessLog(
				h.withHTTPMetrics(handler),
			),
		),
	)
	r.Method(method, route, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// stable route template for low-cardinality labels
		wrapped.ServeHTTP(w, req.WithContext(contextWithRoute(req.Context(), route)))
	}))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		route := routeFromContext(parentCtx)

		ctxWithSpan, span := h.tel.Tracer().Start(parentCtx,
			r.Method+" "+route,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("http.target", r.URL.Path),
			attribute.String("http.user_agent", r.UserAgent()),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctxWithSpan))
		span.SetAttributes(attribute.Int("http.status_code", lrw.status))
		if lrw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(lrw.status))
		}
	})
}

// withHTTPMetrics records RED-ish HTTP metrics using injected vectors.
// DO NOT new metrics inside the middleware.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		route := routeFromContext(r.Context())
		status := strconv.Itoa(lrw.status)
		h.reqCounter.Add(1, observability.L("method", r.Method), observability.L("route", route), observability.L("status", status))
		h.durHistogram.Observe(time.Since(start).Seconds(), observability.L("method", r.Method), observability.L("route", route), observability.L("status", status))
	})
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
