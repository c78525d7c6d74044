package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
)

var ErrRepository = errors.New("order: repository failure")

// CreateOrderCommand is built through NewCreateOrderCommand so it is valid by construction.
type CreateOrderCommand struct {
	ProductID int64 `validate:"gt=0"`
	Quantity  int   `validate:"gte=1"`
	UserID    int64 `validate:"gt=0"`
}

func NewCreateOrderCommand(productID int64, quantity int, userID int64) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{ProductID: productID, Quantity: quantity, UserID: userID}
	if err := application.Validate(cmd); err != nil {
		return CreateOrderCommand{}, err
	}
	return cmd, nil
}

// CreateOrderUseCase prices and stores a pending order.
type CreateOrderUseCase struct {
	orders    domain.Repository
	products  product.Repository
	users     user.Repository
	publisher *application.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

var _ application.UseCase[CreateOrderCommand, *domain.Order] = (*CreateOrderUseCase)(nil)

func NewCreateOrderUseCase(
	orders domain.Repository,
	products product.Repository,
	users user.Repository,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &CreateOrderUseCase{
		orders:       orders,
		products:     products,
		users:        users,
		publisher:    application.NewPublisher(publisher, tel),
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Execute returns the created order with Product and User populated.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseOrderCreate))

	ctx, span := uc.tel.Tracer().Start(ctx, application.SpanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.Int64("order.product_id", cmd.ProductID),
		attribute.Int64("order.user_id", cmd.UserID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, "OK"
	var orderID int64
	var publishErr error

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseOrderCreate))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if orderID != 0 {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := application.Validate(cmd); err != nil {
		outcome, statusText = application.OutcomeError, "INVALID_INPUT"
		return nil, err
	}

	p, err := uc.products.Get(ctx, cmd.ProductID)
	if err != nil {
		outcome, statusText = application.OutcomeError, "PRODUCT_LOOKUP_FAILED"
		return nil, wrapRepositoryError(err)
	}
	u, err := uc.users.Get(ctx, cmd.UserID)
	if err != nil {
		outcome, statusText = application.OutcomeError, "USER_LOOKUP_FAILED"
		return nil, wrapRepositoryError(err)
	}

	entity, err := domain.New(u.ID, p, cmd.Quantity)
	if err != nil {
		outcome, statusText = application.OutcomeError, "PRODUCT_NOT_PURCHASABLE"
		return nil, err
	}
	entity.User = u

	if err := ctx.Err(); err != nil {
		outcome, statusText = application.OutcomeError, "CONTEXT_CANCELED"
		return nil, err
	}
	if err := uc.orders.Insert(ctx, entity); err != nil {
		outcome, statusText = application.OutcomeError, "REPO_INSERT_FAILED"
		return nil, wrapRepositoryError(err)
	}
	orderID = entity.ID

	if publishErr = uc.publisher.Publish(ctx, domain.NewOrderCreatedEvent(entity)); publishErr != nil {
		span.RecordError(publishErr)
		statusText = "EVENT_PUBLISH_FAILED"
	}

	span.SetAttributes(
		attribute.Int64("order.id", entity.ID),
		attribute.String("order.total_amount", entity.TotalAmount.String()),
		attribute.String("order.status", string(entity.Status)),
	)
	span.AddEvent("order.created")

	return entity, nil
}

// wrapRepositoryError keeps domain sentinels intact and tags everything else as a storage failure.
func wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}
