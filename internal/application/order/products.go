package order

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const useCaseProductList = "product.list"

// ListProductsUseCase returns the catalogue shown to buyers: active products, newest first.
type ListProductsUseCase struct {
	products product.Repository
	tel      observability.Observability
	log      observability.Logger

	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

var _ application.UseCase[struct{}, []*product.Product] = (*ListProductsUseCase)(nil)

func NewListProductsUseCase(products product.Repository, tel observability.Observability) *ListProductsUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ListProductsUseCase{
		products:     products,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, _ struct{}) (_ []*product.Product, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, application.SpanPrefix+"ListProducts",
		attribute.String("use_case", useCaseProductList),
	)
	start := time.Now()
	outcome := application.OutcomeSuccess
	var count int

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			outcome = application.OutcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, "PRODUCT_LIST_FAILED")
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		uc.reqCounter.Add(1, observability.L("use_case", useCaseProductList), observability.L("outcome", outcome))
		uc.durHistogram.Observe(lat, observability.L("use_case", useCaseProductList))

		logger := logctx.FromOr(ctx, uc.log)
		fields := []observability.Field{
			observability.F("use_case", useCaseProductList),
			observability.F("outcome", outcome),
			observability.F("count", count),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Debug("use_case_done", fields...)
	}()

	items, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	count = len(items)
	return items, nil
}
