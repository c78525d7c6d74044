package application

import "context"

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	// SpanPrefix is prepended to every use case span name.
	SpanPrefix = "UC."

	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
