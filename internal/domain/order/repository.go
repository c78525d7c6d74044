package order

import (
	"context"
	"time"
)

type Repository interface {
	// Insert stores a new order and assigns its ID.
	Insert(ctx context.Context, order *Order) error
	// Get returns the order with Product and User populated.
	Get(ctx context.Context, id int64) (*Order, error)
	// SetProcessorRef overwrites the stored payment-intent/session reference of a PENDING order.
	// It returns ErrNotPending when the order has already settled.
	SetProcessorRef(ctx context.Context, id int64, ref string) error
	// Resolve writes status (and paidAt when non-nil) when the order is PENDING or already in status,
	// and returns the status it found. A terminal order is never moved to the other terminal state.
	Resolve(ctx context.Context, id int64, status Status, paidAt *time.Time) (Status, error)
}
