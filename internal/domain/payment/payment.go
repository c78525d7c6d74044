package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Payment records one attempt to collect funds for an order.
type Payment struct {
	ID             int64
	UserID         int64
	OrderID        int64
	Amount         decimal.Decimal
	Currency       string
	Status         Status
	StripeChargeID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewPending(userID, orderID int64, amount decimal.Decimal, currency string) *Payment {
	now := time.Now().UTC()
	return &Payment{
		UserID:    userID,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.StripeChargeID != nil {
		id := *p.StripeChargeID
		clone.StripeChargeID = &id
	}
	return &clone
}

type Repository interface {
	// Insert stores a new payment and assigns its ID.
	Insert(ctx context.Context, p *Payment) error
	// ResolvePending moves every PENDING payment of the order to status and returns how many rows changed.
	// chargeID is written only when non-empty.
	ResolvePending(ctx context.Context, orderID int64, status Status, chargeID string) (int64, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*Payment, error)
}
