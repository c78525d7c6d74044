package order

import (
	"errors"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrInvalidQuantity = errors.New("order: quantity must be at least one")
	ErrNotPending      = errors.New("order: already processed")
	ErrInvalidStatus   = errors.New("order: unknown status")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further payment attempt may start from s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCanceled
}

type Order struct {
	ID          int64
	UserID      int64
	ProductID   int64
	Quantity    int
	TotalAmount decimal.Decimal
	Currency    string
	Status      Status
	// StripePaymentIntentID holds either a payment-intent id or a checkout-session id,
	// whichever payment attempt was started last.
	StripePaymentIntentID *string
	PaidAt                *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// Populated on reads for display.
	Product *product.Product
	User    *user.User
}

// New prices a pending order from the product snapshot. The id is assigned on insert.
func New(userID int64, p *product.Product, quantity int) (*Order, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := p.Purchasable(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Order{
		UserID:      userID,
		ProductID:   p.ID,
		Quantity:    quantity,
		TotalAmount: p.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Currency:    p.Currency,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Product:     p.Clone(),
	}, nil
}

// EnsurePending guards every payment attempt: an order may not be paid for twice.
func (o *Order) EnsurePending() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	return nil
}

// ProcessorRef returns the id of the latest payment-intent or checkout-session, if any.
func (o *Order) ProcessorRef() string {
	if o.StripePaymentIntentID == nil {
		return ""
	}
	return *o.StripePaymentIntentID
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.StripePaymentIntentID != nil {
		ref := *o.StripePaymentIntentID
		clone.StripePaymentIntentID = &ref
	}
	if o.PaidAt != nil {
		at := *o.PaidAt
		clone.PaidAt = &at
	}
	clone.Product = o.Product.Clone()
	clone.User = o.User.Clone()
	return &clone
}
