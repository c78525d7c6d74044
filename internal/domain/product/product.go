package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product: not found")
	ErrInactive = errors.New("product: not available")
)

// Product is read-only from the checkout flow's point of view.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Purchasable reports ErrInactive for products that can no longer be ordered.
func (p *Product) Purchasable() error {
	if !p.IsActive {
		return ErrInactive
	}
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

type Repository interface {
	Get(ctx context.Context, id int64) (*Product, error)
	// ListActive returns active products, newest first.
	ListActive(ctx context.Context) ([]*Product, error)
}
