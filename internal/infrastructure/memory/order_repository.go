package memory

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
)

type OrderRepository struct{ s *Store }

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil {
		return fmt.Errorf("order repository: order is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextOrderID++
	order.ID = r.s.nextOrderID

	stored := order.Clone()
	stored.Product, stored.User = nil, nil
	r.s.orders[order.ID] = stored
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := o.Clone()
	out.Product = r.s.products[o.ProductID].Clone()
	out.User = r.s.users[o.UserID].Clone()
	return out, nil
}

func (r *OrderRepository) SetProcessorRef(ctx context.Context, id int64, ref string) error {
	_ = ctx

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != domain.StatusPending {
		return domain.ErrNotPending
	}
	o.StripePaymentIntentID = &ref
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *OrderRepository) Resolve(ctx context.Context, id int64, status domain.Status, paidAt *time.Time) (domain.Status, error) {
	_ = ctx
	if !status.Valid() {
		return "", domain.ErrInvalidStatus
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	prev := o.Status
	if !domain.Settles(prev, status) {
		return prev, nil
	}
	o.Status = status
	if paidAt != nil {
		at := *paidAt
		o.PaidAt = &at
	}
	o.UpdatedAt = time.Now().UTC()
	return prev, nil
}
