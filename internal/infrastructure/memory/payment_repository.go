package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
)

type PaymentRepository struct{ s *Store }

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	_ = ctx
	if p == nil {
		return fmt.Errorf("payment repository: payment is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextPaymentID++
	p.ID = r.s.nextPaymentID
	r.s.payments[p.ID] = p.Clone()
	return nil
}

func (r *PaymentRepository) ResolvePending(ctx context.Context, orderID int64, status domain.Status, chargeID string) (int64, error) {
	_ = ctx

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for _, p := range r.s.payments {
		if p.OrderID != orderID || p.Status != domain.StatusPending {
			continue
		}
		p.Status = status
		if chargeID != "" {
			id := chargeID
			p.StripeChargeID = &id
		}
		p.UpdatedAt = now
		n++
	}
	return n, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*domain.Payment
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
