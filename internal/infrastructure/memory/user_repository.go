package memory

import (
	"context"
	"time"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	_ = ctx

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	_ = ctx

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.StripeCustomerID = &customerID
	u.UpdatedAt = time.Now().UTC()
	return nil
}
