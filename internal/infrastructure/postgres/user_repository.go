package postgres

import (
	"context"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct{ db *pgxpool.Pool }

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, stripe_customer_id, created_at, updated_at
		FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET stripe_customer_id=$2, updated_at=now() WHERE id=$1`, id, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
