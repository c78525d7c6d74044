package postgres

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct{ db *pgxpool.Pool }

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return fmt.Errorf("order repository: order is required")
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO orders(user_id, product_id, quantity, total_amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		o.UserID, o.ProductID, o.Quantity, o.TotalAmount, o.Currency, string(o.Status), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var (
		o      domain.Order
		p      product.Product
		u      user.User
		status string
	)
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_amount, o.currency, o.status,
		       o.stripe_payment_intent_id, o.paid_at, o.created_at, o.updated_at,
		       p.id, p.name, p.description, p.price, p.currency, p.is_active, p.created_at, p.updated_at,
		       u.id, u.name, u.email, u.stripe_customer_id, u.created_at, u.updated_at
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users u ON u.id = o.user_id
		WHERE o.id=$1`, id,
	).Scan(
		&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.TotalAmount, &o.Currency, &status,
		&o.StripePaymentIntentID, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	o.Status = domain.Status(status)
	o.Product, o.User = &p, &u
	return &o, nil
}

func (r *OrderRepository) SetProcessorRef(ctx context.Context, id int64, ref string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET stripe_payment_intent_id=$2, updated_at=now()
		WHERE id=$1 AND status='PENDING'`, id, ref)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var status string
	if err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&status); err != nil {
		return notFound(err, domain.ErrNotFound)
	}
	return domain.ErrNotPending
}

// Resolve locks the row, reads the current status and writes the new one only when the order
// is still PENDING or already in that status.
func (r *OrderRepository) Resolve(ctx context.Context, id int64, status domain.Status, paidAt *time.Time) (domain.Status, error) {
	if !status.Valid() {
		return "", domain.ErrInvalidStatus
	}
	var prev string
	err := r.db.QueryRow(ctx, `
		WITH prev AS (
			SELECT id, status FROM orders WHERE id=$1 FOR UPDATE
		), upd AS (
			UPDATE orders o
			SET status=$2, paid_at=COALESCE($3, o.paid_at), updated_at=now()
			FROM prev
			WHERE o.id = prev.id AND (prev.status='PENDING' OR prev.status=$2)
		)
		SELECT status FROM prev`,
		id, string(status), paidAt,
	).Scan(&prev)
	if err != nil {
		return "", notFound(err, domain.ErrNotFound)
	}
	return domain.Status(prev), nil
}
