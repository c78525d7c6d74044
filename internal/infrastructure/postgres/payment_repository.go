package postgres

import (
	"context"
	"fmt"

	domain "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct{ db *pgxpool.Pool }

func (r *PaymentRepository) Insert(ctx context.Context, p *domain.Payment) error {
	if p == nil {
		return fmt.Errorf("payment repository: payment is required")
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO payments(user_id, order_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.UserID, p.OrderID, p.Amount, p.Currency, string(p.Status), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
}

// ResolvePending only touches rows still PENDING, so concurrent or repeated deliveries update zero rows.
func (r *PaymentRepository) ResolvePending(ctx context.Context, orderID int64, status domain.Status, chargeID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status=$2, stripe_charge_id=COALESCE(NULLIF($3, ''), stripe_charge_id), updated_at=now()
		WHERE order_id=$1 AND status='PENDING'`,
		orderID, string(status), chargeID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, order_id, amount, currency, status, stripe_charge_id, created_at, updated_at
		FROM payments WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			status string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.OrderID, &p.Amount, &p.Currency, &status,
			&p.StripeChargeID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = domain.Status(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}
