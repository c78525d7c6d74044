package postgres

import (
	"context"

	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
)

// Seed inserts demo rows when the tables are empty.
func (s *Store) Seed(ctx context.Context, users []*user.User, products []*product.Product) error {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range users {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users(id, name, email) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`, u.ID, u.Name, u.Email); err != nil {
			return err
		}
	}
	for _, p := range products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products(id, name, description, price, currency, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`, p.ID, p.Name, p.Description, p.Price, p.Currency, p.IsActive); err != nil {
			return err
		}
	}
	for _, seq := range []string{"users", "products"} {
		if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('`+seq+`', 'id'), (SELECT MAX(id) FROM `+seq+`))`); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
