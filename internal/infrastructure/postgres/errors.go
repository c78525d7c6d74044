package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}
