package user

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user: not found")

type User struct {
	ID               int64
	Name             string
	Email            string
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CustomerID returns the cached processor customer id, if any.
func (u *User) CustomerID() (string, bool) {
	if u.StripeCustomerID == nil || *u.StripeCustomerID == "" {
		return "", false
	}
	return *u.StripeCustomerID, true
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.StripeCustomerID != nil {
		id := *u.StripeCustomerID
		clone.StripeCustomerID = &id
	}
	return &clone
}

type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	SetStripeCustomerID(ctx context.Context, id int64, customerID string) error
}
