package main

import (
	"time"

	domproduct "github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/shopspring/decimal"
)

func demoUsers() []*domuser.User {
	now := time.Now().UTC()
	return []*domuser.User{
		{ID: 1, Name: "Demo Buyer", Email: "buyer@example.com", CreatedAt: now, UpdatedAt: now},
	}
}

func demoProducts() []*domproduct.Product {
	now := time.Now().UTC()
	return []*domproduct.Product{
		{ID: 1, Name: "Notebook", Description: "A5 dotted, 120 pages", Price: decimal.RequireFromString("10.00"),
			Currency: "usd", IsActive: true, CreatedAt: now.Add(-2 * time.Minute), UpdatedAt: now},
		{ID: 2, Name: "Fountain Pen", Description: "Steel nib", Price: decimal.RequireFromString("19.99"),
			Currency: "usd", IsActive: true, CreatedAt: now.Add(-time.Minute), UpdatedAt: now},
		{ID: 3, Name: "Ink Refill", Price: decimal.RequireFromString("4.50"),
			Currency: "usd", IsActive: false, CreatedAt: now, UpdatedAt: now},
	}
}
