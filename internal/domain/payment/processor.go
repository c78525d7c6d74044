package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUpstream         = errors.New("payment: processor request failed")
	ErrSignatureInvalid = errors.New("payment: webhook signature invalid")
)

type CustomerParams struct {
	Email  string
	Name   string
	UserID int64
}

type IntentParams struct {
	AmountMinor int64
	Currency    string
	CustomerID  string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
}

type LineItem struct {
	Name            string
	Description     string
	UnitAmountMinor int64
	Currency        string
	Quantity        int64
}

type SessionParams struct {
	CustomerID string
	LineItem   LineItem
	SuccessURL string
	CancelURL  string
	ExpiresAt  time.Time
	Metadata   map[string]string
}

type Session struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// Processor is the outbound port to the payment processor.
type Processor interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
	// ConstructEvent verifies the signature over the raw body and decodes the event.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
