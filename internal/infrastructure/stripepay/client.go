package stripepay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// Client adapts the Stripe API to the payment.Processor port. One instance is built at startup and
// injected wherever the processor is needed.
type Client struct {
	api           *client.API
	secretKey     string
	webhookSecret string
	tolerance     time.Duration
}

type Option func(*Client)

// WithBackends routes API calls to custom backends, e.g. a local test server.
func WithBackends(b *stripe.Backends) Option {
	return func(c *Client) { c.api = client.New(c.secretKey, b) }
}

// WithTolerance bounds the accepted age of a signed webhook timestamp.
func WithTolerance(d time.Duration) Option {
	return func(c *Client) { c.tolerance = d }
}

func New(secretKey, webhookSecret string, opts ...Option) *Client {
	c := &Client{
		api:           client.New(secretKey, nil),
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		tolerance:     5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateCustomer(ctx context.Context, p dompay.CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(p.Email),
		Name:  stripe.String(p.Name),
	}
	params.Context = ctx
	params.AddMetadata(dompay.MetadataUserID, strconv.FormatInt(p.UserID, 10))

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", upstream("create customer", err)
	}
	return cust.ID, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, p dompay.IntentParams) (*dompay.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, upstream("create payment intent", err)
	}
	return &dompay.Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, p dompay.SessionParams) (*dompay.Session, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.LineItem.Name),
	}
	if p.LineItem.Description != "" {
		productData.Description = stripe.String(p.LineItem.Description)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(p.LineItem.Currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(p.LineItem.UnitAmountMinor),
				},
				Quantity: stripe.Int64(p.LineItem.Quantity),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		ExpiresAt:  stripe.Int64(p.ExpiresAt.Unix()),
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, upstream("create checkout session", err)
	}
	return &dompay.Session{
		ID:        s.ID,
		URL:       s.URL,
		ExpiresAt: time.Unix(s.ExpiresAt, 0).UTC(),
	}, nil
}

func upstream(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return fmt.Errorf("%w: %s: %s (status=%d code=%s request=%s)",
			dompay.ErrUpstream, op, serr.Msg, serr.HTTPStatusCode, serr.Code, serr.RequestID)
	}
	return fmt.Errorf("%w: %s: %w", dompay.ErrUpstream, op, err)
}
