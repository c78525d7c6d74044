package stripepay

import (
	"encoding/json"
	"errors"
	"fmt"

	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

var ErrWebhookSecretMissing = errors.New("stripe: webhook secret not configured")

// ConstructEvent verifies the Stripe-Signature header against the raw body and decodes the event object.
func (c *Client) ConstructEvent(payload []byte, signature string) (*dompay.Event, error) {
	if c.webhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                c.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dompay.ErrSignatureInvalid, err)
	}

	obj, err := decodeObject(dompay.EventType(evt.Type), evt.Data)
	if err != nil {
		return nil, fmt.Errorf("stripe: decode %s object: %w", evt.Type, err)
	}
	return &dompay.Event{ID: evt.ID, Type: dompay.EventType(evt.Type), Object: obj}, nil
}

// HasWebhookSecret reports whether webhook verification is configured.
func (c *Client) HasWebhookSecret() bool { return c.webhookSecret != "" }

func decodeObject(typ dompay.EventType, data *stripe.EventData) (dompay.Object, error) {
	if data == nil || len(data.Raw) == 0 {
		return dompay.Object{}, nil
	}

	switch typ {
	case dompay.EventIntentSucceeded, dompay.EventIntentFailed, dompay.EventIntentCreated:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(data.Raw, &pi); err != nil {
			return dompay.Object{}, err
		}
		obj := dompay.Object{ID: pi.ID, Metadata: pi.Metadata}
		if pi.LatestCharge != nil {
			obj.LatestCharge = pi.LatestCharge.ID
		}
		return obj, nil

	case dompay.EventSessionCompleted, dompay.EventSessionExpired, dompay.EventSessionCreated:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(data.Raw, &s); err != nil {
			return dompay.Object{}, err
		}
		obj := dompay.Object{ID: s.ID, Metadata: s.Metadata}
		if s.PaymentIntent != nil {
			obj.PaymentIntent = s.PaymentIntent.ID
		}
		return obj, nil

	default:
		var generic struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		}
		// Unknown objects are informational only; a shape we cannot read is not an error.
		_ = json.Unmarshal(data.Raw, &generic)
		return dompay.Object{ID: generic.ID, Metadata: generic.Metadata}, nil
	}
}
