package payment

import (
	"errors"
	"strconv"
	"strings"
)

var ErrMissingOrderReference = errors.New("payment: event carries no valid order reference")

type EventType string

const (
	EventIntentSucceeded  EventType = "payment_intent.succeeded"
	EventIntentFailed     EventType = "payment_intent.payment_failed"
	EventIntentCreated    EventType = "payment_intent.created"
	EventSessionCompleted EventType = "checkout.session.completed"
	EventSessionExpired   EventType = "checkout.session.expired"
	EventSessionCreated   EventType = "checkout.session.created"
)

// Metadata keys round-tripped through the processor.
const (
	MetadataOrderID     = "orderId"
	MetadataUserID      = "userId"
	MetadataProductName = "productName"
)

// Event is a verified processor notification.
type Event struct {
	ID     string
	Type   EventType
	Object Object
}

// Object is the subset of the payment-intent or checkout-session snapshot reconciliation reads.
type Object struct {
	ID       string
	Metadata map[string]string
	// LatestCharge is set for payment intents.
	LatestCharge string
	// PaymentIntent is set for checkout sessions.
	PaymentIntent string
}

// OrderID parses metadata.orderId.
func (o Object) OrderID() (int64, error) {
	raw := strings.TrimSpace(o.Metadata[MetadataOrderID])
	if raw == "" {
		return 0, ErrMissingOrderReference
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMissingOrderReference
	}
	return id, nil
}
