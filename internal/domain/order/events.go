package order

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted once a pending order has been stored.
type OrderCreatedEvent struct {
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func (OrderCreatedEvent) EventName() string     { return "order.created" }
func (e OrderCreatedEvent) AggregateID() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		OccurredAt:  time.Now().UTC(),
	}
}

// OrderPaidEvent is emitted when a processor confirmation marks the order paid.
type OrderPaidEvent struct {
	OrderID        int64     `json:"order_id"`
	ProcessorEvent string    `json:"processor_event_id"`
	ChargeID       string    `json:"charge_id,omitempty"`
	PaidAt         time.Time `json:"paid_at"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (OrderPaidEvent) EventName() string     { return "order.paid" }
func (e OrderPaidEvent) AggregateID() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderPaidEvent(orderID int64, processorEventID, chargeID string, paidAt time.Time) OrderPaidEvent {
	return OrderPaidEvent{
		OrderID:        orderID,
		ProcessorEvent: processorEventID,
		ChargeID:       chargeID,
		PaidAt:         paidAt,
		OccurredAt:     time.Now().UTC(),
	}
}

// OrderCanceledEvent is emitted when a payment failure or an expired session cancels the order.
type OrderCanceledEvent struct {
	OrderID        int64     `json:"order_id"`
	ProcessorEvent string    `json:"processor_event_id"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (OrderCanceledEvent) EventName() string     { return "order.canceled" }
func (e OrderCanceledEvent) AggregateID() string { return strconv.FormatInt(e.OrderID, 10) }

func NewOrderCanceledEvent(orderID int64, processorEventID, reason string) OrderCanceledEvent {
	return OrderCanceledEvent{
		OrderID:        orderID,
		ProcessorEvent: processorEventID,
		Reason:         reason,
		OccurredAt:     time.Now().UTC(),
	}
}
