package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventPaymentUpdated     = "OrderPaymentUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order number
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderNumber   string     `json:"order_number"`
	UserID        string     `json:"user_id"`
	Items         []LineItem `json:"items"`
	SubtotalCents int        `json:"subtotal_cents"`
	TaxCents      int        `json:"tax_cents"`
	ShippingCents int        `json:"shipping_cents"`
	TotalCents    int        `json:"total_cents"`
}

type OrderCancelledPayload struct {
	OrderNumber string `json:"order_number"`
	From        Status `json:"from"`
}

type OrderStatusChangedPayload struct {
	OrderNumber string `json:"order_number"`
	From        Status `json:"from"`
	To          Status `json:"to"`
}

type PaymentUpdatedPayload struct {
	OrderNumber   string        `json:"order_number"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderStatus   Status        `json:"order_status"`
}
