package order

import (
	"context"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderPlaced struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	PlacedAt    time.Time   `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID     string     `json:"order_id"`
	UserID      string     `json:"user_id"`
	From        Status     `json:"from"`
	To          Status     `json:"to"`
	ChangedAt   time.Time  `json:"changed_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// Publisher pushes order lifecycle events onto the event bus. Checkout and
// the status service publish through it; the notifier consumes.
type Publisher interface {
	PublishEvent(ctx context.Context, key, eventType string, payload any) error
}
