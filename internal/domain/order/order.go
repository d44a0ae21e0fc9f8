package order

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOrderDelivered    = errors.New("order is already delivered")
	ErrOrderCancelled    = errors.New("order is already cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// validTransitions defines allowed state transitions. Fulfilment is strictly
// sequential; cancellation is reachable from any non-terminal state.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {}, // terminal state
	StatusCancelled: {}, // terminal state
}

// ParseStatus rejects anything outside the closed six-value set.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// CanTransitionTo checks if the status can move to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// OrderItem is the immutable counterpart of a cart line, fixed at placement
// time. Later tier or stock changes on the product never alter it.
type OrderItem struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Status          Status      `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
	Phone           string      `json:"phone"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
}

// transitionError returns an appropriate error for a rejected transition.
func (o *Order) transitionError(target Status) error {
	switch o.Status {
	case StatusDelivered:
		return ErrOrderDelivered
	case StatusCancelled:
		return ErrOrderCancelled
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, target)
	}
}

// Store is the persistence boundary for orders. Orders are created once and
// afterwards mutated only through UpdateStatus; they are never deleted.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, deliveredAt *time.Time) error
}
