package order

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Service is the single place that knows which status transitions are valid
// and what side effects they carry. Admin and seller actions go through it.
type Service struct {
	store     Store
	publisher Publisher
}

// NewService creates an order service. publisher may be nil; status changes
// are then applied without emitting events.
func NewService(store Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// UpdateStatus moves an order to the target status. Entering delivered sets
// DeliveredAt once; transitions out of a terminal status are rejected, so a
// set timestamp is never overwritten.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, target Status) (*Order, error) {
	if _, ok := validTransitions[target]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, o.transitionError(target)
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now
	if target == StatusDelivered && o.DeliveredAt == nil {
		o.DeliveredAt = &now
	}

	if err := s.store.UpdateStatus(ctx, o.ID, o.Status, o.DeliveredAt); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := OrderStatusChanged{
			OrderID:     o.ID,
			UserID:      o.UserID,
			From:        from,
			To:          target,
			ChangedAt:   now,
			DeliveredAt: o.DeliveredAt,
		}
		if err := s.publisher.PublishEvent(ctx, o.ID, EventOrderStatusChanged, event); err != nil {
			log.Printf("[Order] Failed to publish status change for order %s: %v", o.ID, err)
		}
	}

	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.store.ListAll(ctx)
}
