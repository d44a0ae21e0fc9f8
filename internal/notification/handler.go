package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/user"
	"github.com/example/marketplace/internal/email"
	"github.com/example/marketplace/internal/infrastructure/kafka"
)

// Handler turns order lifecycle events into buyer emails.
type Handler struct {
	emailService *email.Service
	users        user.Store
}

func NewHandler(emailSvc *email.Service, users user.Store) *Handler {
	return &Handler{
		emailService: emailSvc,
		users:        users,
	}
}

// HandleEvent processes an event from Kafka. Unknown event types are
// skipped; lookup failures are logged and dropped rather than retried
// forever.
func (h *Handler) HandleEvent(ctx context.Context, envelope kafka.Envelope) error {
	switch envelope.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, envelope)
	case order.EventOrderStatusChanged:
		return h.handleStatusChanged(ctx, envelope)
	default:
		return nil
	}
}

func (h *Handler) handleOrderPlaced(ctx context.Context, envelope kafka.Envelope) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(envelope.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, user %s", e.OrderID, e.UserID)

	buyer, err := h.lookupBuyer(ctx, e.UserID)
	if err != nil {
		return nil
	}

	if err := h.emailService.SendOrderConfirmation(buyer.Email, e.OrderID, e.TotalAmount, e.Items); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", buyer.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", buyer.Email, e.OrderID)
	return nil
}

func (h *Handler) handleStatusChanged(ctx context.Context, envelope kafka.Envelope) error {
	var e order.OrderStatusChanged
	if err := json.Unmarshal(envelope.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderStatusChanged event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing status change for order %s: %s -> %s", e.OrderID, e.From, e.To)

	buyer, err := h.lookupBuyer(ctx, e.UserID)
	if err != nil {
		return nil
	}

	if err := h.emailService.SendStatusUpdate(buyer.Email, e.OrderID, e.To); err != nil {
		log.Printf("[Notifier] Failed to send status update to %s: %v", buyer.Email, err)
		return err
	}

	log.Printf("[Notifier] Status update email sent to %s for order %s", buyer.Email, e.OrderID)
	return nil
}

func (h *Handler) lookupBuyer(ctx context.Context, userID string) (*user.User, error) {
	buyer, err := h.users.Get(ctx, userID)
	if err != nil {
		log.Printf("[Notifier] Failed to look up user %s: %v", userID, err)
		return nil, err
	}
	return buyer, nil
}
