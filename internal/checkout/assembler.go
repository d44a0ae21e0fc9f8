package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/marketplace/internal/domain/cart"
	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/google/uuid"
)

// ShippingInfo is the delivery data collected at checkout. Payment is cash
// on delivery, so this is all an order needs.
type ShippingInfo struct {
	Address string `json:"shipping_address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes,omitempty"`
}

// Assembler turns a cart snapshot into a persisted order. Cart data can be
// arbitrarily stale by checkout time, so every line is re-validated against
// the authoritative product store and prices are re-derived from the current
// tier tables. Placement is all-or-nothing: any failing line aborts the
// whole order and the cart stays intact for a retry.
type Assembler struct {
	products  product.Store
	orders    order.Store
	carts     *cart.Manager
	publisher order.Publisher
}

// NewAssembler creates a checkout assembler. publisher may be nil.
func NewAssembler(products product.Store, orders order.Store, carts *cart.Manager, publisher order.Publisher) *Assembler {
	return &Assembler{
		products:  products,
		orders:    orders,
		carts:     carts,
		publisher: publisher,
	}
}

// PlaceOrder validates the buyer's cart against current product data, takes
// stock, persists the order with status pending, and clears the cart. The
// cart is cleared only after the order is durable; on any failure taken
// stock is put back and the cart is left untouched.
func (a *Assembler) PlaceOrder(ctx context.Context, userID string, shipping ShippingInfo) (*order.Order, error) {
	if strings.TrimSpace(shipping.Address) == "" || strings.TrimSpace(shipping.Phone) == "" {
		return nil, ErrMissingShipping
	}

	c := a.carts.Get(userID)
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items, total, err := a.buildItems(ctx, lines)
	if err != nil {
		return nil, err
	}

	taken, err := a.takeStock(ctx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &order.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		Status:          order.StatusPending,
		ShippingAddress: shipping.Address,
		Phone:           shipping.Phone,
		Notes:           shipping.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.orders.Create(ctx, o); err != nil {
		a.restock(ctx, taken)
		return nil, err
	}

	if a.publisher != nil {
		event := order.OrderPlaced{
			OrderID:     o.ID,
			UserID:      o.UserID,
			Items:       o.Items,
			TotalAmount: o.TotalAmount,
			PlacedAt:    o.CreatedAt,
		}
		// The order is already durable; a publish failure only delays the
		// confirmation e-mail.
		if err := a.publisher.PublishEvent(ctx, o.ID, order.EventOrderPlaced, event); err != nil {
			log.Printf("[Checkout] Failed to publish OrderPlaced for order %s: %v", o.ID, err)
		}
	}

	c.Clear()
	return o, nil
}

// buildItems re-validates each cart line against the current product record
// and re-derives unit prices from the current tier table.
func (a *Assembler) buildItems(ctx context.Context, lines []cart.Line) ([]order.OrderItem, float64, error) {
	items := make([]order.OrderItem, 0, len(lines))
	var total float64
	for _, line := range lines {
		p, err := a.products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, 0, &ProductUnavailableError{ProductID: line.ProductID, Name: line.Name}
			}
			return nil, 0, err
		}
		if !p.IsActive {
			return nil, 0, &ProductUnavailableError{ProductID: p.ID, Name: p.Name}
		}
		if p.Stock < line.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: line.Quantity,
				Available: p.Stock,
			}
		}
		unitPrice, err := pricing.ResolveUnitPrice(p.PriceTiers, line.Quantity)
		if err != nil {
			return nil, 0, err
		}
		item := order.OrderItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * float64(line.Quantity),
		}
		items = append(items, item)
		total += item.TotalPrice
	}
	return items, total, nil
}

// takeStock runs the conditional decrements. The store guarantees atomicity
// per product; a failure mid-way is compensated by restocking the lines
// already taken so no partial order survives.
func (a *Assembler) takeStock(ctx context.Context, items []order.OrderItem) ([]order.OrderItem, error) {
	taken := make([]order.OrderItem, 0, len(items))
	for _, item := range items {
		if err := a.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			a.restock(ctx, taken)
			if errors.Is(err, product.ErrInsufficientStock) {
				return nil, &InsufficientStockError{
					ProductID: item.ProductID,
					Name:      item.Name,
					Requested: item.Quantity,
				}
			}
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, &ProductUnavailableError{ProductID: item.ProductID, Name: item.Name}
			}
			return nil, err
		}
		taken = append(taken, item)
	}
	return taken, nil
}

func (a *Assembler) restock(ctx context.Context, items []order.OrderItem) {
	for _, item := range items {
		if err := a.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Checkout] Failed to restock product %s after aborted order: %v", item.ProductID, err)
		}
	}
}
