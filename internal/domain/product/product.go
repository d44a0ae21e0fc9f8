package product

import (
	"context"
	"errors"
	"time"

	"github.com/example/marketplace/internal/domain/pricing"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidName       = errors.New("name is required")
	ErrInvalidStock      = errors.New("stock must not be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotOwner          = errors.New("product belongs to another seller")
)

// Product is a seller's listing. Unit prices come from the tier table, not
// from a single price field. Listings are soft-deactivated, never hard
// deleted, so placed orders keep resolving their product ids.
type Product struct {
	ID          string              `json:"id"`
	SellerID    string              `json:"seller_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ImageURL    string              `json:"image_url,omitempty"`
	Stock       int                 `json:"stock"`
	PriceTiers  []pricing.PriceTier `json:"price_tiers"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Store is the persistence boundary for products. DecrementStock must be
// conditional at the storage layer: it either takes the full quantity or
// fails with ErrInsufficientStock, so two buyers racing for the last units
// cannot both win.
type Store interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]*Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	DecrementStock(ctx context.Context, id string, quantity int) error
	IncrementStock(ctx context.Context, id string, quantity int) error
}
