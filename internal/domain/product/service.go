package product

import (
	"context"
	"strings"
	"time"

	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/google/uuid"
)

// Service owns listing rules: tier tables are validated before they are
// stored and sellers may only touch their own products.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new active listing for the seller.
func (s *Service) Create(ctx context.Context, sellerID, name, description, imageURL string, stock int, tiers []pricing.PriceTier) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	if err := pricing.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		SellerID:    sellerID,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Stock:       stock,
		PriceTiers:  tiers,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update carries the optional field changes of an update request. Nil
// pointers leave the field untouched.
type Update struct {
	Name        *string
	Description *string
	ImageURL    *string
	Stock       *int
	PriceTiers  []pricing.PriceTier
	IsActive    *bool
}

// Update applies the changes to the product after ownership and validation
// checks. Admins may edit any product.
func (s *Service) Update(ctx context.Context, id, actorID string, admin bool, upd Update) (*Product, error) {
	p, err := s.authorized(ctx, id, actorID, admin)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		if strings.TrimSpace(*upd.Name) == "" {
			return nil, ErrInvalidName
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Stock != nil {
		if *upd.Stock < 0 {
			return nil, ErrInvalidStock
		}
		p.Stock = *upd.Stock
	}
	if upd.PriceTiers != nil {
		if err := pricing.ValidateTiers(upd.PriceTiers); err != nil {
			return nil, err
		}
		p.PriceTiers = upd.PriceTiers
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate soft-deletes the listing.
func (s *Service) Deactivate(ctx context.Context, id, actorID string, admin bool) error {
	p, err := s.authorized(ctx, id, actorID, admin)
	if err != nil {
		return err
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	return s.store.Update(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Product, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]*Product, error) {
	return s.store.ListBySeller(ctx, sellerID)
}

func (s *Service) authorized(ctx context.Context, id, actorID string, admin bool) (*Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && p.SellerID != actorID {
		return nil, ErrNotOwner
	}
	return p, nil
}
