package product_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/infrastructure/store/mocks"
)

var bulkTiers = []pricing.PriceTier{
	{MinQuantity: 1, MaxQuantity: 9, Price: 100},
	{MinQuantity: 10, Price: 80},
}

func TestCreateProduct(t *testing.T) {
	store := mocks.NewMockProductStore()
	svc := product.NewService(store)

	p, err := svc.Create(context.Background(), "seller-1", "Rice 25kg", "Local rice", "", 40, bulkTiers)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "seller-1", p.SellerID)
	assert.True(t, p.IsActive)
	assert.Equal(t, 40, p.Stock)
	assert.Equal(t, bulkTiers, p.PriceTiers)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, stored.Name)
}

func TestCreateProductValidation(t *testing.T) {
	svc := product.NewService(mocks.NewMockProductStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, "seller-1", "  ", "", "", 10, bulkTiers)
	assert.ErrorIs(t, err, product.ErrInvalidName)

	_, err = svc.Create(ctx, "seller-1", "Rice", "", "", -1, bulkTiers)
	assert.ErrorIs(t, err, product.ErrInvalidStock)

	_, err = svc.Create(ctx, "seller-1", "Rice", "", "", 10, nil)
	assert.ErrorIs(t, err, pricing.ErrMalformedTiers)

	gapped := []pricing.PriceTier{
		{MinQuantity: 1, MaxQuantity: 5, Price: 100},
		{MinQuantity: 8, Price: 80},
	}
	_, err = svc.Create(ctx, "seller-1", "Rice", "", "", 10, gapped)
	assert.ErrorIs(t, err, pricing.ErrMalformedTiers)
}

func TestUpdateProduct(t *testing.T) {
	store := mocks.NewMockProductStore()
	svc := product.NewService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, "seller-1", "Rice 25kg", "", "", 40, bulkTiers)
	require.NoError(t, err)

	newName := "Rice 25kg (premium)"
	newStock := 15
	updated, err := svc.Update(ctx, p.ID, "seller-1", false, product.Update{
		Name:  &newName,
		Stock: &newStock,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, newStock, updated.Stock)
	// Untouched fields survive.
	assert.Equal(t, bulkTiers, updated.PriceTiers)
}

func TestUpdateProductRejectsBadTiers(t *testing.T) {
	store := mocks.NewMockProductStore()
	svc := product.NewService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, "seller-1", "Rice 25kg", "", "", 40, bulkTiers)
	require.NoError(t, err)

	bad := []pricing.PriceTier{{MinQuantity: 2, Price: 100}}
	_, err = svc.Update(ctx, p.ID, "seller-1", false, product.Update{PriceTiers: bad})
	assert.ErrorIs(t, err, pricing.ErrMalformedTiers)

	// The stored tiers are unchanged.
	stored, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, bulkTiers, stored.PriceTiers)
}

func TestUpdateProductOwnership(t *testing.T) {
	store := mocks.NewMockProductStore()
	svc := product.NewService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, "seller-1", "Rice 25kg", "", "", 40, bulkTiers)
	require.NoError(t, err)

	newName := "Hijacked"
	_, err = svc.Update(ctx, p.ID, "seller-2", false, product.Update{Name: &newName})
	assert.ErrorIs(t, err, product.ErrNotOwner)

	// Admins may edit any listing.
	_, err = svc.Update(ctx, p.ID, "admin-1", true, product.Update{Name: &newName})
	assert.NoError(t, err)
}

func TestDeactivateProduct(t *testing.T) {
	store := mocks.NewMockProductStore()
	svc := product.NewService(store)
	ctx := context.Background()

	p, err := svc.Create(ctx, "seller-1", "Rice 25kg", "", "", 40, bulkTiers)
	require.NoError(t, err)

	err = svc.Deactivate(ctx, p.ID, "seller-2", false)
	assert.ErrorIs(t, err, product.ErrNotOwner)

	require.NoError(t, svc.Deactivate(ctx, p.ID, "seller-1", false))

	stored, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// Deactivated listings drop out of the public catalog but stay in
	// the seller's view.
	publicList, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, publicList)

	sellerList, err := svc.ListBySeller(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, sellerList, 1)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := product.NewService(mocks.NewMockProductStore())
	newName := "x"
	_, err := svc.Update(context.Background(), "missing", "seller-1", false, product.Update{Name: &newName})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}
