package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/marketplace/internal/checkout"
	"github.com/example/marketplace/internal/domain/cart"
	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/infrastructure/store/mocks"
)

var shipping = checkout.ShippingInfo{
	Address: "12 Siaka Stevens St, Freetown",
	Phone:   "+23276000000",
}

func seedProduct(products *mocks.MockProductStore, id string, stock int, tiers []pricing.PriceTier) *product.Product {
	p := &product.Product{
		ID:         id,
		SellerID:   "seller-1",
		Name:       "Product " + id,
		Stock:      stock,
		PriceTiers: tiers,
		IsActive:   true,
	}
	products.Seed(p)
	return p
}

func addToCart(t *testing.T, carts *cart.Manager, userID string, p *product.Product, quantity int) {
	t.Helper()
	c := carts.Get(userID)
	_, err := c.AddLine(cart.ProductSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Stock: p.Stock,
		Tiers: p.PriceTiers,
	}, quantity)
	require.NoError(t, err)
}

func newAssembler() (*checkout.Assembler, *mocks.MockProductStore, *mocks.MockOrderStore, *cart.Manager, *mocks.MockPublisher) {
	products := mocks.NewMockProductStore()
	orders := mocks.NewMockOrderStore()
	carts := cart.NewManager()
	publisher := mocks.NewMockPublisher()
	return checkout.NewAssembler(products, orders, carts, publisher), products, orders, carts, publisher
}

func TestPlaceOrder(t *testing.T) {
	assembler, products, orders, carts, publisher := newAssembler()

	tiers := []pricing.PriceTier{
		{MinQuantity: 1, MaxQuantity: 9, Price: 100},
		{MinQuantity: 10, Price: 80},
	}
	p := seedProduct(products, "p1", 50, tiers)
	addToCart(t, carts, "buyer-1", p, 10)

	o, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "buyer-1", o.UserID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 10, o.Items[0].Quantity)
	assert.Equal(t, 80.0, o.Items[0].UnitPrice, "quantity 10 falls into the bulk tier")
	assert.Equal(t, 800.0, o.Items[0].TotalPrice)
	assert.Equal(t, 800.0, o.TotalAmount)
	assert.Equal(t, shipping.Address, o.ShippingAddress)
	assert.Nil(t, o.DeliveredAt)

	// Stock was taken and the order persisted.
	assert.Equal(t, 40, products.Stock("p1"))
	stored, err := orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.TotalAmount, stored.TotalAmount)

	// The cart is cleared only after the order is durable.
	assert.True(t, carts.Get("buyer-1").Empty())

	// An OrderPlaced event went out keyed by order id.
	require.Len(t, publisher.PublishCalls, 1)
	assert.Equal(t, o.ID, publisher.PublishCalls[0].Key)
	assert.Equal(t, order.EventOrderPlaced, publisher.PublishCalls[0].EventType)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	assembler, _, orders, _, _ := newAssembler()

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Zero(t, orders.CreateCalls)
}

func TestPlaceOrderMissingShipping(t *testing.T) {
	assembler, products, _, carts, _ := newAssembler()
	p := seedProduct(products, "p1", 10, []pricing.PriceTier{{MinQuantity: 1, Price: 100}})
	addToCart(t, carts, "buyer-1", p, 2)

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", checkout.ShippingInfo{Phone: "+23276000000"})
	assert.ErrorIs(t, err, checkout.ErrMissingShipping)

	_, err = assembler.PlaceOrder(context.Background(), "buyer-1", checkout.ShippingInfo{Address: "somewhere"})
	assert.ErrorIs(t, err, checkout.ErrMissingShipping)

	// The cart survives for a retry.
	assert.False(t, carts.Get("buyer-1").Empty())
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	assembler, products, orders, carts, publisher := newAssembler()

	tiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p := seedProduct(products, "p1", 10, tiers)
	addToCart(t, carts, "buyer-1", p, 8)

	// Another buyer grabs most of the stock between cart-add and checkout.
	require.NoError(t, products.DecrementStock(context.Background(), "p1", 7))
	products.DecrementCalls = nil

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	require.Error(t, err)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, 8, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Nothing was persisted or published and the cart is intact.
	assert.Zero(t, orders.CreateCalls)
	assert.Empty(t, publisher.PublishCalls)
	assert.Empty(t, products.DecrementCalls)
	assert.False(t, carts.Get("buyer-1").Empty())
	assert.Equal(t, 3, products.Stock("p1"))
}

func TestPlaceOrderDeactivatedProduct(t *testing.T) {
	assembler, products, orders, carts, _ := newAssembler()

	tiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p := seedProduct(products, "p1", 10, tiers)
	addToCart(t, carts, "buyer-1", p, 2)

	// The seller pulls the listing before checkout.
	p.IsActive = false
	products.Seed(p)

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	assert.ErrorIs(t, err, checkout.ErrProductUnavailable)

	var unavailErr *checkout.ProductUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Equal(t, "p1", unavailErr.ProductID)

	assert.Zero(t, orders.CreateCalls)
	assert.False(t, carts.Get("buyer-1").Empty())
}

func TestPlaceOrderRepricesFromCurrentTiers(t *testing.T) {
	assembler, products, _, carts, _ := newAssembler()

	oldTiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p := seedProduct(products, "p1", 50, oldTiers)
	addToCart(t, carts, "buyer-1", p, 10)

	// The seller changes the tier table while the cart sits idle. The
	// order must use the current table, not the cart snapshot.
	p.PriceTiers = []pricing.PriceTier{
		{MinQuantity: 1, MaxQuantity: 9, Price: 120},
		{MinQuantity: 10, Price: 90},
	}
	products.Seed(p)

	o, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	require.NoError(t, err)
	assert.Equal(t, 90.0, o.Items[0].UnitPrice)
	assert.Equal(t, 900.0, o.TotalAmount)
}

func TestPlaceOrderCompensatesPartialStockTake(t *testing.T) {
	assembler, products, orders, carts, _ := newAssembler()

	tiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p1 := seedProduct(products, "p1", 10, tiers)
	p2 := seedProduct(products, "p2", 10, tiers)
	addToCart(t, carts, "buyer-1", p1, 5)
	addToCart(t, carts, "buyer-1", p2, 5)

	// The second decrement fails after the first succeeded.
	products.DecrementErr["p2"] = product.ErrInsufficientStock

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	// p1's stock was put back; no partial order survives.
	assert.Equal(t, 10, products.Stock("p1"))
	require.Len(t, products.IncrementCalls, 1)
	assert.Equal(t, "p1", products.IncrementCalls[0].ProductID)
	assert.Equal(t, 5, products.IncrementCalls[0].Quantity)
	assert.Zero(t, orders.CreateCalls)
	assert.False(t, carts.Get("buyer-1").Empty())
}

func TestPlaceOrderRestocksWhenPersistFails(t *testing.T) {
	assembler, products, orders, carts, publisher := newAssembler()

	tiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p := seedProduct(products, "p1", 10, tiers)
	addToCart(t, carts, "buyer-1", p, 4)

	orders.CreateErr = assert.AnError

	_, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	assert.Error(t, err)

	// Taken stock was returned, nothing was published, cart intact.
	assert.Equal(t, 10, products.Stock("p1"))
	assert.Empty(t, publisher.PublishCalls)
	assert.False(t, carts.Get("buyer-1").Empty())
}

func TestPlaceOrderPublishFailureStillSucceeds(t *testing.T) {
	assembler, products, orders, carts, publisher := newAssembler()

	tiers := []pricing.PriceTier{{MinQuantity: 1, Price: 100}}
	p := seedProduct(products, "p1", 10, tiers)
	addToCart(t, carts, "buyer-1", p, 4)

	publisher.PublishErr = assert.AnError

	o, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	require.NoError(t, err)

	// The order is durable even though the event did not go out.
	_, err = orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, carts.Get("buyer-1").Empty())
}

func TestPlaceOrderMultipleLines(t *testing.T) {
	assembler, products, _, carts, _ := newAssembler()

	p1 := seedProduct(products, "p1", 50, []pricing.PriceTier{
		{MinQuantity: 1, MaxQuantity: 9, Price: 100},
		{MinQuantity: 10, Price: 80},
	})
	p2 := seedProduct(products, "p2", 20, []pricing.PriceTier{{MinQuantity: 1, Price: 25}})
	addToCart(t, carts, "buyer-1", p1, 12)
	addToCart(t, carts, "buyer-1", p2, 3)

	o, err := assembler.PlaceOrder(context.Background(), "buyer-1", shipping)
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	assert.Equal(t, 12*80.0+3*25.0, o.TotalAmount)
	assert.Equal(t, 38, products.Stock("p1"))
	assert.Equal(t, 17, products.Stock("p2"))
}
