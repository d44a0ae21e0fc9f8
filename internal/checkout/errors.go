package checkout

import (
	"errors"
	"fmt"

	"github.com/example/marketplace/internal/domain/product"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingShipping    = errors.New("shipping address and phone are required")
	ErrProductUnavailable = errors.New("product is unavailable")
)

// InsufficientStockError identifies the product whose authoritative stock no
// longer covers the requested quantity. Unwraps to
// product.ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return product.ErrInsufficientStock
}

// ProductUnavailableError identifies a product that was deactivated or
// deleted between cart-add and checkout. Unwraps to ErrProductUnavailable.
type ProductUnavailableError struct {
	ProductID string
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.ProductID)
}

func (e *ProductUnavailableError) Unwrap() error {
	return ErrProductUnavailable
}
