package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/marketplace/internal/domain/order"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{80, "80"},
		{1500, "1,500"},
		{25000, "25,000"},
		{1234567, "1,234,567"},
		{1500.5, "1,500.5"},
		{-2500, "-2,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.amount), "formatAmount(%v)", tt.amount)
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	items := []order.OrderItem{
		{ProductID: "p1", Name: "Rice 25kg", Quantity: 10, UnitPrice: 80, TotalPrice: 800},
		{ProductID: "p2", Name: "Palm Oil 5L", Quantity: 2, UnitPrice: 150, TotalPrice: 300},
	}

	body := BuildOrderConfirmationBody("order-abc123", 1100, items)

	assert.Contains(t, body, "order-abc123")
	assert.Contains(t, body, "Rice 25kg")
	assert.Contains(t, body, "Palm Oil 5L")
	assert.Contains(t, body, "800 SLE")
	assert.Contains(t, body, "1,100 SLE")
	assert.Contains(t, body, "cash on delivery")
}

func TestBuildOrderConfirmationBodyFallsBackToProductID(t *testing.T) {
	items := []order.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 50, TotalPrice: 50},
	}

	body := BuildOrderConfirmationBody("order-1", 50, items)
	assert.Contains(t, body, "p1")
}

func TestBuildStatusUpdateBody(t *testing.T) {
	body := BuildStatusUpdateBody("order-1", order.StatusShipped)
	assert.Contains(t, body, "order-1")
	assert.Contains(t, body, "on its way")

	// Unknown statuses still render a generic message.
	body = BuildStatusUpdateBody("order-1", order.Status("archived"))
	assert.Contains(t, body, "archived")
}
