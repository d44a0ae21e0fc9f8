package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/marketplace/internal/api/middleware"
	"github.com/example/marketplace/internal/checkout"
	"github.com/example/marketplace/internal/domain/cart"
	"github.com/example/marketplace/internal/domain/order"
	"github.com/example/marketplace/internal/domain/pricing"
	"github.com/example/marketplace/internal/domain/product"
	"github.com/example/marketplace/internal/domain/user"
)

type Handlers struct {
	products  *product.Service
	orders    *order.Service
	users     *user.Service
	carts     *cart.Manager
	assembler *checkout.Assembler
}

func NewHandlers(products *product.Service, orders *order.Service, users *user.Service, carts *cart.Manager, assembler *checkout.Assembler) *Handlers {
	return &Handlers{
		products:  products,
		orders:    orders,
		users:     users,
		carts:     carts,
		assembler: assembler,
	}
}

// Product Handlers

// GetProducts returns the public storefront catalog, active listings only.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), true)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type productRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ImageURL    string              `json:"image_url"`
	Stock       int                 `json:"stock"`
	PriceTiers  []pricing.PriceTier `json:"price_tiers"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), middleware.GetUserID(r.Context()),
		req.Name, req.Description, req.ImageURL, req.Stock, req.PriceTiers)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

type productUpdateRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	ImageURL    *string             `json:"image_url"`
	Stock       *int                `json:"stock"`
	PriceTiers  []pricing.PriceTier `json:"price_tiers"`
	IsActive    *bool               `json:"is_active"`
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Update(r.Context(), id, middleware.GetUserID(r.Context()), isAdmin(r), product.Update{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		PriceTiers:  req.PriceTiers,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct deactivates the listing. Existing orders keep their copy of
// the product data, so nothing is ever removed from storage.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	if err := h.products.Deactivate(r.Context(), id, middleware.GetUserID(r.Context()), isAdmin(r)); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deactivated"})
}

// GetSellerProducts returns the caller's own listings, inactive ones included.
func (h *Handlers) GetSellerProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListBySeller(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Cart Handlers

type cartResponse struct {
	Items       []cart.Line `json:"items"`
	ItemCount   int         `json:"item_count"`
	TotalAmount float64     `json:"total_amount"`
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(middleware.GetUserID(r.Context()))
	respondJSON(w, http.StatusOK, cartResponse{
		Items:       c.Lines(),
		ItemCount:   c.ItemCount(),
		TotalAmount: c.Total(),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !p.IsActive {
		respondJSONError(w, "Product is no longer available", http.StatusConflict)
		return
	}

	c := h.carts.Get(middleware.GetUserID(r.Context()))
	line, err := c.AddLine(cart.ProductSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Stock: p.Stock,
		Tiers: p.PriceTiers,
	}, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, line)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c := h.carts.Get(middleware.GetUserID(r.Context()))
	if err := c.UpdateQuantity(productID, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse{
		Items:       c.Lines(),
		ItemCount:   c.ItemCount(),
		TotalAmount: c.Total(),
	})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	c := h.carts.Get(middleware.GetUserID(r.Context()))
	c.RemoveLine(productID)

	w.WriteHeader(http.StatusOK)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var shipping checkout.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&shipping); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.assembler.PlaceOrder(r.Context(), middleware.GetUserID(r.Context()), shipping)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/status")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// Buyers see only their own orders; admins see all.
	if o.UserID != middleware.GetUserID(r.Context()) && !isAdmin(r) {
		respondJSONError(w, "Forbidden", http.StatusForbidden)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, target)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

// Admin Handlers

func (h *Handlers) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/users/"), "/status")
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// UpdateUserStatus activates or deactivates an account. Admins cannot
// deactivate their own account, so there is always a way back in.
func (h *Handlers) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/users/"), "/status")

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !req.IsActive && id == middleware.GetUserID(r.Context()) {
		respondJSONError(w, "Cannot deactivate your own account", http.StatusConflict)
		return
	}

	u, err := h.users.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// A deactivated buyer loses the session cart along with access.
	if !req.IsActive {
		h.carts.Drop(id)
	}

	respondJSON(w, http.StatusOK, u)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondDomainError maps domain errors onto HTTP statuses so handlers never
// leak internal errors with a 200-series code.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, user.ErrUserNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, product.ErrNotOwner):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingShipping),
		errors.Is(err, pricing.ErrMalformedTiers),
		errors.Is(err, pricing.ErrInvalidQuantity),
		errors.Is(err, pricing.ErrNoPriceTiers),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, order.ErrUnknownStatus):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, checkout.ErrProductUnavailable),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderDelivered),
		errors.Is(err, order.ErrOrderCancelled):
		respondJSONError(w, err.Error(), http.StatusConflict)
	default:
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// isAdmin checks if the current user has admin role
func isAdmin(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == string(user.RoleAdmin)
}
