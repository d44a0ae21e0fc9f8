package mocks

import (
	"context"
	"sync"

	"github.com/example/marketplace/internal/domain/product"
)

// StockCall records parameters passed to DecrementStock / IncrementStock.
type StockCall struct {
	ProductID string
	Quantity  int
}

// MockProductStore is an in-memory implementation of product.Store for
// testing.
type MockProductStore struct {
	mu       sync.Mutex
	products map[string]*product.Product

	// For tracking calls and injecting failures in tests
	DecrementCalls []StockCall
	IncrementCalls []StockCall
	DecrementErr   map[string]error
	CreateErr      error
	UpdateErr      error
}

func NewMockProductStore() *MockProductStore {
	return &MockProductStore{
		products:     make(map[string]*product.Product),
		DecrementErr: make(map[string]error),
	}
}

// Seed puts a product into the store without going through Create.
func (m *MockProductStore) Seed(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
}

// Stock returns the current stock of a seeded product.
func (m *MockProductStore) Stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.Stock
	}
	return 0
}

func (m *MockProductStore) Create(ctx context.Context, p *product.Product) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Seed(p)
	return nil
}

func (m *MockProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []*product.Product
	for _, p := range m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		products = append(products, &cp)
	}
	return products, nil
}

func (m *MockProductStore) ListBySeller(ctx context.Context, sellerID string) ([]*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []*product.Product
	for _, p := range m.products {
		if p.SellerID == sellerID {
			cp := *p
			products = append(products, &cp)
		}
	}
	return products, nil
}

func (m *MockProductStore) Update(ctx context.Context, p *product.Product) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockProductStore) DecrementStock(ctx context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DecrementCalls = append(m.DecrementCalls, StockCall{ProductID: id, Quantity: quantity})

	if err, ok := m.DecrementErr[id]; ok {
		return err
	}
	p, ok := m.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock < quantity {
		return product.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *MockProductStore) IncrementStock(ctx context.Context, id string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls = append(m.IncrementCalls, StockCall{ProductID: id, Quantity: quantity})

	p, ok := m.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	p.Stock += quantity
	return nil
}
