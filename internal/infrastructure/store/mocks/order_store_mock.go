package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/marketplace/internal/domain/order"
)

// StatusCall records parameters passed to UpdateStatus.
type StatusCall struct {
	OrderID     string
	Status      order.Status
	DeliveredAt *time.Time
}

// MockOrderStore is an in-memory implementation of order.Store for testing.
type MockOrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order

	// For tracking calls and injecting failures in tests
	CreateCalls     int
	CreateErr       error
	UpdateStatusErr error
	StatusCalls     []StatusCall
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]*order.Order)}
}

// Seed puts an order into the store without going through Create.
func (m *MockOrderStore) Seed(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
}

func (m *MockOrderStore) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := *o
			orders = append(orders, &cp)
		}
	}
	return orders, nil
}

func (m *MockOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*order.Order
	for _, o := range m.orders {
		cp := *o
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, deliveredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls = append(m.StatusCalls, StatusCall{OrderID: id, Status: status, DeliveredAt: deliveredAt})
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	o, ok := m.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	o.DeliveredAt = deliveredAt
	o.UpdatedAt = time.Now()
	return nil
}
