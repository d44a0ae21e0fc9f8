package cart

import "sync"

// Manager hands out one Cart per buyer session. Each cart has a single
// owner, so only the session map itself needs locking.
type Manager struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewManager() *Manager {
	return &Manager{carts: make(map[string]*Cart)}
}

// Get returns the buyer's cart, creating an empty one on first use.
func (m *Manager) Get(userID string) *Cart {
	m.mu.RLock()
	c, ok := m.carts[userID]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		return c
	}
	c = New()
	m.carts[userID] = c
	return c
}

// Drop tears down the buyer's cart, e.g. on logout.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
}
