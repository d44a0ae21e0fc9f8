package mocks

import (
	"context"
	"sync"
)

// PublishCall records parameters passed to PublishEvent.
type PublishCall struct {
	Key       string
	EventType string
	Payload   any
}

// MockPublisher is an in-memory implementation of order.Publisher for
// testing.
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishEvent(ctx context.Context, key, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, EventType: eventType, Payload: payload})
	return m.PublishErr
}
