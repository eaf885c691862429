package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/billing/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives and can be primed to
// fail. Safe for concurrent use.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler subscribes the mock to the given event types; none
// means wildcard.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

// EventTypes reports the subscribed event types.
func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the primed error, if any.
func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]shared.DomainEvent, len(h.handled))
	copy(result, h.handled)
	return result
}

// HandledCount reports how many events the mock has seen.
func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError primes Handle to return err on subsequent calls.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset drops recorded events and clears the primed error.
func (h *MockEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

// OrderTestEvent is a billing-order-shaped domain event for exercising
// bus and handler plumbing.
type OrderTestEvent struct {
	shared.BaseDomainEvent
	OrderCode string
}

// NewOrderTestEvent builds an event of the given type against a fresh
// order aggregate.
func NewOrderTestEvent(eventType string) *OrderTestEvent {
	return &OrderTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "DurationBillingOrder", uuid.New()),
		OrderCode:       "ORD-TESTUTIL-1",
	}
}

// NewOrderTestEventWithID builds an event with a fixed event ID, for
// idempotency scenarios that need redeliveries of "the same" event.
func NewOrderTestEventWithID(eventID uuid.UUID, eventType string) *OrderTestEvent {
	event := NewOrderTestEvent(eventType)
	event.ID = eventID
	return event
}

// WaitForCondition polls condition until it holds or timeout elapses,
// reporting whether it was met.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()
	return pollUntil(condition, timeout, interval)
}

// WaitForEventCount waits until the handler has seen at least count
// events.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()
	return WaitForCondition(t, func() bool {
		return handler.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}
