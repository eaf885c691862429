package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler_RecordsEvents(t *testing.T) {
	handler := NewMockEventHandler("BillingStarted", "BillingEnded")
	assert.Equal(t, []string{"BillingStarted", "BillingEnded"}, handler.EventTypes())

	event := NewOrderTestEvent("BillingStarted")
	require.NoError(t, handler.Handle(context.Background(), event))

	require.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, event, handler.Handled()[0])
}

func TestMockEventHandler_SetError(t *testing.T) {
	handler := NewMockEventHandler("BillingEnded")
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewOrderTestEvent("BillingEnded"))
	assert.Equal(t, assert.AnError, err)
}

func TestMockEventHandler_Reset(t *testing.T) {
	handler := NewMockEventHandler("OrderFrozen")
	handler.SetError(assert.AnError)
	_ = handler.Handle(context.Background(), NewOrderTestEvent("OrderFrozen"))
	require.Equal(t, 1, handler.HandledCount())

	handler.Reset()

	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), NewOrderTestEvent("OrderFrozen")))
}

func TestNewOrderTestEvent(t *testing.T) {
	event := NewOrderTestEvent("OrderCancelled")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "OrderCancelled", event.EventType())
	assert.Equal(t, "DurationBillingOrder", event.AggregateType())
	assert.False(t, event.OccurredAt().IsZero())
	assert.NotEmpty(t, event.OrderCode)
}

func TestNewOrderTestEventWithID(t *testing.T) {
	eventID := uuid.New()
	event := NewOrderTestEventWithID(eventID, "RefundRequired")

	assert.Equal(t, eventID, event.EventID())
	assert.Equal(t, "RefundRequired", event.EventType())
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(done)
		}()

		met := WaitForCondition(t, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, met)
	})

	t.Run("timeout", func(t *testing.T) {
		met := WaitForCondition(t, func() bool { return false },
			50*time.Millisecond, 10*time.Millisecond)
		assert.False(t, met)
	})
}

func TestWaitForEventCount(t *testing.T) {
	handler := NewMockEventHandler("BillingStarted")

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = handler.Handle(context.Background(), NewOrderTestEvent("BillingStarted"))
		_ = handler.Handle(context.Background(), NewOrderTestEvent("BillingStarted"))
	}()

	assert.True(t, WaitForEventCount(t, handler, 2, 200*time.Millisecond))
}
