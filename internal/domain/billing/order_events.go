package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "DurationBillingOrder"

// Event type constants
const (
	EventTypeBillingStarted = "BillingStarted"
	EventTypeOrderFrozen    = "OrderFrozen"
	EventTypeOrderResumed   = "OrderResumed"
	EventTypeBillingEnded   = "BillingEnded"
	EventTypeOrderCancelled = "OrderCancelled"
	EventTypeRefundRequired = "RefundRequired"
)

// BillingStartedEvent is published when a billing session starts
type BillingStartedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	OrderCode     string          `json:"order_code"`
	ProductID     uuid.UUID       `json:"product_id"`
	UserID        string          `json:"user_id"`
	StartTime     time.Time       `json:"start_time"`
	PrepaidAmount decimal.Decimal `json:"prepaid_amount"`
}

// NewBillingStartedEvent creates a new BillingStartedEvent
func NewBillingStartedEvent(order *Order) *BillingStartedEvent {
	return &BillingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillingStarted, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		ProductID:       order.ProductID,
		UserID:          order.UserID,
		StartTime:       order.StartTime,
		PrepaidAmount:   order.PrepaidAmount,
	}
}

// OrderFrozenEvent is published when billing on an order is paused
type OrderFrozenEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	OrderCode      string          `json:"order_code"`
	UserID         string          `json:"user_id"`
	FrozenAt       time.Time       `json:"frozen_at"`
	SnapshotAmount decimal.Decimal `json:"snapshot_amount"`
}

// NewOrderFrozenEvent creates a new OrderFrozenEvent
func NewOrderFrozenEvent(order *Order, snapshotAmount decimal.Decimal) *OrderFrozenEvent {
	event := &OrderFrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFrozen, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		UserID:          order.UserID,
		SnapshotAmount:  snapshotAmount,
	}
	if order.FrozenAt != nil {
		event.FrozenAt = *order.FrozenAt
	}
	return event
}

// OrderResumedEvent is published when billing on a frozen order resumes
type OrderResumedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderCode     string    `json:"order_code"`
	UserID        string    `json:"user_id"`
	FrozenMinutes int       `json:"frozen_minutes"`
}

// NewOrderResumedEvent creates a new OrderResumedEvent
func NewOrderResumedEvent(order *Order) *OrderResumedEvent {
	return &OrderResumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderResumed, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		UserID:          order.UserID,
		FrozenMinutes:   order.FrozenMinutes,
	}
}

// BillingEndedEvent is published when a billing session completes,
// carrying the final price calculation.
type BillingEndedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID   `json:"order_id"`
	OrderCode string      `json:"order_code"`
	UserID    string      `json:"user_id"`
	EndTime   time.Time   `json:"end_time"`
	Price     PriceResult `json:"price"`
}

// NewBillingEndedEvent creates a new BillingEndedEvent
func NewBillingEndedEvent(order *Order, price PriceResult) *BillingEndedEvent {
	event := &BillingEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillingEnded, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		UserID:          order.UserID,
		Price:           price,
	}
	if order.EndTime != nil {
		event.EndTime = *order.EndTime
	}
	return event
}

// OrderCancelledEvent is published when a billing session is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID `json:"order_id"`
	OrderCode string    `json:"order_code"`
	UserID    string    `json:"user_id"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		UserID:          order.UserID,
	}
}

// RefundRequiredEvent is published after billing ends when the prepaid
// amount exceeded the final price.
type RefundRequiredEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	OrderCode    string          `json:"order_code"`
	UserID       string          `json:"user_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// NewRefundRequiredEvent creates a new RefundRequiredEvent
func NewRefundRequiredEvent(order *Order, refundAmount decimal.Decimal) *RefundRequiredEvent {
	return &RefundRequiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRequired, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderCode:       order.OrderCode,
		UserID:          order.UserID,
		RefundAmount:    refundAmount,
	}
}
