package billing

// OrderStatus represents the lifecycle state of a duration billing order
type OrderStatus string

const (
	OrderStatusActive         OrderStatus = "active"
	OrderStatusFrozen         OrderStatus = "frozen"
	OrderStatusPrepaid        OrderStatus = "prepaid"
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusActive, OrderStatusFrozen, OrderStatusPrepaid,
		OrderStatusPendingPayment, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusActive:
		return target == OrderStatusFrozen || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusFrozen:
		return target == OrderStatusActive || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusPrepaid:
		return target == OrderStatusCompleted || target == OrderStatusPendingPayment
	case OrderStatusPendingPayment:
		return target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}
