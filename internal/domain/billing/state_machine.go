package billing

// OrderStateMachine validates and executes order lifecycle transitions.
// It mutates nothing but the order status.
type OrderStateMachine struct{}

// NewOrderStateMachine creates a new order state machine
func NewOrderStateMachine() *OrderStateMachine {
	return &OrderStateMachine{}
}

// TransitionTo moves the order to the target status, failing with
// InvalidOrderState when the transition is not in the lifecycle table.
func (m *OrderStateMachine) TransitionTo(order *Order, target OrderStatus) error {
	if !order.Status.CanTransitionTo(target) {
		return NewInvalidTransitionError(order.Status, target)
	}

	order.Status = target
	return nil
}

// CanFreeze reports whether billing on the order can be paused
func (m *OrderStateMachine) CanFreeze(order *Order) bool {
	return order.Status == OrderStatusActive
}

// CanResume reports whether billing on the order can be resumed
func (m *OrderStateMachine) CanResume(order *Order) bool {
	return order.Status == OrderStatusFrozen
}

// CanComplete reports whether the order can be completed
func (m *OrderStateMachine) CanComplete(order *Order) bool {
	switch order.Status {
	case OrderStatusActive, OrderStatusFrozen, OrderStatusPrepaid:
		return true
	}
	return false
}

// CanCancel reports whether the order can be cancelled
func (m *OrderStateMachine) CanCancel(order *Order) bool {
	return order.Status == OrderStatusActive || order.Status == OrderStatusFrozen
}

// IsTerminal reports whether the order reached a terminal state
func (m *OrderStateMachine) IsTerminal(order *Order) bool {
	return order.Status.IsTerminal()
}
