package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a duration billing session. It is mutated only through the
// billing service and the order state machine, and callers must serialize
// writes per order (the core holds no lock of its own).
type Order struct {
	shared.BaseAggregateRoot
	ProductID     uuid.UUID
	UserID        string
	OrderCode     string
	Status        OrderStatus
	StartTime     time.Time
	EndTime       *time.Time
	PaymentTime   *time.Time
	FrozenAt      *time.Time
	FrozenMinutes int
	PrepaidAmount decimal.Decimal
	ActualAmount  *decimal.Decimal
	Metadata      map[string]interface{}
}

// NewOrder creates a billing order starting now. A positive prepaid amount
// starts the order in PREPAID status, otherwise ACTIVE.
func NewOrder(productID uuid.UUID, userID, orderCode string, startTime time.Time, prepaidAmount decimal.Decimal) (*Order, error) {
	if userID == "" {
		return nil, shared.NewDomainError("INVALID_USER_ID", "User ID cannot be empty")
	}
	if orderCode == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	}
	if prepaidAmount.IsNegative() {
		return nil, NewInvalidPrepaidAmountError(prepaidAmount.String())
	}

	status := OrderStatusActive
	if prepaidAmount.IsPositive() {
		status = OrderStatusPrepaid
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		UserID:            userID,
		OrderCode:         orderCode,
		Status:            status,
		StartTime:         startTime,
		PrepaidAmount:     prepaidAmount,
		Metadata:          make(map[string]interface{}),
	}, nil
}

// SetMetadata copies the string-keyed metadata onto the order verbatim
func (o *Order) SetMetadata(metadata map[string]interface{}) {
	if metadata == nil {
		return
	}
	o.Metadata = make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		o.Metadata[k] = v
	}
}

// ElapsedMinutes is the whole wall-clock minutes since the session started
func (o *Order) ElapsedMinutes(now time.Time) int {
	return int(now.Sub(o.StartTime) / time.Minute)
}

// BillableMinutesAt is the billable duration at the given instant: elapsed
// wall minutes minus the cumulative frozen minutes, including a pause that
// is still open. Free minutes are the calculator's concern, not the order's.
func (o *Order) BillableMinutesAt(now time.Time) int {
	frozen := o.FrozenMinutes
	if o.FrozenAt != nil {
		frozen += max(0, int(now.Sub(*o.FrozenAt)/time.Minute))
	}
	return o.ElapsedMinutes(now) - frozen
}

// MarkFrozen records the instant billing was paused
func (o *Order) MarkFrozen(at time.Time) {
	o.FrozenAt = &at
}

// AccumulateFrozen adds the minutes elapsed since freezing to the cumulative
// frozen total and clears the freeze marker.
func (o *Order) AccumulateFrozen(now time.Time) {
	if o.FrozenAt == nil {
		return
	}
	frozen := int(now.Sub(*o.FrozenAt) / time.Minute)
	o.FrozenMinutes += max(0, frozen)
	o.FrozenAt = nil
}

// ActualBillingMinutes is the reporting view of billed time for a finished
// session: total minutes minus frozen minutes, where a session that froze
// nothing falls back to the product's default frozen allowance.
func (o *Order) ActualBillingMinutes(product *Product) int {
	if o.EndTime == nil {
		return 0
	}

	totalMinutes := int(o.EndTime.Sub(o.StartTime) / time.Minute)

	frozenMinutes := o.FrozenMinutes
	if frozenMinutes == 0 && product != nil && product.FreezeMinutes != nil {
		frozenMinutes = *product.FreezeMinutes
	}

	return max(0, totalMinutes-frozenMinutes)
}

// RefundAmount is the prepaid excess over the actual amount, never negative.
// Zero while the actual amount is still unknown.
func (o *Order) RefundAmount() decimal.Decimal {
	if o.ActualAmount == nil {
		return decimal.Zero
	}
	if o.PrepaidAmount.GreaterThan(*o.ActualAmount) {
		return o.PrepaidAmount.Sub(*o.ActualAmount)
	}
	return decimal.Zero
}

// RequiresAdditionalPayment reports whether the actual amount exceeded the
// prepaid amount. False while the actual amount is still unknown.
func (o *Order) RequiresAdditionalPayment() bool {
	if o.ActualAmount == nil {
		return false
	}
	return o.ActualAmount.GreaterThan(o.PrepaidAmount)
}

// AdditionalPaymentAmount is the shortfall the user still owes, never negative
func (o *Order) AdditionalPaymentAmount() decimal.Decimal {
	if !o.RequiresAdditionalPayment() {
		return decimal.Zero
	}
	return o.ActualAmount.Sub(o.PrepaidAmount)
}
