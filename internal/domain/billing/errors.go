package billing

import (
	"fmt"

	"github.com/billing/backend/internal/domain/shared"
)

// Billing error codes used across the domain and surfaced to callers.
const (
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrderState    = "INVALID_ORDER_STATE"
	ErrCodeInvalidPricingRule   = "INVALID_PRICING_RULE"
	ErrCodeNegativeBillingTime  = "NEGATIVE_BILLING_TIME"
	ErrCodeInvalidPrepaidAmount = "INVALID_PREPAID_AMOUNT"
	ErrCodeProductDisabled      = "PRODUCT_DISABLED"
)

// Sentinel errors for the common lookup failures
var (
	ErrProductNotFound = shared.NewDomainError(ErrCodeProductNotFound, "Duration billing product not found")
	ErrOrderNotFound   = shared.NewDomainError(ErrCodeOrderNotFound, "Duration billing order not found")
)

// NewProductNotFoundError creates a product-not-found error for a specific ID
func NewProductNotFoundError(productID string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeProductNotFound, fmt.Sprintf("Product with ID %s not found", productID))
}

// NewOrderNotFoundError creates an order-not-found error for a specific ID
func NewOrderNotFoundError(orderID string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOrderNotFound, fmt.Sprintf("Order with ID %s not found", orderID))
}

// NewInvalidOrderStateError creates an error for an operation attempted in the wrong state
func NewInvalidOrderStateError(operation string, status OrderStatus) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidOrderState, fmt.Sprintf("Cannot %s order in %s state", operation, status))
}

// NewInvalidTransitionError creates an error for an illegal status transition
func NewInvalidTransitionError(from, to OrderStatus) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidOrderState, fmt.Sprintf("Cannot transition from %s to %s", from, to))
}

// NewInvalidPricingRuleError creates an error for a malformed pricing rule
func NewInvalidPricingRuleError(reason string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidPricingRule, "Invalid pricing rule: "+reason)
}

// NewNegativeBillingTimeError guards against clock skew producing negative durations
func NewNegativeBillingTimeError(minutes int) *shared.DomainError {
	return shared.NewDomainError(ErrCodeNegativeBillingTime, fmt.Sprintf("Billing time is negative (%d minutes); refusing to bill", minutes))
}

// NewInvalidPrepaidAmountError creates an error for a negative prepaid amount
func NewInvalidPrepaidAmountError(amount string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidPrepaidAmount, fmt.Sprintf("Prepaid amount %s is invalid; must be zero or positive", amount))
}

// NewProductDisabledError creates an error for starting a session on a disabled product
func NewProductDisabledError(name string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeProductDisabled, fmt.Sprintf("Product %q is disabled and cannot start new sessions", name))
}

// ErrorCode extracts the domain error code from err, or "" when err is not a DomainError
func ErrorCode(err error) string {
	if de, ok := err.(*shared.DomainError); ok {
		return de.Code
	}
	return ""
}
