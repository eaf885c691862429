package billing

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a duration-billing product: the pricing rule plus the free-time
// allowance and the min/max amount constraints applied around it.
// The billing core reads products, it never mutates them.
type Product struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	RuleData    RuleData
	FreeMinutes int
	// FreezeMinutes is the default frozen allowance used for reporting when
	// an order accumulated no frozen time of its own.
	FreezeMinutes *int
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	Enabled       bool
	Metadata      map[string]interface{}

	rule PricingRule
}

// NewProduct creates a new duration billing product with a validated rule
func NewProduct(name string, rule PricingRule) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		RuleData:          rule.Serialize(),
		Enabled:           true,
		Metadata:          make(map[string]interface{}),
		rule:              rule,
	}, nil
}

// PricingRule reconstructs the product's pricing rule from its stored form.
// The instance is cached until SetPricingRule replaces the stored data.
func (p *Product) PricingRule() (PricingRule, error) {
	if p.rule != nil {
		return p.rule, nil
	}

	rule, err := DeserializeRule(p.RuleData)
	if err != nil {
		return nil, err
	}

	p.rule = rule
	return rule, nil
}

// SetPricingRule validates and installs a new pricing rule
func (p *Product) SetPricingRule(rule PricingRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	p.RuleData = rule.Serialize()
	p.rule = rule
	return nil
}

// SetConstraints replaces the free-minute allowance and amount clamps
func (p *Product) SetConstraints(freeMinutes int, minAmount, maxAmount *decimal.Decimal) error {
	if freeMinutes < 0 {
		return shared.NewDomainError("INVALID_FREE_MINUTES", "Free minutes cannot be negative")
	}
	if minAmount != nil && minAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_AMOUNT", "Minimum amount cannot be negative")
	}
	if maxAmount != nil && maxAmount.IsNegative() {
		return shared.NewDomainError("INVALID_MAX_AMOUNT", "Maximum amount cannot be negative")
	}
	if minAmount != nil && maxAmount != nil && minAmount.GreaterThan(*maxAmount) {
		return shared.NewDomainError("INVALID_AMOUNT_RANGE", "Minimum amount cannot exceed maximum amount")
	}

	p.FreeMinutes = freeMinutes
	p.MinAmount = minAmount
	p.MaxAmount = maxAmount
	return nil
}

// Enable marks the product as available for new billing sessions
func (p *Product) Enable() {
	p.Enabled = true
}

// Disable stops the product from starting new billing sessions
func (p *Product) Disable() {
	p.Enabled = false
}
