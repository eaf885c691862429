package billing

import "github.com/shopspring/decimal"

// PriceCalculator layers the free-minute allowance and the min/max amount
// constraints of a product around a raw PricingRule price.
type PriceCalculator struct{}

// NewPriceCalculator creates a new price calculator
func NewPriceCalculator() *PriceCalculator {
	return &PriceCalculator{}
}

// Calculate prices totalMinutes of usage against the product's constraints
// and the given pricing rule.
func (c *PriceCalculator) Calculate(product *Product, rule PricingRule, totalMinutes int) PriceResult {
	if totalMinutes <= 0 {
		return ZeroPriceResult(0)
	}

	freeMinutes := product.FreeMinutes
	billedMinutes := max(0, totalMinutes-freeMinutes)

	if billedMinutes == 0 {
		return ZeroPriceResult(freeMinutes, AdjustmentFreeDuration)
	}

	basePrice := rule.CalculatePrice(billedMinutes)
	finalPrice := basePrice
	var adjustments []PriceAdjustment

	if product.MinAmount != nil && finalPrice.LessThan(*product.MinAmount) {
		finalPrice = *product.MinAmount
		adjustments = append(adjustments, AdjustmentMinimumCharge)
	}

	if product.MaxAmount != nil && finalPrice.GreaterThan(*product.MaxAmount) {
		finalPrice = *product.MaxAmount
		adjustments = append(adjustments, AdjustmentMaximumCap)
	}

	return PriceResult{
		BasePrice:       basePrice,
		FinalPrice:      finalPrice,
		BillableMinutes: billedMinutes,
		FreeMinutes:     freeMinutes,
		Adjustments:     adjustments,
	}
}

// PriceDetails is the expanded view of a single price calculation
type PriceDetails struct {
	TotalMinutes    int               `json:"total_minutes"`
	FreeMinutes     int               `json:"free_minutes"`
	BilledMinutes   int               `json:"billed_minutes"`
	BasePrice       decimal.Decimal   `json:"base_price"`
	FinalPrice      decimal.Decimal   `json:"final_price"`
	Discount        decimal.Decimal   `json:"discount"`
	Adjustments     []PriceAdjustment `json:"adjustments,omitempty"`
	RuleDescription string            `json:"rule_description"`
	MinAmount       *decimal.Decimal  `json:"min_amount,omitempty"`
	MaxAmount       *decimal.Decimal  `json:"max_amount,omitempty"`
}

// Details runs Calculate and expands the result with the rule description and
// the product constraints that shaped it.
func (c *PriceCalculator) Details(product *Product, rule PricingRule, totalMinutes int) PriceDetails {
	result := c.Calculate(product, rule, totalMinutes)

	return PriceDetails{
		TotalMinutes:    totalMinutes,
		FreeMinutes:     result.FreeMinutes,
		BilledMinutes:   result.BillableMinutes,
		BasePrice:       result.BasePrice,
		FinalPrice:      result.FinalPrice,
		Discount:        result.Discount(),
		Adjustments:     result.Adjustments,
		RuleDescription: rule.Description(),
		MinAmount:       product.MinAmount,
		MaxAmount:       product.MaxAmount,
	}
}
