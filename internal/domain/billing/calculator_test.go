package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newTestProduct(t *testing.T, rule PricingRule, freeMinutes int, minAmount, maxAmount *decimal.Decimal) *Product {
	t.Helper()
	product, err := NewProduct("Test Product", rule)
	require.NoError(t, err)
	require.NoError(t, product.SetConstraints(freeMinutes, minAmount, maxAmount))
	return product
}

func TestPriceCalculator_NonPositiveMinutes(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 15, nil, nil)

	for _, minutes := range []int{0, -5} {
		result := calc.Calculate(product, rule, minutes)
		assert.True(t, result.BasePrice.IsZero())
		assert.True(t, result.FinalPrice.IsZero())
		assert.Equal(t, 0, result.BillableMinutes)
		assert.Empty(t, result.Adjustments)
	}
}

func TestPriceCalculator_FullyCoveredByFreeMinutes(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 30, nil, nil)

	for _, minutes := range []int{1, 29, 30} {
		result := calc.Calculate(product, rule, minutes)
		assert.True(t, result.FinalPrice.IsZero(), "minutes=%d", minutes)
		assert.Equal(t, 0, result.BillableMinutes)
		assert.Equal(t, 30, result.FreeMinutes)
		assert.Equal(t, AdjustmentFreeDuration, result.LastAdjustment())
	}
}

func TestPriceCalculator_FreeMinutesReduceBilledTime(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 15, nil, nil)

	result := calc.Calculate(product, rule, 75)
	assert.Equal(t, 60, result.BillableMinutes)
	assert.True(t, result.BasePrice.Equal(dec("100")), "got=%s", result.BasePrice)
	assert.True(t, result.FinalPrice.Equal(dec("100")))
	assert.Empty(t, result.Adjustments)
}

func TestPriceCalculator_MinimumCharge(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("10"), RoundingUp)
	product := newTestProduct(t, rule, 0, decPtr("50"), nil)

	result := calc.Calculate(product, rule, 60) // base 10, floor 50
	assert.True(t, result.BasePrice.Equal(dec("10")))
	assert.True(t, result.FinalPrice.Equal(dec("50")))
	assert.Equal(t, AdjustmentMinimumCharge, result.LastAdjustment())
	// Raising to the floor makes the discount negative
	assert.True(t, result.Discount().Equal(dec("-40")), "got=%s", result.Discount())
	assert.False(t, result.HasDiscount())
}

func TestPriceCalculator_MaximumCap(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 0, nil, decPtr("250"))

	result := calc.Calculate(product, rule, 300) // base 500, cap 250
	assert.True(t, result.BasePrice.Equal(dec("500")))
	assert.True(t, result.FinalPrice.Equal(dec("250")))
	assert.Equal(t, AdjustmentMaximumCap, result.LastAdjustment())
	assert.True(t, result.HasDiscount())
	assert.True(t, result.Discount().Equal(dec("250")))
}

// A floor above the cap applies both adjustments in order; the cap wins.
func TestPriceCalculator_MinimumThenMaximum(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("1"), RoundingUp)
	product := &Product{
		Name:        "Inverted Clamp",
		FreeMinutes: 0,
		MinAmount:   decPtr("100"),
		MaxAmount:   decPtr("80"),
	}

	result := calc.Calculate(product, rule, 60) // base 1 -> floor 100 -> cap 80
	assert.True(t, result.FinalPrice.Equal(dec("80")))
	assert.Equal(t, []PriceAdjustment{AdjustmentMinimumCharge, AdjustmentMaximumCap}, result.Adjustments)
	assert.Equal(t, AdjustmentMaximumCap, result.LastAdjustment())
	assert.True(t, result.Adjusted(AdjustmentMinimumCharge))
}

// Scenario: hourly 100/hr rounded up, 15 free minutes, clamps [50, 800],
// 165 elapsed minutes: 150 billable -> 3 hours -> 300, inside the clamps.
func TestPriceCalculator_HourlyScenario(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 15, decPtr("50"), decPtr("800"))

	result := calc.Calculate(product, rule, 165)
	assert.Equal(t, 150, result.BillableMinutes)
	assert.True(t, result.BasePrice.Equal(dec("300")), "got=%s", result.BasePrice)
	assert.True(t, result.FinalPrice.Equal(dec("300")))
	assert.Empty(t, result.Adjustments)
}

// Scenario: the standard tier ladder with 5 free minutes over an 8 hour
// session: 475 billable minutes across all four tiers -> 161.25.
func TestPriceCalculator_TieredScenario(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewTieredPricingRule(standardTiers())
	product := newTestProduct(t, rule, 5, nil, nil)

	result := calc.Calculate(product, rule, 480)
	assert.Equal(t, 475, result.BillableMinutes)
	assert.True(t, result.BasePrice.Equal(dec("161.25")), "got=%s", result.BasePrice)
	assert.True(t, result.FinalPrice.Equal(dec("161.25")))
}

func TestPriceCalculator_Details(t *testing.T) {
	calc := NewPriceCalculator()
	rule := NewHourlyPricingRule(dec("100"), RoundingUp)
	product := newTestProduct(t, rule, 15, decPtr("50"), decPtr("800"))

	details := calc.Details(product, rule, 165)
	assert.Equal(t, 165, details.TotalMinutes)
	assert.Equal(t, 15, details.FreeMinutes)
	assert.Equal(t, 150, details.BilledMinutes)
	assert.True(t, details.FinalPrice.Equal(dec("300")))
	assert.True(t, details.Discount.IsZero())
	assert.Contains(t, details.RuleDescription, "per hour")
	require.NotNil(t, details.MinAmount)
	assert.True(t, details.MinAmount.Equal(dec("50")))
}
