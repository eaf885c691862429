package billing

import "github.com/shopspring/decimal"

// PriceAdjustment tags a constraint applied during price calculation.
type PriceAdjustment string

const (
	AdjustmentFreeDuration  PriceAdjustment = "free_duration"
	AdjustmentMinimumCharge PriceAdjustment = "minimum_charge"
	AdjustmentMaximumCap    PriceAdjustment = "maximum_cap"
)

// PriceResult is the outcome of a single price calculation. It is a value,
// produced per calculation and never persisted.
//
// Adjustments is the ordered list of constraints applied, earliest first;
// the final entry dominates the price that was returned.
type PriceResult struct {
	BasePrice       decimal.Decimal   `json:"base_price"`
	FinalPrice      decimal.Decimal   `json:"final_price"`
	BillableMinutes int               `json:"billable_minutes"`
	FreeMinutes     int               `json:"free_minutes"`
	Adjustments     []PriceAdjustment `json:"adjustments,omitempty"`
}

// ZeroPriceResult returns an all-zero result, optionally tagged
func ZeroPriceResult(freeMinutes int, adjustments ...PriceAdjustment) PriceResult {
	return PriceResult{
		BasePrice:       decimal.Zero,
		FinalPrice:      decimal.Zero,
		BillableMinutes: 0,
		FreeMinutes:     freeMinutes,
		Adjustments:     adjustments,
	}
}

// Discount is the difference between base and final price. A negative value
// means a minimum-charge floor raised the price above the raw rule price.
func (r PriceResult) Discount() decimal.Decimal {
	return r.BasePrice.Sub(r.FinalPrice)
}

// HasDiscount reports whether the final price is below the base price
func (r PriceResult) HasDiscount() bool {
	return r.Discount().IsPositive()
}

// LastAdjustment returns the dominant adjustment tag, or "" when none applied
func (r PriceResult) LastAdjustment() PriceAdjustment {
	if len(r.Adjustments) == 0 {
		return ""
	}
	return r.Adjustments[len(r.Adjustments)-1]
}

// Adjusted reports whether the given adjustment was applied
func (r PriceResult) Adjusted(adjustment PriceAdjustment) bool {
	for _, a := range r.Adjustments {
		if a == adjustment {
			return true
		}
	}
	return false
}
