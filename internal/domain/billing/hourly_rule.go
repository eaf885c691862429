package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// HourlyPricingRule charges a flat rate per hour, rounding the elapsed
// duration to whole hours according to the configured rounding mode.
type HourlyPricingRule struct {
	PricePerHour decimal.Decimal
	Rounding     RoundingMode
}

// NewHourlyPricingRule creates a new flat hourly rate rule
func NewHourlyPricingRule(pricePerHour decimal.Decimal, rounding RoundingMode) *HourlyPricingRule {
	return &HourlyPricingRule{
		PricePerHour: pricePerHour,
		Rounding:     rounding,
	}
}

// CalculatePrice converts minutes to rounded hours and multiplies by the rate
func (r *HourlyPricingRule) CalculatePrice(minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}

	hours := decimal.NewFromInt(int64(minutes)).Div(sixty)

	var roundedHours decimal.Decimal
	switch r.Rounding {
	case RoundingDown:
		roundedHours = hours.Floor()
	case RoundingNearest:
		// Round(0) rounds half away from zero, which is half-up for
		// the non-negative durations handled here.
		roundedHours = hours.Round(0)
	default:
		roundedHours = hours.Ceil()
	}

	return roundedHours.Mul(r.PricePerHour)
}

// Description returns a human-readable summary of the rule
func (r *HourlyPricingRule) Description() string {
	return fmt.Sprintf("%s per hour, rounded %s", r.PricePerHour.StringFixed(2), r.Rounding)
}

// Validate checks that the rate is non-negative and the rounding mode is known
func (r *HourlyPricingRule) Validate() error {
	if r.PricePerHour.IsNegative() {
		return NewInvalidPricingRuleError("price_per_hour must not be negative")
	}
	if !r.Rounding.IsValid() {
		return NewInvalidPricingRuleError(fmt.Sprintf("unknown rounding mode %q", r.Rounding))
	}
	return nil
}

// Serialize returns the storable tagged representation of the rule
func (r *HourlyPricingRule) Serialize() RuleData {
	return RuleData{
		"type":           RuleTypeHourly,
		"price_per_hour": r.PricePerHour.String(),
		"rounding_mode":  string(r.Rounding),
	}
}

func deserializeHourlyRule(data RuleData) (*HourlyPricingRule, error) {
	price, err := decimalField(data, "price_per_hour")
	if err != nil {
		return nil, err
	}

	rounding := RoundingUp
	if raw, ok := data["rounding_mode"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, NewInvalidPricingRuleError("rounding_mode must be a string")
		}
		rounding = RoundingMode(s)
	}
	if !rounding.IsValid() {
		return nil, NewInvalidPricingRuleError(fmt.Sprintf("unknown rounding mode %q", rounding))
	}

	return NewHourlyPricingRule(price, rounding), nil
}

var _ PricingRule = (*HourlyPricingRule)(nil)
