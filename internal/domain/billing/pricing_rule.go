package billing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rule type discriminators used in the persisted representation.
const (
	RuleTypeHourly = "hourly"
	RuleTypeTiered = "tiered"
)

// PricingRule is a duration-to-price strategy. Implementations form a closed
// set resolved at compile time through DeserializeRule; the persisted form
// carries an explicit type discriminator instead of a type name.
type PricingRule interface {
	// CalculatePrice returns the price for the given billable minutes.
	// Zero or negative minutes always price to zero.
	CalculatePrice(minutes int) decimal.Decimal
	// Description returns a human-readable summary of the rule
	Description() string
	// Validate reports whether the rule configuration is usable
	Validate() error
	// Serialize returns the storable tagged representation of the rule
	Serialize() RuleData
}

// RuleData is the persisted pricing-rule representation: a tagged map with a
// "type" discriminator plus rule-specific fields. It round-trips through
// Serialize/DeserializeRule without loss.
type RuleData map[string]interface{}

// RuleType returns the type discriminator, or "" when absent
func (d RuleData) RuleType() string {
	t, _ := d["type"].(string)
	return t
}

// DeserializeRule reconstructs a PricingRule from its stored representation.
// Unknown or missing discriminators fail with InvalidPricingRule.
func DeserializeRule(data RuleData) (PricingRule, error) {
	switch data.RuleType() {
	case RuleTypeHourly:
		return deserializeHourlyRule(data)
	case RuleTypeTiered:
		return deserializeTieredRule(data)
	default:
		return nil, NewInvalidPricingRuleError(fmt.Sprintf("unknown rule type %q", data.RuleType()))
	}
}

// decimalField reads a decimal value from stored rule data. Values may arrive
// as decimal, string, json.Number, float64 or int depending on the codec that
// produced the map.
func decimalField(data RuleData, key string) (decimal.Decimal, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return decimal.Zero, NewInvalidPricingRuleError(key + " is required")
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, NewInvalidPricingRuleError(key + " must be numeric")
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, NewInvalidPricingRuleError(key + " must be numeric")
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, NewInvalidPricingRuleError(key + " must be numeric")
	}
}

// intField reads an integer value from stored rule data
func intField(raw interface{}, key string) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, NewInvalidPricingRuleError(key + " must be an integer")
		}
		return int(n), nil
	default:
		return 0, NewInvalidPricingRuleError(key + " must be an integer")
	}
}
