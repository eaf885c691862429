package billing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// TieredPricingRule prices each duration band at its own hourly rate and sums
// the bands covered by the billed duration. Tiers must form a contiguous
// partition starting at minute 0 and ending with an open-ended tier.
type TieredPricingRule struct {
	Tiers []PriceTier
}

// NewTieredPricingRule creates a rate-by-duration-band rule
func NewTieredPricingRule(tiers []PriceTier) *TieredPricingRule {
	return &TieredPricingRule{Tiers: tiers}
}

// CalculatePrice sums the per-tier overlap prices. Tiers are non-overlapping,
// so summation order does not affect the result.
func (r *TieredPricingRule) CalculatePrice(minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, tier := range r.Tiers {
		overlap := tier.ApplicableMinutes(minutes)
		if overlap > 0 {
			// Multiply before dividing so exact tier prices stay exact.
			total = total.Add(decimal.NewFromInt(int64(overlap)).Mul(tier.PricePerHour).Div(sixty))
		}
	}

	return total
}

// Description returns a human-readable summary of the rule
func (r *TieredPricingRule) Description() string {
	return fmt.Sprintf("Tiered pricing with %d tiers", len(r.Tiers))
}

// Validate checks that the tiers form a gap-free, overlap-free partition from
// minute 0 with non-negative rates and an open-ended last tier.
func (r *TieredPricingRule) Validate() error {
	if len(r.Tiers) == 0 {
		return NewInvalidPricingRuleError("tier list is empty")
	}

	for _, tier := range r.Tiers {
		if tier.PricePerHour.IsNegative() {
			return NewInvalidPricingRuleError("tier price_per_hour must not be negative")
		}
	}

	sorted := r.sortedTiers()

	if sorted[0].FromMinutes != 0 {
		return NewInvalidPricingRuleError("first tier must start at minute 0")
	}

	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]
		if current.ToMinutes == nil {
			return NewInvalidPricingRuleError("only the last tier may be open-ended")
		}
		if *current.ToMinutes != next.FromMinutes {
			return NewInvalidPricingRuleError(fmt.Sprintf("tiers are not contiguous at minute %d", next.FromMinutes))
		}
	}

	if !sorted[len(sorted)-1].IsOpenEnded() {
		return NewInvalidPricingRuleError("last tier must be open-ended")
	}

	return nil
}

func (r *TieredPricingRule) sortedTiers() []PriceTier {
	sorted := make([]PriceTier, len(r.Tiers))
	copy(sorted, r.Tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FromMinutes < sorted[j].FromMinutes
	})
	return sorted
}

// Serialize returns the storable tagged representation of the rule
func (r *TieredPricingRule) Serialize() RuleData {
	tiers := make([]map[string]interface{}, 0, len(r.Tiers))
	for _, tier := range r.Tiers {
		entry := map[string]interface{}{
			"from_minutes":   tier.FromMinutes,
			"price_per_hour": tier.PricePerHour.String(),
		}
		if tier.ToMinutes != nil {
			entry["to_minutes"] = *tier.ToMinutes
		}
		tiers = append(tiers, entry)
	}

	return RuleData{
		"type":  RuleTypeTiered,
		"tiers": tiers,
	}
}

func deserializeTieredRule(data RuleData) (*TieredPricingRule, error) {
	rawTiers, ok := data["tiers"]
	if !ok {
		return nil, NewInvalidPricingRuleError("tiers is required")
	}

	entries, err := tierEntries(rawTiers)
	if err != nil {
		return nil, err
	}

	tiers := make([]PriceTier, 0, len(entries))
	for _, entry := range entries {
		from, err := intField(entry["from_minutes"], "from_minutes")
		if err != nil {
			return nil, err
		}

		price, err := decimalField(RuleData(entry), "price_per_hour")
		if err != nil {
			return nil, err
		}

		tier := NewOpenPriceTier(from, price)
		if rawTo, ok := entry["to_minutes"]; ok && rawTo != nil {
			to, err := intField(rawTo, "to_minutes")
			if err != nil {
				return nil, err
			}
			tier = NewPriceTier(from, to, price)
		}

		tiers = append(tiers, tier)
	}

	return NewTieredPricingRule(tiers), nil
}

// tierEntries normalizes the stored tier list, which JSON decoding may
// produce as []interface{} and in-process construction as typed slices.
func tierEntries(raw interface{}) ([]map[string]interface{}, error) {
	switch v := raw.(type) {
	case []map[string]interface{}:
		return v, nil
	case []interface{}:
		entries := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, NewInvalidPricingRuleError("each tier must be an object")
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, NewInvalidPricingRuleError("tiers must be a list")
	}
}

var _ PricingRule = (*TieredPricingRule)(nil)
