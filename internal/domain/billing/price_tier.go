package billing

import (
	"github.com/shopspring/decimal"
)

// PriceTier is a contiguous duration band with its own hourly rate.
// A nil ToMinutes marks the open-ended final tier.
type PriceTier struct {
	FromMinutes  int
	ToMinutes    *int
	PricePerHour decimal.Decimal
}

// NewPriceTier creates a bounded price tier
func NewPriceTier(fromMinutes, toMinutes int, pricePerHour decimal.Decimal) PriceTier {
	return PriceTier{
		FromMinutes:  fromMinutes,
		ToMinutes:    &toMinutes,
		PricePerHour: pricePerHour,
	}
}

// NewOpenPriceTier creates the open-ended final tier
func NewOpenPriceTier(fromMinutes int, pricePerHour decimal.Decimal) PriceTier {
	return PriceTier{
		FromMinutes:  fromMinutes,
		PricePerHour: pricePerHour,
	}
}

// IsOpenEnded reports whether the tier has no upper bound
func (t PriceTier) IsOpenEnded() bool {
	return t.ToMinutes == nil
}

// ApplicableMinutes returns how many of totalMinutes fall inside this tier
func (t PriceTier) ApplicableMinutes(totalMinutes int) int {
	if totalMinutes <= t.FromMinutes {
		return 0
	}

	end := totalMinutes
	if t.ToMinutes != nil {
		end = *t.ToMinutes
	}

	minutesInTier := min(totalMinutes, end) - t.FromMinutes
	return max(0, minutesInTier)
}

// Contains reports whether a duration of the given minutes falls in this tier
func (t PriceTier) Contains(minutes int) bool {
	return minutes >= t.FromMinutes && (t.ToMinutes == nil || minutes < *t.ToMinutes)
}
