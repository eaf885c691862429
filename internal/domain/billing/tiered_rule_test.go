package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standardTiers mirrors a typical duration ladder: the rate drops as the
// session gets longer.
func standardTiers() []PriceTier {
	return []PriceTier{
		NewPriceTier(0, 30, dec("30")),
		NewPriceTier(30, 120, dec("25")),
		NewPriceTier(120, 360, dec("20")),
		NewOpenPriceTier(360, dec("15")),
	}
}

func TestTieredPricingRule_CalculatePrice_NonPositiveMinutes(t *testing.T) {
	rule := NewTieredPricingRule(standardTiers())

	for _, minutes := range []int{0, -1, -500} {
		assert.True(t, rule.CalculatePrice(minutes).IsZero(), "minutes=%d", minutes)
	}
}

func TestTieredPricingRule_CalculatePrice_SpansAllTiers(t *testing.T) {
	rule := NewTieredPricingRule(standardTiers())

	// 475 minutes: 30@30/hr + 90@25/hr + 240@20/hr + 115@15/hr
	//            = 15 + 37.5 + 80 + 28.75 = 161.25
	got := rule.CalculatePrice(475)
	assert.True(t, got.Equal(dec("161.25")), "got=%s", got)
}

func TestTieredPricingRule_CalculatePrice_PartialCoverage(t *testing.T) {
	rule := NewTieredPricingRule(standardTiers())

	tests := []struct {
		minutes int
		want    string
	}{
		{30, "15"},     // exactly the first tier
		{60, "27.5"},   // 30@30 + 30@25
		{120, "52.5"},  // first two tiers full
		{360, "132.5"}, // first three tiers full
	}

	for _, tt := range tests {
		got := rule.CalculatePrice(tt.minutes)
		assert.True(t, got.Equal(dec(tt.want)), "minutes=%d got=%s want=%s", tt.minutes, got, tt.want)
	}
}

func TestTieredPricingRule_Validate_OK(t *testing.T) {
	assert.NoError(t, NewTieredPricingRule(standardTiers()).Validate())

	// A single open-ended tier from zero is the minimal valid partition
	single := NewTieredPricingRule([]PriceTier{NewOpenPriceTier(0, dec("10"))})
	assert.NoError(t, single.Validate())

	// Order of declaration does not matter; validation sorts first
	shuffled := NewTieredPricingRule([]PriceTier{
		NewOpenPriceTier(360, dec("15")),
		NewPriceTier(0, 30, dec("30")),
		NewPriceTier(120, 360, dec("20")),
		NewPriceTier(30, 120, dec("25")),
	})
	assert.NoError(t, shuffled.Validate())
}

func TestTieredPricingRule_Validate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		tiers []PriceTier
	}{
		{"empty", nil},
		{"negative price", []PriceTier{NewOpenPriceTier(0, dec("-5"))}},
		{"does not start at zero", []PriceTier{
			NewPriceTier(10, 60, dec("10")),
			NewOpenPriceTier(60, dec("5")),
		}},
		{"gap between tiers", []PriceTier{
			NewPriceTier(0, 30, dec("10")),
			NewOpenPriceTier(60, dec("5")),
		}},
		{"overlapping tiers", []PriceTier{
			NewPriceTier(0, 60, dec("10")),
			NewOpenPriceTier(30, dec("5")),
		}},
		{"all tiers bounded", []PriceTier{
			NewPriceTier(0, 30, dec("10")),
			NewPriceTier(30, 60, dec("5")),
		}},
		{"open-ended tier not last", []PriceTier{
			NewOpenPriceTier(0, dec("10")),
			NewOpenPriceTier(30, dec("5")),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTieredPricingRule(tt.tiers).Validate()
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidPricingRule, ErrorCode(err))
		})
	}
}

func TestPriceTier_ApplicableMinutes(t *testing.T) {
	bounded := NewPriceTier(30, 120, dec("25"))

	tests := []struct {
		total int
		want  int
	}{
		{0, 0},
		{30, 0},   // not yet reached
		{31, 1},   // first minute inside the band
		{120, 90}, // band fully covered
		{500, 90}, // capped at the band width
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bounded.ApplicableMinutes(tt.total), "total=%d", tt.total)
	}

	open := NewOpenPriceTier(360, dec("15"))
	assert.Equal(t, 0, open.ApplicableMinutes(360))
	assert.Equal(t, 115, open.ApplicableMinutes(475))
}

func TestPriceTier_Contains(t *testing.T) {
	bounded := NewPriceTier(30, 120, dec("25"))
	assert.False(t, bounded.Contains(29))
	assert.True(t, bounded.Contains(30))
	assert.True(t, bounded.Contains(119))
	assert.False(t, bounded.Contains(120)) // upper bound is exclusive

	open := NewOpenPriceTier(360, dec("15"))
	assert.True(t, open.Contains(360))
	assert.True(t, open.Contains(100000))
	assert.False(t, open.Contains(359))
}
