package rate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func set(weekday, holiday, kilometer string) RateSet {
	return RateSet{
		Weekday:   nullable(weekday),
		Holiday:   nullable(holiday),
		Kilometer: nullable(kilometer),
	}
}

func nullable(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestResolver_AllocationOverrideWins(t *testing.T) {
	resolver := NewResolver()

	rates, err := resolver.Resolve(
		set("18.00", "", ""),
		set("15.00", "20.00", "0.40"),
		set("12.00", "16.00", "0.30"),
	)

	assert.NoError(t, err)
	assert.True(t, rates.Weekday.Equal(decimal.RequireFromString("18.00")), "override must win over staff default")
	assert.True(t, rates.Holiday.Equal(decimal.RequireFromString("20.00")), "missing override falls back to staff")
	assert.True(t, rates.Kilometer.Equal(decimal.RequireFromString("0.40")))
}

func TestResolver_FallsBackToBudgetTypeDefaults(t *testing.T) {
	resolver := NewResolver()

	rates, err := resolver.Resolve(
		RateSet{},
		RateSet{},
		set("12.00", "16.00", "0.30"),
	)

	assert.NoError(t, err)
	assert.True(t, rates.Weekday.Equal(decimal.RequireFromString("12.00")))
	assert.True(t, rates.Holiday.Equal(decimal.RequireFromString("16.00")))
	assert.True(t, rates.Kilometer.Equal(decimal.RequireFromString("0.30")))
}

func TestResolver_UnresolvableRateIsAnError(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		name         string
		override     RateSet
		staff        RateSet
		typeDefaults RateSet
		wantField    string
	}{
		{
			name:      "nothing set anywhere",
			wantField: "weekday",
		},
		{
			name:         "holiday missing at every level",
			override:     set("18.00", "", ""),
			staff:        set("15.00", "", "0.40"),
			typeDefaults: set("12.00", "", "0.30"),
			wantField:    "holiday",
		},
		{
			name:         "kilometer missing at every level",
			override:     RateSet{},
			staff:        set("15.00", "20.00", ""),
			typeDefaults: set("12.00", "16.00", ""),
			wantField:    "kilometer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.override, tt.staff, tt.typeDefaults)

			var resErr *ResolutionError
			assert.ErrorAs(t, err, &resErr)
			assert.Equal(t, tt.wantField, resErr.Field)
		})
	}
}

func TestResolver_NeverDefaultsToZero(t *testing.T) {
	resolver := NewResolver()

	// a zero rate explicitly set is valid and distinct from an absent rate
	rates, err := resolver.Resolve(
		RateSet{Weekday: nullable("0.00")},
		set("15.00", "20.00", "0.40"),
		RateSet{},
	)

	assert.NoError(t, err)
	assert.True(t, rates.Weekday.IsZero(), "explicit zero override is respected")
}
