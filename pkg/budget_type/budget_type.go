package budget_type

import (
	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/shopspring/decimal"
)

// BudgetType is a category of funded care service (e.g. qualified home
// care). Its default rates are the last level of the rate precedence chain.
type BudgetType struct {
	ID                   int
	Name                 string
	Code                 string
	Description          string
	DefaultWeekdayRate   decimal.NullDecimal
	DefaultHolidayRate   decimal.NullDecimal
	DefaultKilometerRate decimal.NullDecimal
}

func (bt BudgetType) DefaultRates() rate.RateSet {
	return rate.RateSet{
		Weekday:   bt.DefaultWeekdayRate,
		Holiday:   bt.DefaultHolidayRate,
		Kilometer: bt.DefaultKilometerRate,
	}
}
