package rate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateSet is one level of the rate precedence chain. Any field may be
// absent; absent fields fall through to the next level.
type RateSet struct {
	Weekday   decimal.NullDecimal
	Holiday   decimal.NullDecimal
	Kilometer decimal.NullDecimal
}

// Rates is a fully resolved set of rates for one service date. All fields
// are present; a shift that cannot be fully resolved is unbillable and is
// reported as such, never priced at zero.
type Rates struct {
	Weekday   decimal.Decimal
	Holiday   decimal.Decimal
	Kilometer decimal.Decimal
}

// ResolutionError reports that no value could be resolved for a rate field
// at any level of the precedence chain.
type ResolutionError struct {
	Field string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no %s rate resolvable: not set on allocation, staff member, or budget type", e.Field)
}

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve applies strict precedence per field: allocation override wins over
// the staff member's default, which wins over the budget type's system
// default. Returns a ResolutionError naming the first unresolvable field.
func (r *Resolver) Resolve(override, staffDefaults, typeDefaults RateSet) (Rates, error) {
	weekday, ok := pick(override.Weekday, staffDefaults.Weekday, typeDefaults.Weekday)
	if !ok {
		return Rates{}, &ResolutionError{Field: "weekday"}
	}
	holiday, ok := pick(override.Holiday, staffDefaults.Holiday, typeDefaults.Holiday)
	if !ok {
		return Rates{}, &ResolutionError{Field: "holiday"}
	}
	kilometer, ok := pick(override.Kilometer, staffDefaults.Kilometer, typeDefaults.Kilometer)
	if !ok {
		return Rates{}, &ResolutionError{Field: "kilometer"}
	}
	return Rates{Weekday: weekday, Holiday: holiday, Kilometer: kilometer}, nil
}

func pick(levels ...decimal.NullDecimal) (decimal.Decimal, bool) {
	for _, level := range levels {
		if level.Valid {
			return level.Decimal, true
		}
	}
	return decimal.Decimal{}, false
}
