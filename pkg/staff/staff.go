package staff

import (
	"time"

	"github.com/curaflow/curaflow/pkg/rate"
	"github.com/shopspring/decimal"
)

type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

// Staff is a care worker. The rate fields are personal defaults; a budget
// allocation may override any of them for shifts charged against it.
type Staff struct {
	ID            int
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	WeekdayRate   decimal.NullDecimal
	HolidayRate   decimal.NullDecimal
	KilometerRate decimal.NullDecimal
	Status        StaffStatus
	CreatedAt     time.Time
}

func (s Staff) DefaultRates() rate.RateSet {
	return rate.RateSet{
		Weekday:   s.WeekdayRate,
		Holiday:   s.HolidayRate,
		Kilometer: s.KilometerRate,
	}
}
