package shift

import (
	"github.com/shopspring/decimal"

	"github.com/curaflow/curaflow/pkg/rate"
)

// BucketRate maps a bucket to its hourly rate. Weekend hours are paid at
// the holiday rate; overtime is the weekday rate scaled by the configured
// multiplier.
func BucketRate(bucket Bucket, rates rate.Rates, overtimeMultiplier decimal.Decimal) decimal.Decimal {
	switch bucket {
	case BucketHoliday, BucketWeekend:
		return rates.Holiday
	case BucketOvertime:
		return rates.Weekday.Mul(overtimeMultiplier)
	default:
		return rates.Weekday
	}
}

// Price returns the total cost of the segments at the given rates, excluding
// mileage.
func Price(segments []Segment, rates rate.Rates, overtimeMultiplier decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, segment := range segments {
		total = total.Add(segment.Hours.Mul(BucketRate(segment.Bucket, rates, overtimeMultiplier)))
	}
	return total
}
