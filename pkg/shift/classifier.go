package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Bucket string

const (
	BucketRegular  Bucket = "regular"
	BucketWeekend  Bucket = "weekend"
	BucketHoliday  Bucket = "holiday"
	BucketOvertime Bucket = "overtime"
)

// Segment is a portion of a shift classified into a single bucket.
type Segment struct {
	Bucket Bucket
	Hours  decimal.Decimal
}

// InvalidShiftError reports a shift that cannot be classified: negative or
// zero duration, or one that crosses midnight.
type InvalidShiftError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf("invalid shift %s - %s: %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Reason)
}

// HolidayChecker is the injected holiday calendar.
type HolidayChecker interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// Classifier splits a worked shift into time buckets. All calendar decisions
// are made on the UTC date of the shift start.
type Classifier struct {
	holidays       HolidayChecker
	dailyThreshold decimal.Decimal
}

// NewClassifier builds a Classifier with the given daily regular-hours
// threshold. The threshold only applies to weekday shifts; weekend and
// holiday shifts accrue entirely to their own bucket.
func NewClassifier(holidays HolidayChecker, dailyThresholdHours int) *Classifier {
	return &Classifier{
		holidays:       holidays,
		dailyThreshold: decimal.NewFromInt(int64(dailyThresholdHours)),
	}
}

// Classify returns the ordered segments of the shift. The sum of segment
// hours always equals the shift duration exactly: the overtime portion is
// derived by subtraction, not computed independently.
func (c *Classifier) Classify(ctx context.Context, start, end time.Time) ([]Segment, error) {
	start = start.UTC()
	end = end.UTC()

	if !end.After(start) {
		return nil, &InvalidShiftError{Start: start, End: end, Reason: "end is not after start"}
	}
	if !sameUTCDay(start, end) {
		return nil, &InvalidShiftError{Start: start, End: end, Reason: "shift crosses midnight"}
	}

	total := HoursBetween(start, end)

	holiday, err := c.holidays.IsHoliday(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to check holiday calendar: %w", err)
	}
	if holiday {
		return []Segment{{Bucket: BucketHoliday, Hours: total}}, nil
	}

	if weekday := start.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
		return []Segment{{Bucket: BucketWeekend, Hours: total}}, nil
	}

	if total.LessThanOrEqual(c.dailyThreshold) {
		return []Segment{{Bucket: BucketRegular, Hours: total}}, nil
	}
	return []Segment{
		{Bucket: BucketRegular, Hours: c.dailyThreshold},
		{Bucket: BucketOvertime, Hours: total.Sub(c.dailyThreshold)},
	}, nil
}

// HoursBetween converts the duration between two instants into decimal hours.
func HoursBetween(start, end time.Time) decimal.Decimal {
	return decimal.NewFromInt(end.Sub(start).Nanoseconds()).
		Div(decimal.NewFromInt(int64(time.Hour)))
}

// sameUTCDay also accepts a shift that ends exactly at the following
// midnight, so an evening shift can run up to 24:00.
func sameUTCDay(start, end time.Time) bool {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return true
	}
	nextMidnight := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return end.Equal(nextMidnight)
}
