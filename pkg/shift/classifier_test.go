package shift

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fixedHolidays struct {
	dates map[string]bool
}

func (f fixedHolidays) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	return f.dates[date.UTC().Format("2006-01-02")], nil
}

func noHolidays() fixedHolidays {
	return fixedHolidays{dates: map[string]bool{}}
}

func TestClassify_WeekdayWithinThreshold(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	// Monday
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC)

	segments, err := classifier.Classify(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, BucketRegular, segments[0].Bucket)
	assert.True(t, segments[0].Hours.Equal(decimal.RequireFromString("7.5")))
}

func TestClassify_WeekdayOverThresholdSplitsIntoOvertime(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	// Monday 08:00-18:00, 10 hours
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	segments, err := classifier.Classify(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 2)
	assert.Equal(t, BucketRegular, segments[0].Bucket)
	assert.True(t, segments[0].Hours.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, BucketOvertime, segments[1].Bucket)
	assert.True(t, segments[1].Hours.Equal(decimal.NewFromInt(2)))
}

func TestClassify_SaturdayIsWeekend(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	start := time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 8, 13, 0, 0, 0, time.UTC)

	segments, err := classifier.Classify(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, BucketWeekend, segments[0].Bucket)
	assert.True(t, segments[0].Hours.Equal(decimal.NewFromInt(4)))
}

func TestClassify_HolidayTakesPrecedenceOverWeekend(t *testing.T) {
	holidays := fixedHolidays{dates: map[string]bool{"2025-04-20": true}} // Easter Sunday
	classifier := NewClassifier(holidays, 8)
	start := time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 20, 20, 0, 0, 0, time.UTC)

	segments, err := classifier.Classify(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.Equal(t, BucketHoliday, segments[0].Bucket)
	// no overtime split on holidays, even over the threshold
	assert.True(t, segments[0].Hours.Equal(decimal.NewFromInt(10)))
}

func TestClassify_RejectsCrossMidnightShift(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)

	_, err := classifier.Classify(context.Background(), start, end)

	var invalid *InvalidShiftError
	assert.ErrorAs(t, err, &invalid)
}

func TestClassify_RejectsNonPositiveDuration(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := classifier.Classify(context.Background(), start, start)
	var invalid *InvalidShiftError
	assert.ErrorAs(t, err, &invalid)

	_, err = classifier.Classify(context.Background(), start, start.Add(-time.Hour))
	assert.ErrorAs(t, err, &invalid)
}

func TestClassify_ShiftEndingAtMidnightIsAccepted(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	segments, err := classifier.Classify(context.Background(), start, end)

	assert.NoError(t, err)
	assert.Len(t, segments, 1)
	assert.True(t, segments[0].Hours.Equal(decimal.NewFromInt(6)))
}

func TestClassify_SegmentsSumToShiftDuration(t *testing.T) {
	classifier := NewClassifier(noHolidays(), 8)
	start := time.Date(2025, 3, 10, 7, 13, 0, 0, time.UTC)

	// odd durations that do not divide evenly into decimal hours
	durations := []time.Duration{
		17 * time.Minute,
		7*time.Hour + 59*time.Minute,
		9*time.Hour + 41*time.Minute,
		11*time.Hour + 1*time.Second,
	}
	tolerance := decimal.RequireFromString("0.000000001")

	for _, d := range durations {
		end := start.Add(d)
		segments, err := classifier.Classify(context.Background(), start, end)
		assert.NoError(t, err)

		sum := decimal.Zero
		for _, s := range segments {
			sum = sum.Add(s.Hours)
		}
		diff := sum.Sub(HoursBetween(start, end)).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"duration %s: segment sum %s differs from shift hours", d, sum)
	}
}
