package service

import (
	"math"
	"time"
)

// RoundingPrecision is the scale used by round: 1e4 keeps $M values to the nearest $100.
const RoundingPrecision = 1e4

// round rounds a float64 value to four decimal places using RoundingPrecision.
// Applied to response values only; accumulation always happens on unrounded values.
//
// Example:
//
//	round(16.666666)  // returns 16.6667
//	round(0.00005)    // returns 0.0001
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// daysIn returns the number of days in t's month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonthsClamped advances t by n calendar months. When the target month is
// shorter than t's day-of-month, the day is clamped to the month's last day
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year). time.AddDate would
// instead overflow into the following month.
//
// Parameters:
//   - t: The starting instant; its time of day is preserved
//   - n: Number of months to add, may be negative
//
// Returns the advanced instant in UTC.
func addMonthsClamped(t time.Time, n int) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// addYearsClamped advances t by n years with the same clamping rule (Feb 29 + 1 year = Feb 28).
func addYearsClamped(t time.Time, n int) time.Time {
	return addMonthsClamped(t, n*12)
}

// jan returns January 1st of year in UTC.
func jan(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// monthIndex is a month ordinal usable for month differences.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// monthsBetween counts calendar months from a's month to b's month.
func monthsBetween(a, b time.Time) int {
	return monthIndex(b) - monthIndex(a)
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
