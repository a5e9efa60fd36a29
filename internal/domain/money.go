package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kurniadi/booking-service/internal/domain/models"
)

// All settlement arithmetic works on int64 minor currency units. Floating
// point is never used for amounts so that multi-way splits cannot drift.

// PercentageOf returns pct percent of amount, truncated toward zero.
// PercentageOf(1000, 33.33) = 333, never 334.
func PercentageOf(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		IntPart()
}

// RemainderSplit splits total into (first, total-first). The second share is
// computed as an exact remainder rather than independently, so the two shares
// always sum to total even when first came from a truncating percentage.
func RemainderSplit(total, first int64) (int64, int64) {
	return first, total - first
}

// UnitNights returns the billable duration of a unit stay in nights, with a
// floor of one night so a same-day booking still bills.
func UnitNights(start, end time.Time) int64 {
	nights := wholeDays(start, end)
	if nights < 1 {
		return 1
	}
	return nights
}

// ActivityDays returns the billable duration of an activity booking in days,
// inclusive of both endpoints, with a floor of one day.
func ActivityDays(start, end time.Time) int64 {
	days := wholeDays(start, end) + 1
	if days < 1 {
		return 1
	}
	return days
}

// DurationFor returns the billable duration for a resource kind. Units bill
// per night, everything else per inclusive day.
func DurationFor(kind models.ResourceKind, start, end time.Time) int64 {
	if kind == models.ResourceUnit {
		return UnitNights(start, end)
	}
	return ActivityDays(start, end)
}

func wholeDays(start, end time.Time) int64 {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int64(e.Sub(s).Hours() / 24)
}
