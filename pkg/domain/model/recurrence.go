package model

import (
	"time"

	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// Advance computes the next occurrence of a recurring reminder: base plus
// amount units. It is pure and deterministic; the dialogue flow uses it to
// decide an initial fire time and the poller uses it to advance an existing
// one, and both must agree on identical inputs.
//
// Calendar-irregular arithmetic follows wall-calendar expectations: days and
// weeks carry over month and year boundaries, and month/year addition clamps
// to the last day of the target month when the source day does not exist
// there (Jan 31 + 1 month = Feb 28/29, never Mar 2).
//
// An unrecognized unit uses day-based arithmetic.
func Advance(base time.Time, amount float64, unit types.RecurrenceUnit) time.Time {
	switch unit {
	case types.UnitMinutes:
		return addMinutes(base, amount)
	case types.UnitHours:
		return addMinutes(base, amount*60)
	case types.UnitWeeks:
		return addDays(base, amount*7)
	case types.UnitMonths:
		return addMonths(base, int(amount))
	case types.UnitYears:
		return addMonths(base, int(amount)*12)
	default:
		return addDays(base, amount)
	}
}

// addMinutes supports fractional amounts at millisecond resolution
func addMinutes(base time.Time, amount float64) time.Time {
	ms := int64(amount * 60_000)
	return base.Add(time.Duration(ms) * time.Millisecond)
}

// addDays truncates fractional day amounts toward zero; the day field then
// carries through months and years the usual calendar way.
func addDays(base time.Time, amount float64) time.Time {
	return base.AddDate(0, 0, int(amount))
}

func addMonths(base time.Time, months int) time.Time {
	next := base.AddDate(0, months, 0)
	if next.Day() != base.Day() {
		// AddDate normalized a nonexistent day-of-month into the following
		// month; clamp back to the last day of the intended month.
		next = next.AddDate(0, 0, -next.Day())
	}
	return next
}
