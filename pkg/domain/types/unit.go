package types

// RecurrenceUnit represents the time granularity of a recurring reminder
type RecurrenceUnit string

const (
	UnitMinutes RecurrenceUnit = "minutes"
	UnitHours   RecurrenceUnit = "hours"
	UnitDays    RecurrenceUnit = "days"
	UnitWeeks   RecurrenceUnit = "weeks"
	UnitMonths  RecurrenceUnit = "months"
	UnitYears   RecurrenceUnit = "years"
)

// AllRecurrenceUnits returns all recognized recurrence units
func AllRecurrenceUnits() []RecurrenceUnit {
	return []RecurrenceUnit{
		UnitMinutes,
		UnitHours,
		UnitDays,
		UnitWeeks,
		UnitMonths,
		UnitYears,
	}
}

// IsValid checks if the unit is one of the recognized tokens. The token set
// is case-sensitive; anything else falls back to day-based arithmetic.
func (u RecurrenceUnit) IsValid() bool {
	switch u {
	case UnitMinutes,
		UnitHours,
		UnitDays,
		UnitWeeks,
		UnitMonths,
		UnitYears:
		return true
	default:
		return false
	}
}

// Normalize returns the unit, treating empty as UnitDays
func (u RecurrenceUnit) Normalize() RecurrenceUnit {
	if u == "" {
		return UnitDays
	}
	return u
}

// String returns the string representation of the unit
func (u RecurrenceUnit) String() string {
	return string(u)
}
