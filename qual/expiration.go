/*
expiration.go - Expiration math and status classification

PURPOSE:
  Maps a completion date (plus cycle metadata and an optional separation
  date) to an expiration date, and classifies any qualification's current
  status relative to "now". This is the heart of the readiness engine.

EXPIRATION RULES:
  CalendarWindow:
    Completed on or before this year's window close -> valid through NEXT
    year's window close. Completed after the window closed -> the member
    must still wait for the next window, so the qualification is good
    through the window close the year after that.

  FiscalYear:
    Fiscal year of a date is calendarYear+1 for Oct-Dec, else calendarYear.
    Expiration is Sep 30 of the fiscal year AFTER the completion's.

  Rolling:
    completion + N calendar months. EAS-aware types never outlive the
    person's separation date.

  OneTime:
    nil - never expires.

STATUS THRESHOLDS (date-only, inclusive):
  Expired         expiration < today
  ExpiringUrgent  within 30 days
  ExpiringSoon    within 90 days
  Current         otherwise (and any completed OneTime)
  Missing         no completion date

STALENESS NOTE:
  Expiration is computed once when a qualification record is created and is
  NOT recomputed if the type's rules or the person's EAS date change later.
  Callers that edit EAS dates retroactively inherit stale expirations.

SEE ALSO:
  - types.go: TypeDefinition and CycleType
  - roster package: the records these functions classify
*/
package qual

import "time"

// =============================================================================
// EXPIRATION
// =============================================================================

// CalculateExpiration returns the expiration date for a qualification of the
// given type completed on completionDate. eas is the person's separation
// date, or nil. A nil return means the qualification never expires.
func CalculateExpiration(def TypeDefinition, completionDate Date, eas *Date) *Date {
	switch def.Cycle {
	case CycleOneTime:
		return nil

	case CycleCalendarWindow:
		windowClose := def.WindowEnd.In(completionDate.Year())
		var exp Date
		if completionDate.BeforeOrEqual(windowClose) {
			exp = def.WindowEnd.In(completionDate.Year() + 1)
		} else {
			exp = def.WindowEnd.In(completionDate.Year() + 2)
		}
		return &exp

	case CycleFiscalYear:
		exp := FiscalYearEnd(FiscalYearOf(completionDate) + 1)
		return &exp

	case CycleRolling:
		exp := completionDate.AddMonths(def.ExpirationMonths)
		if def.EASAware && eas != nil && eas.Before(exp) {
			exp = *eas
		}
		return &exp

	default:
		return nil
	}
}

// =============================================================================
// FISCAL YEAR - Begins 1 October of the prior calendar year
// =============================================================================

// FiscalYearOf returns the fiscal year a date falls in: calendar year + 1
// for October-December, else the calendar year.
func FiscalYearOf(d Date) int {
	if d.Month() >= time.October {
		return d.Year() + 1
	}
	return d.Year()
}

// FiscalYearEnd returns the last day (Sep 30) of the given fiscal year.
func FiscalYearEnd(fy int) Date {
	return NewDate(fy, time.September, 30)
}

// CurrentFiscalYear returns the fiscal year containing the clock's today.
func CurrentFiscalYear(clock Clock) int {
	return FiscalYearOf(DateOf(clock()))
}

// =============================================================================
// STATUS CLASSIFICATION
// =============================================================================

type StatusKind string

const (
	StatusMissing        StatusKind = "missing"
	StatusCurrent        StatusKind = "current"
	StatusExpiringSoon   StatusKind = "expiring_soon"
	StatusExpiringUrgent StatusKind = "expiring_urgent"
	StatusExpired        StatusKind = "expired"
)

// StatusInfo pairs the machine kind with a display label.
type StatusInfo struct {
	Kind  StatusKind `json:"kind"`
	Label string     `json:"label"`
}

const (
	urgentWindowDays = 30
	soonWindowDays   = 90
)

// Classify returns the status of a qualification with the given completion
// and expiration dates. The classification is total and mutually exclusive:
// every input maps to exactly one status.
func Classify(completionDate, expirationDate *Date, clock Clock) StatusInfo {
	if completionDate == nil {
		return StatusInfo{Kind: StatusMissing, Label: "Missing"}
	}
	if expirationDate == nil {
		// Completed, no expiration: OneTime types land here.
		return StatusInfo{Kind: StatusCurrent, Label: "Current"}
	}

	today := DateOf(clock())
	switch days := DaysBetween(today, *expirationDate); {
	case days < 0:
		return StatusInfo{Kind: StatusExpired, Label: "Expired"}
	case days <= urgentWindowDays:
		return StatusInfo{Kind: StatusExpiringUrgent, Label: "Expiring (30 days)"}
	case days <= soonWindowDays:
		return StatusInfo{Kind: StatusExpiringSoon, Label: "Expiring (90 days)"}
	default:
		return StatusInfo{Kind: StatusCurrent, Label: "Current"}
	}
}

// DaysUntil returns the signed day count from the clock's today to the
// expiration date, or nil when there is no expiration. Negative values are
// days overdue.
func DaysUntil(expirationDate *Date, clock Clock) *int {
	if expirationDate == nil {
		return nil
	}
	days := DaysBetween(DateOf(clock()), *expirationDate)
	return &days
}

func monthOf(m int) time.Month { return time.Month(m) }
