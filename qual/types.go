/*
Package qual provides the qualification cycle and expiration engine.

PURPOSE:
  This package contains the domain-agnostic core of the readiness engine:
  qualification type definitions, the cycle rules that map a completion date
  to an expiration date, and status classification relative to "now".

KEY CONCEPTS IN THIS FILE (types.go):
  - CycleType: The rule family governing a qualification's validity period
  - TypeDefinition: Immutable metadata for one qualification type
  - MonthDay: A recurring calendar position (for training windows)

CYCLE TYPES:
  CalendarWindow:
    - Qualification is earned during a fixed annual window (e.g., Jan 1 - Jun 30)
    - Completing inside the window is good through NEXT year's window close
    - Completing after the window closed is good through the window after that

  FiscalYear:
    - Valid through the end (Sep 30) of the fiscal year after completion
    - Fiscal year begins 1 October of the prior calendar year

  Rolling:
    - Valid for a fixed number of months after completion
    - EAS-aware types are capped by the person's separation date

  OneTime:
    - Never expires

DESIGN PRINCIPLES:
  1. Purity: No state; all computation is a function of explicit inputs
  2. Exhaustiveness: CycleType is switched exhaustively; no silent fallthrough
  3. Testability: "now" always comes from an injected Clock

SEE ALSO:
  - expiration.go: Expiration math and status classification
  - seed.go: The standard qualification type catalog
*/
package qual

import "fmt"

// =============================================================================
// CYCLE TYPE - Tagged variant for expiration rule families
// =============================================================================

type CycleType string

const (
	CycleCalendarWindow CycleType = "calendar_window"
	CycleFiscalYear     CycleType = "fiscal_year"
	CycleRolling        CycleType = "rolling"
	CycleOneTime        CycleType = "one_time"
)

// Category groups qualification types for reporting.
type Category string

const (
	CategoryFitness   Category = "fitness"
	CategoryWeapons   Category = "weapons"
	CategoryTraining  Category = "training"
	CategoryMedical   Category = "medical"
	CategoryLicensing Category = "licensing"
	CategoryAdmin     Category = "admin"
)

// MonthDay is a recurring calendar position, e.g. {June, 30} for a window
// close. Windows never span a year boundary in this model.
type MonthDay struct {
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`
}

// In returns the concrete date for this month/day in the given year.
func (md MonthDay) In(year int) Date {
	return NewDate(year, monthOf(md.Month), md.Day)
}

// =============================================================================
// TYPE DEFINITION - Immutable qualification type metadata
// =============================================================================

// TypeDefinition describes one qualification type. Definitions are seeded at
// startup and never mutated; qualification records reference them by ID.
type TypeDefinition struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Cycle    CycleType `json:"cycle_type"`

	// CalendarWindow only
	WindowStart *MonthDay `json:"window_start,omitempty"`
	WindowEnd   *MonthDay `json:"window_end,omitempty"`

	// Rolling only
	ExpirationMonths int  `json:"expiration_months,omitempty"`
	EASAware         bool `json:"eas_aware,omitempty"`

	// Contract attributes. These do not affect expiration math.
	Required     bool        `json:"required"`
	TrackScore   bool        `json:"track_score"`
	MinScore     int         `json:"min_score,omitempty"`
	MaxScore     int         `json:"max_score,omitempty"`
	ScoreBands   []ScoreBand `json:"score_bands,omitempty"`
	RequiredRank string      `json:"required_rank,omitempty"`
}

// ScoreBand labels a score range, e.g. {"1st Class", 235}. Bands are ordered
// by descending Min; the first band whose Min the score meets applies.
type ScoreBand struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
}

// Validate enforces the structural invariants of a type definition:
// exactly one cycle type, window bounds for CalendarWindow, a positive
// month count for Rolling.
func (t TypeDefinition) Validate() error {
	switch t.Cycle {
	case CycleCalendarWindow:
		if t.WindowStart == nil || t.WindowEnd == nil {
			return fmt.Errorf("type %s: calendar window cycle requires both window bounds", t.ID)
		}
	case CycleRolling:
		if t.ExpirationMonths <= 0 {
			return fmt.Errorf("type %s: rolling cycle requires expiration_months > 0", t.ID)
		}
	case CycleFiscalYear, CycleOneTime:
		// no extra attributes
	default:
		return fmt.Errorf("type %s: unknown cycle type %q", t.ID, t.Cycle)
	}
	return nil
}

// ScoreClass returns the band label for a score, or "" when the type does
// not band scores.
func (t TypeDefinition) ScoreClass(score int) string {
	for _, band := range t.ScoreBands {
		if score >= band.Min {
			return band.Label
		}
	}
	return ""
}
