/*
Package roster defines the personnel records the readiness engine tracks and
the storage contract they live behind.

KEY CONCEPTS:
  - Person: One tracked individual, reconciled across imports by ExternalID
  - Qualification: One completion of a qualification type by a person
  - ImportLogEntry: Append-only audit record of each bulk operation
  - Store: The persistence interface (memory and SQLite implementations)

OWNERSHIP:
  Records are owned exclusively by the store. Components never retain
  long-lived references; they re-fetch by id. Deleting a person cascades
  deletion of all of their qualification records.
*/
package roster

import (
	"time"

	"github.com/trident/readiness-engine/qual"
)

// =============================================================================
// PERSON
// =============================================================================

// PersonStatus is the administrative standing of a person on the roster.
type PersonStatus string

const (
	PersonActive    PersonStatus = "active"
	PersonSeparated PersonStatus = "separated"
	PersonTAD       PersonStatus = "tad" // temporarily assigned elsewhere
)

// Person is one tracked individual. ExternalID is the natural key used for
// import reconciliation; it is digits-only after normalization.
type Person struct {
	ID         string       `json:"id"`
	ExternalID string       `json:"external_id"`
	LastName   string       `json:"last_name"`
	FirstName  string       `json:"first_name"`
	MiddleName string       `json:"middle_name,omitempty"`
	Rank       string       `json:"rank,omitempty"`
	MOS        string       `json:"mos,omitempty"`
	Section    string       `json:"section,omitempty"`
	Status     PersonStatus `json:"status,omitempty"`
	EASDate    *qual.Date   `json:"eas_date,omitempty"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// DisplayName renders "LastName, FirstName" for roster listings.
func (p Person) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.LastName + ", " + p.FirstName
}

// =============================================================================
// QUALIFICATION
// =============================================================================

// Qualification records one completion of a qualification type by a person.
// ExpirationDate is computed by the qual package at creation time and is not
// recomputed if the type's rules or the person's EAS date change later.
type Qualification struct {
	ID             string     `json:"id"`
	PersonID       string     `json:"person_id"`
	TypeID         string     `json:"type_id"`
	CompletionDate qual.Date  `json:"completion_date"`
	ExpirationDate *qual.Date `json:"expiration_date,omitempty"`
	Score          *int       `json:"score,omitempty"`
	Source         string     `json:"source,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Status classifies this record relative to the clock's today.
func (q Qualification) Status(clock qual.Clock) qual.StatusInfo {
	completion := q.CompletionDate
	if completion.IsZero() {
		return qual.Classify(nil, q.ExpirationDate, clock)
	}
	return qual.Classify(&completion, q.ExpirationDate, clock)
}

// =============================================================================
// IMPORT LOG
// =============================================================================

// ImportKind tags what a bulk operation imported.
type ImportKind string

const (
	ImportPeople         ImportKind = "people"
	ImportQualifications ImportKind = "qualifications"
	ImportRestore        ImportKind = "restore"
)

// ImportLogEntry is the append-only audit record of one bulk operation.
// Entries carry aggregate counts only, never per-row detail.
type ImportLogEntry struct {
	ID         string     `json:"id"`
	Kind       ImportKind `json:"kind"`
	Source     string     `json:"source,omitempty"`
	FileName   string     `json:"file_name,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	Total      int        `json:"total"`
	Added      int        `json:"added"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	ErrorCount int        `json:"error_count"`
}
