/*
store.go - Persistence interface for roster records

PURPOSE:
  Defines the interface between the domain logic and the database. The
  store handle is explicit: it is constructed once at startup and passed
  into each component, never reached through ambient globals.

KEY CONTRACTS:
  - AddPerson assigns the record id and rejects duplicate external ids
  - UpdatePerson preserves the record id and CreatedAt
  - DeletePerson cascades deletion of the person's qualification records
  - AppendImportLog is append-only; entries are never mutated or deleted
  - Implementations return copies; callers never share record memory

IMPLEMENTATIONS:
  - store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go: Production SQLite

CONCURRENCY:
  The engine assumes a single active writer (see SQLite WAL notes in the
  sqlite package). Implementations are safe for concurrent readers.
*/
package roster

import (
	"context"

	"github.com/trident/readiness-engine/qual"
)

// Store is the persistence contract consumed by the import reconciler,
// query engine, and API layer.
type Store interface {
	// People
	AddPerson(ctx context.Context, p Person) (string, error)
	GetPerson(ctx context.Context, id string) (Person, error)
	GetPersonByExternalID(ctx context.Context, externalID string) (Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	UpdatePerson(ctx context.Context, p Person) error
	DeletePerson(ctx context.Context, id string) error

	// Qualifications
	AddQualification(ctx context.Context, q Qualification) (string, error)
	GetQualification(ctx context.Context, id string) (Qualification, error)
	ListQualificationsByPerson(ctx context.Context, personID string) ([]Qualification, error)
	ListQualificationsByType(ctx context.Context, typeID string) ([]Qualification, error)
	ListQualifications(ctx context.Context) ([]Qualification, error)
	DeleteQualification(ctx context.Context, id string) error

	// Qualification types (seeded at startup, immutable afterward)
	PutQualificationType(ctx context.Context, def qual.TypeDefinition) error
	GetQualificationType(ctx context.Context, id string) (qual.TypeDefinition, error)
	ListQualificationTypes(ctx context.Context) ([]qual.TypeDefinition, error)

	// Import log (append-only audit trail)
	AppendImportLog(ctx context.Context, entry ImportLogEntry) error
	ListImportLog(ctx context.Context) ([]ImportLogEntry, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SeedTypes loads the standard qualification catalog into a store,
// validating each definition first. Existing definitions are overwritten;
// seeding is idempotent.
func SeedTypes(ctx context.Context, store Store) error {
	for _, def := range qual.StandardTypes() {
		if err := def.Validate(); err != nil {
			return err
		}
		if err := store.PutQualificationType(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
