/*
Package sqlite provides a SQLite-backed implementation of roster.Store.

PURPOSE:
  Production persistence for the readiness engine. The same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  people:              Roster records, unique on external_id
  qualifications:      Qualification records, FK to people (cascade delete)
  qualification_types: Seeded type catalog, definition stored as JSON
  import_log:          Append-only audit of bulk operations
  settings:            Key/value application settings

CASCADE DELETE:
  qualifications.person_id carries ON DELETE CASCADE; deleting a person
  removes their qualification records in one statement. Foreign keys are
  enabled via the connection string pragma.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time (the engine assumes a single active writer)
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety inside the process. The engine makes
  no correctness guarantee for two writers against the same database file.

USAGE:
  store, err := sqlite.New("./data/readiness.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - roster/store.go: Interface definition
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// Store implements roster.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ roster.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		external_id TEXT,
		last_name TEXT NOT NULL,
		first_name TEXT,
		middle_name TEXT,
		rank TEXT,
		mos TEXT,
		section TEXT,
		status TEXT,
		eas_date TEXT,
		email TEXT,
		phone TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_people_external_id
		ON people(external_id) WHERE external_id != '';
	CREATE INDEX IF NOT EXISTS idx_people_section ON people(section);

	CREATE TABLE IF NOT EXISTS qualifications (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
		type_id TEXT NOT NULL REFERENCES qualification_types(id),
		completion_date TEXT NOT NULL,
		expiration_date TEXT,
		score INTEGER,
		source TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_qualifications_person
		ON qualifications(person_id);
	CREATE INDEX IF NOT EXISTS idx_qualifications_type
		ON qualifications(type_id);
	CREATE INDEX IF NOT EXISTS idx_qualifications_expiration
		ON qualifications(expiration_date);

	CREATE TABLE IF NOT EXISTS qualification_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		def_json TEXT NOT NULL
	);

	-- Append-only audit of bulk operations
	CREATE TABLE IF NOT EXISTS import_log (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		source TEXT,
		file_name TEXT,
		timestamp TEXT NOT NULL,
		total INTEGER NOT NULL,
		added INTEGER NOT NULL,
		updated INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		error_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PEOPLE
// =============================================================================

func (s *Store) AddPerson(ctx context.Context, p roster.Person) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
		INSERT INTO people
		(id, external_id, last_name, first_name, middle_name, rank, mos, section,
		 status, eas_date, email, phone, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.ExternalID, p.LastName, p.FirstName, p.MiddleName, p.Rank, p.MOS,
		p.Section, string(p.Status), nullDate(p.EASDate), p.Email, p.Phone, p.Notes,
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return "", roster.ErrDuplicateExternalID
		}
		return "", fmt.Errorf("failed to add person: %w", err)
	}
	return p.ID, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (roster.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPerson(ctx, "WHERE id = ?", id)
}

func (s *Store) GetPersonByExternalID(ctx context.Context, externalID string) (roster.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPerson(ctx, "WHERE external_id = ?", externalID)
}

const personColumns = `id, external_id, last_name, first_name, middle_name, rank, mos, section,
	status, eas_date, email, phone, notes, created_at, updated_at`

func (s *Store) queryPerson(ctx context.Context, where string, args ...any) (roster.Person, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people "+where, args...)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return roster.Person{}, &roster.NotFoundError{Kind: "person", ID: fmt.Sprint(args[0])}
	}
	return p, err
}

func (s *Store) ListPeople(ctx context.Context) ([]roster.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+personColumns+" FROM people ORDER BY last_name, first_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	var people []roster.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *Store) UpdatePerson(ctx context.Context, p roster.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE people SET
			external_id = ?, last_name = ?, first_name = ?, middle_name = ?,
			rank = ?, mos = ?, section = ?, status = ?, eas_date = ?,
			email = ?, phone = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		p.ExternalID, p.LastName, p.FirstName, p.MiddleName, p.Rank, p.MOS,
		p.Section, string(p.Status), nullDate(p.EASDate), p.Email, p.Phone, p.Notes,
		time.Now().UTC().Format(time.RFC3339), p.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return roster.ErrDuplicateExternalID
		}
		return fmt.Errorf("failed to update person: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &roster.NotFoundError{Kind: "person", ID: p.ID}
	}
	return nil
}

// DeletePerson removes the person; qualifications cascade via FK.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &roster.NotFoundError{Kind: "person", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (roster.Person, error) {
	var (
		p                    roster.Person
		status               string
		easDate              sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&p.ID, &p.ExternalID, &p.LastName, &p.FirstName, &p.MiddleName,
		&p.Rank, &p.MOS, &p.Section, &status, &easDate,
		&p.Email, &p.Phone, &p.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return p, err
	}
	p.Status = roster.PersonStatus(status)
	p.EASDate = parseNullDate(easDate)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

// =============================================================================
// QUALIFICATIONS
// =============================================================================

const qualColumns = `id, person_id, type_id, completion_date, expiration_date, score, source, created_at`

func (s *Store) AddQualification(ctx context.Context, q roster.Qualification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO qualifications
		(id, person_id, type_id, completion_date, expiration_date, score, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		q.ID, q.PersonID, q.TypeID, q.CompletionDate.String(),
		nullDate(q.ExpirationDate), nullInt(q.Score), q.Source,
		q.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return "", fmt.Errorf("qualification references missing person %s or type %s: %w",
				q.PersonID, q.TypeID, roster.ErrNotFound)
		}
		return "", fmt.Errorf("failed to add qualification: %w", err)
	}
	return q.ID, nil
}

func (s *Store) GetQualification(ctx context.Context, id string) (roster.Qualification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+qualColumns+" FROM qualifications WHERE id = ?", id)
	q, err := scanQualification(row)
	if err == sql.ErrNoRows {
		return roster.Qualification{}, &roster.NotFoundError{Kind: "qualification", ID: id}
	}
	return q, err
}

func (s *Store) ListQualificationsByPerson(ctx context.Context, personID string) ([]roster.Qualification, error) {
	return s.queryQualifications(ctx, "WHERE person_id = ?", personID)
}

func (s *Store) ListQualificationsByType(ctx context.Context, typeID string) ([]roster.Qualification, error) {
	return s.queryQualifications(ctx, "WHERE type_id = ?", typeID)
}

func (s *Store) ListQualifications(ctx context.Context) ([]roster.Qualification, error) {
	return s.queryQualifications(ctx, "")
}

func (s *Store) queryQualifications(ctx context.Context, where string, args ...any) ([]roster.Qualification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + qualColumns + " FROM qualifications " + where + " ORDER BY completion_date ASC, id ASC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifications: %w", err)
	}
	defer rows.Close()

	var quals []roster.Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, rows.Err()
}

func (s *Store) DeleteQualification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM qualifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete qualification: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return &roster.NotFoundError{Kind: "qualification", ID: id}
	}
	return nil
}

func scanQualification(row rowScanner) (roster.Qualification, error) {
	var (
		q              roster.Qualification
		completionDate string
		expirationDate sql.NullString
		score          sql.NullInt64
		createdAt      string
	)
	err := row.Scan(&q.ID, &q.PersonID, &q.TypeID, &completionDate, &expirationDate, &score, &q.Source, &createdAt)
	if err != nil {
		return q, err
	}
	q.CompletionDate, _ = qual.ParseISO(completionDate)
	q.ExpirationDate = parseNullDate(expirationDate)
	if score.Valid {
		v := int(score.Int64)
		q.Score = &v
	}
	q.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return q, nil
}

// =============================================================================
// QUALIFICATION TYPES
// =============================================================================

func (s *Store) PutQualificationType(ctx context.Context, def qual.TypeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defJSON, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal type definition: %w", err)
	}

	query := `
		INSERT INTO qualification_types (id, name, category, def_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			def_json = excluded.def_json
	`
	_, err = s.db.ExecContext(ctx, query, def.ID, def.Name, string(def.Category), string(defJSON))
	if err != nil {
		return fmt.Errorf("failed to save type definition: %w", err)
	}
	return nil
}

func (s *Store) GetQualificationType(ctx context.Context, id string) (qual.TypeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var defJSON string
	err := s.db.QueryRowContext(ctx, "SELECT def_json FROM qualification_types WHERE id = ?", id).Scan(&defJSON)
	if err == sql.ErrNoRows {
		return qual.TypeDefinition{}, roster.ErrTypeNotFound
	}
	if err != nil {
		return qual.TypeDefinition{}, fmt.Errorf("failed to query type definition: %w", err)
	}

	var def qual.TypeDefinition
	if err := json.Unmarshal([]byte(defJSON), &def); err != nil {
		return qual.TypeDefinition{}, fmt.Errorf("failed to decode type definition %s: %w", id, err)
	}
	return def, nil
}

func (s *Store) ListQualificationTypes(ctx context.Context) ([]qual.TypeDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT def_json FROM qualification_types ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query type definitions: %w", err)
	}
	defer rows.Close()

	var defs []qual.TypeDefinition
	for rows.Next() {
		var defJSON string
		if err := rows.Scan(&defJSON); err != nil {
			return nil, err
		}
		var def qual.TypeDefinition
		if err := json.Unmarshal([]byte(defJSON), &def); err != nil {
			return nil, fmt.Errorf("failed to decode type definition: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// =============================================================================
// IMPORT LOG (append-only)
// =============================================================================

func (s *Store) AppendImportLog(ctx context.Context, entry roster.ImportLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO import_log
		(id, kind, source, file_name, timestamp, total, added, updated, skipped, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, string(entry.Kind), entry.Source, entry.FileName,
		entry.Timestamp.Format(time.RFC3339),
		entry.Total, entry.Added, entry.Updated, entry.Skipped, entry.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("failed to append import log: %w", err)
	}
	return nil
}

func (s *Store) ListImportLog(ctx context.Context) ([]roster.ImportLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, kind, source, file_name, timestamp, total, added, updated, skipped, error_count
		FROM import_log ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query import log: %w", err)
	}
	defer rows.Close()

	var entries []roster.ImportLogEntry
	for rows.Next() {
		var (
			e         roster.ImportLogEntry
			kind      string
			timestamp string
		)
		err := rows.Scan(&e.ID, &kind, &e.Source, &e.FileName, &timestamp,
			&e.Total, &e.Added, &e.Updated, &e.Skipped, &e.ErrorCount)
		if err != nil {
			return nil, err
		}
		e.Kind = roster.ImportKind(kind)
		e.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := s.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}

// Helper functions

func nullDate(d *qual.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) *qual.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := qual.ParseISO(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
