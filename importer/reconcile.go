/*
reconcile.go - Merge transformed records into the store by natural key

PURPOSE:
  The reconciler is the only import component that mutates the store. It
  transforms each raw row, decides add/update/skip against the existing
  roster, computes expiration dates when creating qualification records,
  and appends one aggregate ImportLogEntry per operation.

SEMANTICS:
  - People merge by digits-only external id. UpdateExisting controls
    whether a matched record is overwritten (preserving id + CreatedAt)
    or skipped. Re-importing the same file with UpdateExisting converges.
  - Qualification import resolves the owner strictly by identifier; there
    is no name fallback and no update path - records are append-only and
    duplicate completions are not deduplicated.
  - Per-row failures never abort the batch: they are collected with their
    row index and processing continues. There is no rollback; counts
    reconcile as added+updated+skipped <= total with the remainder in
    Errors.
  - Rows are processed strictly sequentially so later rows may depend on
    records created earlier in the same batch.
*/
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// ErrInvalidMapping is returned before any mutation when the column
// mapping cannot support the requested import.
var ErrInvalidMapping = errors.New("invalid column mapping")

// Options configures one bulk import.
type Options struct {
	UpdateExisting bool
	Source         string
	FileName       string
}

// RowError records a non-fatal per-row failure.
type RowError struct {
	Row     int    `json:"row"` // zero-based data row index
	Message string `json:"message"`
}

// Summary is the aggregate outcome of one bulk import.
type Summary struct {
	Total   int        `json:"total"`
	Added   int        `json:"added"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

// Reconciler merges canonical records into the store. Construct with an
// explicit store handle; the reconciler holds no other state.
type Reconciler struct {
	Store roster.Store
	Clock qual.Clock
	Log   *slog.Logger
}

func NewReconciler(store roster.Store, clock qual.Clock, log *slog.Logger) *Reconciler {
	if clock == nil {
		clock = qual.SystemClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{Store: store, Clock: clock, Log: log}
}

// =============================================================================
// PEOPLE IMPORT
// =============================================================================

// ImportPeople merges roster rows by external id. Rows lacking both an
// identifier and a usable name pair are skipped with a recorded error.
func (r *Reconciler) ImportPeople(ctx context.Context, rows []map[string]string, mapping Mapping, opts Options) (*Summary, error) {
	if errs := ValidateMapping(mapping, PersonFields); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(errs, "; "))
	}

	summary := &Summary{Total: len(rows)}
	for i, row := range rows {
		rec := TransformRow(row, mapping, PersonFields)
		r.logWarnings(i, rec)

		externalID := rec.Get(FieldExternalID)
		if externalID == "" && (rec.Get(FieldLastName) == "" || rec.Get(FieldFirstName) == "") {
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{Row: i, Message: "row lacks an identifier and a full name pair"})
			continue
		}

		if err := r.reconcilePerson(ctx, rec, externalID, opts, summary); err != nil {
			summary.Errors = append(summary.Errors, RowError{Row: i, Message: err.Error()})
		}
	}

	r.appendLog(ctx, roster.ImportPeople, opts, summary)
	return summary, nil
}

func (r *Reconciler) reconcilePerson(ctx context.Context, rec Record, externalID string, opts Options, summary *Summary) error {
	var existing roster.Person
	exists := false
	if externalID != "" {
		p, err := r.Store.GetPersonByExternalID(ctx, externalID)
		switch {
		case err == nil:
			existing, exists = p, true
		case roster.IsNotFound(err):
			// first sighting
		default:
			return fmt.Errorf("lookup %s: %w", externalID, err)
		}
	}

	if exists {
		if !opts.UpdateExisting {
			summary.Skipped++
			return nil
		}
		updated := r.buildPerson(rec, externalID)
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		if err := r.Store.UpdatePerson(ctx, updated); err != nil {
			return fmt.Errorf("update %s: %w", externalID, err)
		}
		summary.Updated++
		return nil
	}

	if _, err := r.Store.AddPerson(ctx, r.buildPerson(rec, externalID)); err != nil {
		return fmt.Errorf("add %s: %w", externalID, err)
	}
	summary.Added++
	return nil
}

func (r *Reconciler) buildPerson(rec Record, externalID string) roster.Person {
	p := roster.Person{
		ExternalID: externalID,
		LastName:   rec.Get(FieldLastName),
		FirstName:  rec.Get(FieldFirstName),
		MiddleName: rec.Get(FieldMiddleName),
		Rank:       rec.Get(FieldRank),
		MOS:        rec.Get(FieldMOS),
		Section:    rec.Get(FieldSection),
		Email:      rec.Get(FieldEmail),
		Phone:      rec.Get(FieldPhone),
		Notes:      rec.Get(FieldNotes),
	}
	if status := rec.Get(FieldStatus); status != "" {
		p.Status = roster.PersonStatus(strings.ToLower(status))
	} else {
		p.Status = roster.PersonActive
	}
	if eas := rec.Get(FieldEASDate); eas != "" {
		if d, err := qual.ParseISO(eas); err == nil {
			p.EASDate = &d
		}
	}
	return p
}

// =============================================================================
// QUALIFICATION IMPORT
// =============================================================================

// ImportQualifications appends qualification records of one type. The
// owner is resolved strictly by the mapped identifier column; a missing or
// unmatched identifier is always an error on this path. Expiration is
// computed at creation time from the type's cycle and the person's EAS
// date.
func (r *Reconciler) ImportQualifications(ctx context.Context, rows []map[string]string, mapping Mapping, typeID string, opts Options) (*Summary, error) {
	def, err := r.Store.GetQualificationType(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("qualification type %q: %w", typeID, err)
	}
	if errs := ValidateMapping(mapping, QualificationFields); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(errs, "; "))
	}

	summary := &Summary{Total: len(rows)}
	for i, row := range rows {
		rec := TransformRow(row, mapping, QualificationFields)
		r.logWarnings(i, rec)

		if err := r.appendQualification(ctx, rec, def, opts, summary); err != nil {
			summary.Errors = append(summary.Errors, RowError{Row: i, Message: err.Error()})
		}
	}

	r.appendLog(ctx, roster.ImportQualifications, opts, summary)
	return summary, nil
}

func (r *Reconciler) appendQualification(ctx context.Context, rec Record, def qual.TypeDefinition, opts Options, summary *Summary) error {
	externalID := rec.Get(FieldExternalID)
	if externalID == "" {
		return errors.New("row has no identifier")
	}
	person, err := r.Store.GetPersonByExternalID(ctx, externalID)
	if err != nil {
		if roster.IsNotFound(err) {
			return fmt.Errorf("no person on the roster with identifier %s", externalID)
		}
		return fmt.Errorf("lookup %s: %w", externalID, err)
	}

	completionRaw := rec.Get(FieldCompletionDate)
	if completionRaw == "" {
		return errors.New("row has no parseable completion date")
	}
	completion, err := qual.ParseISO(completionRaw)
	if err != nil {
		return fmt.Errorf("completion date: %w", err)
	}

	q := roster.Qualification{
		PersonID:       person.ID,
		TypeID:         def.ID,
		CompletionDate: completion,
		ExpirationDate: qual.CalculateExpiration(def, completion, person.EASDate),
		Source:         opts.Source,
	}
	if scoreRaw := rec.Get(FieldScore); scoreRaw != "" {
		if score, err := strconv.Atoi(scoreRaw); err == nil {
			q.Score = &score
		}
	}

	if _, err := r.Store.AddQualification(ctx, q); err != nil {
		return fmt.Errorf("add qualification for %s: %w", externalID, err)
	}
	summary.Added++
	return nil
}

// =============================================================================
// SHARED
// =============================================================================

func (r *Reconciler) logWarnings(row int, rec Record) {
	for _, warning := range rec.Warnings {
		r.Log.Warn("import field degraded", "row", row, "warning", warning)
	}
}

// appendLog records the aggregate outcome. A failure to write the audit
// entry is logged but does not fail an import that already mutated the
// store.
func (r *Reconciler) appendLog(ctx context.Context, kind roster.ImportKind, opts Options, summary *Summary) {
	entry := roster.ImportLogEntry{
		Kind:       kind,
		Source:     opts.Source,
		FileName:   opts.FileName,
		Total:      summary.Total,
		Added:      summary.Added,
		Updated:    summary.Updated,
		Skipped:    summary.Skipped,
		ErrorCount: len(summary.Errors),
	}
	if err := r.Store.AppendImportLog(ctx, entry); err != nil {
		r.Log.Error("failed to append import log", "kind", kind, "error", err)
		return
	}
	r.Log.Info("import complete", "kind", kind, "file", opts.FileName,
		"total", summary.Total, "added", summary.Added, "updated", summary.Updated,
		"skipped", summary.Skipped, "errors", len(summary.Errors))
}
