/*
Package backup exports and restores full store snapshots.

PURPOSE:
  A snapshot is a JSON document sufficient to reconstruct every entity.
  Store-assigned ids are NOT preserved across backup/restore: people are
  re-inserted with fresh ids and a dictionary built during re-insertion
  rewrites each qualification's person foreign key. Qualifications whose
  old person id is absent from the dictionary are silently dropped.
*/
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// FormatVersion identifies the snapshot schema.
const FormatVersion = 1

// ErrInvalidSnapshot marks a snapshot whose contents fail validation.
// Nothing is written to the store when Restore returns this error.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the exported backup document.
type Snapshot struct {
	Version    int          `json:"version"`
	ExportDate time.Time    `json:"export_date"`
	Data       SnapshotData `json:"data"`
}

type SnapshotData struct {
	People             []roster.Person        `json:"people"`
	Qualifications     []roster.Qualification `json:"qualifications"`
	QualificationTypes []qual.TypeDefinition  `json:"qualification_types"`
	Settings           map[string]string      `json:"settings"`
}

// settingKeys enumerates the settings carried in a snapshot. The settings
// store has no list operation, so exported keys are explicit.
var settingKeys = []string{"unit_name", "report_footer"}

// Export builds a snapshot of the whole store.
func Export(ctx context.Context, store roster.Store) (*Snapshot, error) {
	people, err := store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("export people: %w", err)
	}
	quals, err := store.ListQualifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("export qualifications: %w", err)
	}
	types, err := store.ListQualificationTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("export qualification types: %w", err)
	}

	settings := make(map[string]string)
	for _, key := range settingKeys {
		value, err := store.GetSetting(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("export setting %s: %w", key, err)
		}
		if value != "" {
			settings[key] = value
		}
	}

	return &Snapshot{
		Version:    FormatVersion,
		ExportDate: time.Now().UTC(),
		Data: SnapshotData{
			People:             people,
			Qualifications:     quals,
			QualificationTypes: types,
			Settings:           settings,
		},
	}, nil
}

// Write serializes a snapshot as indented JSON.
func Write(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Read parses a snapshot document.
func Read(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if snap.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported backup version %d", snap.Version)
	}
	return &snap, nil
}

// RestoreSummary reports what a restore inserted and dropped.
type RestoreSummary struct {
	People                int `json:"people"`
	Qualifications        int `json:"qualifications"`
	DroppedQualifications int `json:"dropped_qualifications"`
}

// Restore inserts a snapshot's entities into the store. People receive
// fresh store ids; the old-id -> new-id dictionary built during person
// re-insertion rewrites qualification foreign keys. Orphaned
// qualifications are dropped. Restore does not clear the store first;
// restoring into a non-empty roster fails on duplicate external ids.
func Restore(ctx context.Context, store roster.Store, snap *Snapshot) (*RestoreSummary, error) {
	summary := &RestoreSummary{}

	// A definition with a broken cycle contract (a calendar window with no
	// bounds, a rolling type without a month count) must never reach the
	// store: the expiration engine assumes persisted definitions hold their
	// structural invariants. Validate everything before the first write.
	for _, def := range snap.Data.QualificationTypes {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}

	for _, def := range snap.Data.QualificationTypes {
		if err := store.PutQualificationType(ctx, def); err != nil {
			return nil, fmt.Errorf("restore type %s: %w", def.ID, err)
		}
	}

	idMap := make(map[string]string, len(snap.Data.People))
	for _, p := range snap.Data.People {
		oldID := p.ID
		p.ID = ""
		newID, err := store.AddPerson(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("restore person %s: %w", p.ExternalID, err)
		}
		idMap[oldID] = newID
		summary.People++
	}

	for _, q := range snap.Data.Qualifications {
		newPersonID, ok := idMap[q.PersonID]
		if !ok {
			summary.DroppedQualifications++
			continue
		}
		q.ID = ""
		q.PersonID = newPersonID
		if _, err := store.AddQualification(ctx, q); err != nil {
			return nil, fmt.Errorf("restore qualification %s: %w", q.TypeID, err)
		}
		summary.Qualifications++
	}

	for key, value := range snap.Data.Settings {
		if err := store.SetSetting(ctx, key, value); err != nil {
			return nil, fmt.Errorf("restore setting %s: %w", key, err)
		}
	}

	if err := store.AppendImportLog(ctx, roster.ImportLogEntry{
		Kind:    roster.ImportRestore,
		Source:  "backup",
		Total:   summary.People + summary.Qualifications,
		Added:   summary.People + summary.Qualifications,
		Skipped: summary.DroppedQualifications,
	}); err != nil {
		return nil, fmt.Errorf("log restore: %w", err)
	}
	return summary, nil
}
