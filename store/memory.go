// Package store provides roster.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	people     map[string]roster.Person
	byExternal map[string]string // externalID -> person id
	quals      map[string]roster.Qualification
	types      map[string]qual.TypeDefinition
	importLog  []roster.ImportLogEntry
	settings   map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		people:     make(map[string]roster.Person),
		byExternal: make(map[string]string),
		quals:      make(map[string]roster.Qualification),
		types:      make(map[string]qual.TypeDefinition),
		settings:   make(map[string]string),
	}
}

var _ roster.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// People
// -----------------------------------------------------------------------------

func (m *Memory) AddPerson(_ context.Context, p roster.Person) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ExternalID != "" {
		if _, exists := m.byExternal[p.ExternalID]; exists {
			return "", roster.ErrDuplicateExternalID
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	m.people[p.ID] = p
	if p.ExternalID != "" {
		m.byExternal[p.ExternalID] = p.ID
	}
	return p.ID, nil
}

func (m *Memory) GetPerson(_ context.Context, id string) (roster.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.people[id]
	if !ok {
		return roster.Person{}, &roster.NotFoundError{Kind: "person", ID: id}
	}
	return p, nil
}

func (m *Memory) GetPersonByExternalID(_ context.Context, externalID string) (roster.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byExternal[externalID]
	if !ok {
		return roster.Person{}, &roster.NotFoundError{Kind: "person", ID: externalID}
	}
	return m.people[id], nil
}

func (m *Memory) ListPeople(_ context.Context) ([]roster.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]roster.Person, 0, len(m.people))
	for _, p := range m.people {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) UpdatePerson(_ context.Context, p roster.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.people[p.ID]
	if !ok {
		return &roster.NotFoundError{Kind: "person", ID: p.ID}
	}
	if p.ExternalID != existing.ExternalID {
		if other, exists := m.byExternal[p.ExternalID]; exists && other != p.ID {
			return roster.ErrDuplicateExternalID
		}
		delete(m.byExternal, existing.ExternalID)
		if p.ExternalID != "" {
			m.byExternal[p.ExternalID] = p.ID
		}
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.people[p.ID] = p
	return nil
}

// DeletePerson removes the person and cascades deletion of their
// qualification records.
func (m *Memory) DeletePerson(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.people[id]
	if !ok {
		return &roster.NotFoundError{Kind: "person", ID: id}
	}
	delete(m.people, id)
	delete(m.byExternal, p.ExternalID)
	for qid, q := range m.quals {
		if q.PersonID == id {
			delete(m.quals, qid)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Qualifications
// -----------------------------------------------------------------------------

func (m *Memory) AddQualification(_ context.Context, q roster.Qualification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.people[q.PersonID]; !ok {
		return "", &roster.NotFoundError{Kind: "person", ID: q.PersonID}
	}
	if _, ok := m.types[q.TypeID]; !ok {
		return "", roster.ErrTypeNotFound
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	m.quals[q.ID] = q
	return q.ID, nil
}

func (m *Memory) GetQualification(_ context.Context, id string) (roster.Qualification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.quals[id]
	if !ok {
		return roster.Qualification{}, &roster.NotFoundError{Kind: "qualification", ID: id}
	}
	return q, nil
}

func (m *Memory) ListQualificationsByPerson(_ context.Context, personID string) ([]roster.Qualification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterQuals(func(q roster.Qualification) bool { return q.PersonID == personID }), nil
}

func (m *Memory) ListQualificationsByType(_ context.Context, typeID string) ([]roster.Qualification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterQuals(func(q roster.Qualification) bool { return q.TypeID == typeID }), nil
}

func (m *Memory) ListQualifications(_ context.Context) ([]roster.Qualification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterQuals(func(roster.Qualification) bool { return true }), nil
}

func (m *Memory) filterQuals(keep func(roster.Qualification) bool) []roster.Qualification {
	var result []roster.Qualification
	for _, q := range m.quals {
		if keep(q) {
			result = append(result, q)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CompletionDate.Equal(result[j].CompletionDate) {
			return result[i].CompletionDate.Before(result[j].CompletionDate)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *Memory) DeleteQualification(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.quals[id]; !ok {
		return &roster.NotFoundError{Kind: "qualification", ID: id}
	}
	delete(m.quals, id)
	return nil
}

// -----------------------------------------------------------------------------
// Qualification types
// -----------------------------------------------------------------------------

func (m *Memory) PutQualificationType(_ context.Context, def qual.TypeDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[def.ID] = def
	return nil
}

func (m *Memory) GetQualificationType(_ context.Context, id string) (qual.TypeDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.types[id]
	if !ok {
		return qual.TypeDefinition{}, roster.ErrTypeNotFound
	}
	return def, nil
}

func (m *Memory) ListQualificationTypes(_ context.Context) ([]qual.TypeDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]qual.TypeDefinition, 0, len(m.types))
	for _, def := range m.types {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// -----------------------------------------------------------------------------
// Import log
// -----------------------------------------------------------------------------

func (m *Memory) AppendImportLog(_ context.Context, entry roster.ImportLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.importLog = append(m.importLog, entry)
	return nil
}

func (m *Memory) ListImportLog(_ context.Context) ([]roster.ImportLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]roster.ImportLogEntry, len(m.importLog))
	copy(result, m.importLog)
	return result, nil
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *Memory) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}
