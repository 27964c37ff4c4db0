package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
	"github.com/trident/readiness-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, roster.SeedTypes(context.Background(), s))
	return s
}

func addTestPerson(t *testing.T, s *sqlite.Store, externalID, last string) string {
	t.Helper()
	eas := qual.NewDate(2026, time.June, 1)
	id, err := s.AddPerson(context.Background(), roster.Person{
		ExternalID: externalID, LastName: last, FirstName: "Test",
		Rank: "Sgt", Status: roster.PersonActive, EASDate: &eas,
	})
	require.NoError(t, err)
	return id
}

// =============================================================================
// PEOPLE
// =============================================================================

func TestSQLite_PersonRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addTestPerson(t, s, "1234567890", "Garcia")

	p, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Garcia", p.LastName)
	assert.Equal(t, roster.PersonActive, p.Status)
	require.NotNil(t, p.EASDate)
	assert.Equal(t, "2026-06-01", p.EASDate.String())
	assert.False(t, p.CreatedAt.IsZero())

	byExt, err := s.GetPersonByExternalID(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, id, byExt.ID)
}

func TestSQLite_DuplicateExternalID_Rejected(t *testing.T) {
	s := newTestStore(t)

	addTestPerson(t, s, "1234567890", "Garcia")
	_, err := s.AddPerson(context.Background(), roster.Person{
		ExternalID: "1234567890", LastName: "Impostor",
	})
	assert.ErrorIs(t, err, roster.ErrDuplicateExternalID)
}

func TestSQLite_EmptyExternalIDs_NotUnique(t *testing.T) {
	// The unique index is partial; name-only people coexist.
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddPerson(ctx, roster.Person{LastName: "Garcia"})
	require.NoError(t, err)
	_, err = s.AddPerson(ctx, roster.Person{LastName: "Nguyen"})
	require.NoError(t, err)

	people, err := s.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 2)
}

func TestSQLite_UpdatePerson(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := addTestPerson(t, s, "1234567890", "Garcia")

	p, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	p.Rank = "SSgt"
	require.NoError(t, s.UpdatePerson(ctx, p))

	got, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SSgt", got.Rank)

	err = s.UpdatePerson(ctx, roster.Person{ID: "no-such-id", LastName: "X"})
	assert.True(t, roster.IsNotFound(err))
}

// =============================================================================
// QUALIFICATIONS
// =============================================================================

func TestSQLite_QualificationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	personID := addTestPerson(t, s, "1234567890", "Garcia")

	exp := qual.NewDate(2025, time.June, 30)
	score := 242
	qid, err := s.AddQualification(ctx, roster.Qualification{
		PersonID: personID, TypeID: "pft",
		CompletionDate: qual.NewDate(2024, time.March, 15),
		ExpirationDate: &exp,
		Score:          &score,
		Source:         "mctims",
	})
	require.NoError(t, err)

	q, err := s.GetQualification(ctx, qid)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", q.CompletionDate.String())
	require.NotNil(t, q.ExpirationDate)
	assert.Equal(t, "2025-06-30", q.ExpirationDate.String())
	require.NotNil(t, q.Score)
	assert.Equal(t, 242, *q.Score)
	assert.Equal(t, "mctims", q.Source)
}

func TestSQLite_DeletePerson_CascadesQualifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	personID := addTestPerson(t, s, "1234567890", "Garcia")

	_, err := s.AddQualification(ctx, roster.Qualification{
		PersonID: personID, TypeID: "swim",
		CompletionDate: qual.NewDate(2024, time.March, 1),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeletePerson(ctx, personID))

	quals, err := s.ListQualifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, quals)
}

func TestSQLite_AddQualification_DanglingReferences_Rejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	personID := addTestPerson(t, s, "1234567890", "Garcia")

	_, err := s.AddQualification(ctx, roster.Qualification{
		PersonID: "no-such-person", TypeID: "swim",
		CompletionDate: qual.NewDate(2024, time.March, 1),
	})
	assert.True(t, roster.IsNotFound(err))

	_, err = s.AddQualification(ctx, roster.Qualification{
		PersonID: personID, TypeID: "no-such-type",
		CompletionDate: qual.NewDate(2024, time.March, 1),
	})
	assert.True(t, roster.IsNotFound(err))
}

func TestSQLite_ListQualifications_OrderedByCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	personID := addTestPerson(t, s, "1234567890", "Garcia")

	for _, d := range []qual.Date{
		qual.NewDate(2024, time.June, 1),
		qual.NewDate(2023, time.January, 1),
	} {
		_, err := s.AddQualification(ctx, roster.Qualification{
			PersonID: personID, TypeID: "swim", CompletionDate: d,
		})
		require.NoError(t, err)
	}

	quals, err := s.ListQualificationsByPerson(ctx, personID)
	require.NoError(t, err)
	require.Len(t, quals, 2)
	assert.Equal(t, "2023-01-01", quals[0].CompletionDate.String())
}

// =============================================================================
// TYPES, LOG, SETTINGS
// =============================================================================

func TestSQLite_TypeDefinitionsSurviveJSONStorage(t *testing.T) {
	s := newTestStore(t)

	def, err := s.GetQualificationType(context.Background(), "pft")
	require.NoError(t, err)
	assert.Equal(t, qual.CycleCalendarWindow, def.Cycle)
	require.NotNil(t, def.WindowEnd)
	assert.Equal(t, 6, def.WindowEnd.Month)
	assert.Len(t, def.ScoreBands, 3)

	_, err = s.GetQualificationType(context.Background(), "nope")
	assert.True(t, roster.IsNotFound(err))
}

func TestSQLite_ImportLogAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendImportLog(ctx, roster.ImportLogEntry{
		Kind: roster.ImportPeople, Total: 3, Added: 3,
	}))
	entries, err := s.ListImportLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Added)

	require.NoError(t, s.SetSetting(ctx, "unit_name", "1st Battalion"))
	value, err := s.GetSetting(ctx, "unit_name")
	require.NoError(t, err)
	assert.Equal(t, "1st Battalion", value)

	missing, err := s.GetSetting(ctx, "report_footer")
	require.NoError(t, err)
	assert.Equal(t, "", missing)
}
