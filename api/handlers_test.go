/*
handlers_test.go - HTTP-level tests over the full router

Tests exercise the wired router against the in-memory store with a fixed
clock, covering person CRUD, server-side expiration computation, import
round trips, queries, and error status mapping.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trident/readiness-engine/importer"
	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
	"github.com/trident/readiness-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, roster.SeedTypes(context.Background(), mem))

	clock := qual.FixedClock(qual.NewDate(2025, time.January, 15))
	srv := httptest.NewServer(NewRouter(NewHandler(mem, clock)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// =============================================================================
// PEOPLE
// =============================================================================

func TestPeople_CreateGetDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria",
		Rank: "Sgt", EASDate: "2026-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[PersonDTO](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2026-06-01", created.EASDate)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/people/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[PersonDTO](t, resp)
	assert.Equal(t, "Garcia", got.LastName)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/people/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/people/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPeople_DuplicateExternalID_Conflict(t *testing.T) {
	srv, _ := newTestServer(t)

	first := doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria",
	})
	require.Equal(t, http.StatusCreated, first.StatusCode)

	dup := doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "1234567890", LastName: "Impostor", FirstName: "Max",
	})
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
}

func TestPeople_InvalidEASDate_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		LastName: "Garcia", FirstName: "Maria", EASDate: "06/01/2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPeople_ExternalID_NormalizedToDigits(t *testing.T) {
	// GIVEN: A manually entered id with separators
	// WHEN: Creating the person
	// THEN: The stored id is digits-only, matching what bulk import produces

	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "123-45-6789", LastName: "Garcia", FirstName: "Maria",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[PersonDTO](t, resp)
	assert.Equal(t, "123456789", created.ExternalID)

	p, err := mem.GetPersonByExternalID(context.Background(), "123456789")
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
}

// =============================================================================
// QUALIFICATIONS
// =============================================================================

func TestQualifications_CreateComputesExpiration(t *testing.T) {
	// GIVEN: A member separating 2025-06-01
	// WHEN: Recording a 48-month EAS-aware completion via the API
	// THEN: The response carries the server-computed, EAS-capped expiration

	srv, _ := newTestServer(t)

	person := decode[PersonDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria", EASDate: "2025-06-01",
	}))

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/qualifications", CreateQualificationRequest{
		PersonID: person.ID, TypeID: "mv_license", CompletionDate: "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[QualificationDTO](t, resp)
	assert.Equal(t, "2025-06-01", dto.ExpirationDate)
	assert.Equal(t, qual.StatusCurrent, dto.Status.Kind)
	require.NotNil(t, dto.DaysUntil)
	assert.Equal(t, 137, *dto.DaysUntil)
}

func TestQualifications_ScoreClassInResponse(t *testing.T) {
	srv, _ := newTestServer(t)

	person := decode[PersonDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/people", SavePersonRequest{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria",
	}))

	score := 242
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/qualifications", CreateQualificationRequest{
		PersonID: person.ID, TypeID: "pft", CompletionDate: "2024-03-15", Score: &score,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decode[QualificationDTO](t, resp)
	assert.Equal(t, "1st Class", dto.ScoreClass)
	assert.Equal(t, "2025-06-30", dto.ExpirationDate)

	list := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/people/%s/qualifications", srv.URL, person.ID), nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	dtos := decode[[]QualificationDTO](t, list)
	require.Len(t, dtos, 1)
	assert.Equal(t, "1st Class", dtos[0].ScoreClass)
}

func TestQualifications_UnknownPerson_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/qualifications", CreateQualificationRequest{
		PersonID: "nobody", TypeID: "pft", CompletionDate: "2024-03-15",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTypes_ListsSeededCatalog(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/types", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	types := decode[[]qual.TypeDefinition](t, resp)
	assert.Len(t, types, len(qual.StandardTypes()))
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_PreviewMapsHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/import/preview", PreviewRequest{
		Headers: []string{"DoD ID", "Last Name", "First Name", "Rank", "PMOS", "EAS", "RUC"},
		Kind:    "people",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	preview := decode[PreviewResponse](t, resp)
	assert.Equal(t, importer.FieldExternalID, preview.Mapping["DoD ID"])
	assert.Equal(t, importer.SourceMOL, preview.DetectedSource)
	assert.Contains(t, preview.Unmapped, "RUC")
	assert.Empty(t, preview.Errors)
}

func TestImport_PeopleEndToEnd(t *testing.T) {
	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/import/people", ImportRequest{
		Rows: []map[string]string{
			{"DoD ID": "1234567890", "Last Name": "Garcia", "First Name": "Maria", "Rank": "SGT"},
			{"DoD ID": "2345678901", "Last Name": "Nguyen", "First Name": "Binh", "Rank": "CPL"},
		},
		Mapping: importer.Mapping{
			"DoD ID":     importer.FieldExternalID,
			"Last Name":  importer.FieldLastName,
			"First Name": importer.FieldFirstName,
			"Rank":       importer.FieldRank,
		},
		Source:   "mol",
		FileName: "roster.csv",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary := decode[importer.Summary](t, resp)
	assert.Equal(t, 2, summary.Added)

	p, err := mem.GetPersonByExternalID(context.Background(), "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "Sgt", p.Rank)

	log := doJSON(t, http.MethodGet, srv.URL+"/api/import/log", nil)
	entries := decode[[]roster.ImportLogEntry](t, log)
	require.Len(t, entries, 1)
	assert.Equal(t, "roster.csv", entries[0].FileName)
}

func TestImport_MultipartUpload(t *testing.T) {
	// A raw CSV upload is read, auto-mapped, and reconciled in one request.
	srv, mem := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "mol_roster.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("DoD ID,Last Name,First Name,Rank\n1234567890,Garcia,Maria,SGT\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/import/people", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary := decode[importer.Summary](t, resp)
	assert.Equal(t, 1, summary.Added)

	p, err := mem.GetPersonByExternalID(context.Background(), "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "Sgt", p.Rank)

	entries, err := mem.ListImportLog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mol_roster.csv", entries[0].FileName)
}

func TestImport_InvalidMapping_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/import/people", ImportRequest{
		Rows:    []map[string]string{{"Rank": "Sgt"}},
		Mapping: importer.Mapping{"Rank": importer.FieldRank},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// QUERY & REPORTS
// =============================================================================

func TestQuery_FiltersByQualificationCurrency(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()

	holder, err := mem.AddPerson(ctx, roster.Person{
		ExternalID: "1", LastName: "Garcia", Status: roster.PersonActive,
	})
	require.NoError(t, err)
	_, err = mem.AddPerson(ctx, roster.Person{
		ExternalID: "2", LastName: "Nguyen", Status: roster.PersonActive,
	})
	require.NoError(t, err)

	exp := qual.NewDate(2027, time.March, 1)
	_, err = mem.AddQualification(ctx, roster.Qualification{
		PersonID: holder, TypeID: "swim",
		CompletionDate: qual.NewDate(2024, time.March, 1),
		ExpirationDate: &exp,
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/query", QueryRequest{
		Qualifications: []roster.QualCriterion{{TypeID: "swim", MustBeCurrent: true}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	people := decode[[]PersonDTO](t, resp)
	require.Len(t, people, 1)
	assert.Equal(t, "Garcia", people[0].LastName)
}

func TestReports_ReadinessAndCSV(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()

	_, err := mem.AddPerson(ctx, roster.Person{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria",
		Rank: "Sgt", Status: roster.PersonActive,
	})
	require.NoError(t, err)

	readiness := doJSON(t, http.MethodGet, srv.URL+"/api/reports/readiness", nil)
	require.Equal(t, http.StatusOK, readiness.StatusCode)
	report := decode[roster.ReadinessReport](t, readiness)
	assert.Equal(t, 1, report.RosterSize)
	assert.Len(t, report.Types, len(qual.StandardTypes()))

	csvResp := doJSON(t, http.MethodGet, srv.URL+"/api/reports/roster.csv", nil)
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get("Content-Type"))
}

// =============================================================================
// BACKUP
// =============================================================================

func TestBackup_ExportRestoreThroughAPI(t *testing.T) {
	srv, mem := newTestServer(t)
	ctx := context.Background()

	_, err := mem.AddPerson(ctx, roster.Person{
		ExternalID: "1234567890", LastName: "Garcia", FirstName: "Maria",
		Status: roster.PersonActive,
	})
	require.NoError(t, err)

	export := doJSON(t, http.MethodGet, srv.URL+"/api/backup", nil)
	require.Equal(t, http.StatusOK, export.StatusCode)
	var doc json.RawMessage
	require.NoError(t, json.NewDecoder(export.Body).Decode(&doc))

	// Restore into a second, empty server
	srv2, mem2 := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, srv2.URL+"/api/backup", bytes.NewReader(doc))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	p, err := mem2.GetPersonByExternalID(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "Garcia", p.LastName)
}

func TestBackup_RestoreInvalidTypeDefinition_BadRequest(t *testing.T) {
	// A snapshot whose type catalog breaks the cycle contract must be
	// rejected up front, not persisted for the engine to trip over later.
	srv, mem := newTestServer(t)

	doc := []byte(`{
		"version": 1,
		"data": {
			"people": [],
			"qualifications": [],
			"qualification_types": [
				{"id": "bad", "name": "Broken", "cycle_type": "calendar_window"}
			],
			"settings": {}
		}
	}`)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/backup", json.RawMessage(doc))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err := mem.GetQualificationType(context.Background(), "bad")
	assert.True(t, roster.IsNotFound(err))
}
