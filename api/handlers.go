/*
handlers.go - HTTP API handlers for the readiness engine

PURPOSE:
  Exposes the roster, qualification, import, and reporting operations via
  REST. Handles HTTP request/response and JSON serialization, delegating
  all domain logic to the roster/qual/importer/backup packages.

ENDPOINTS:
  People:
    GET    /api/people                      List the roster
    POST   /api/people                      Create person
    GET    /api/people/{id}                 Get person
    PUT    /api/people/{id}                 Update person
    DELETE /api/people/{id}                 Delete person (cascades quals)
    GET    /api/people/{id}/qualifications  Person's qualification records

  Qualifications:
    POST   /api/qualifications              Record a completion
    DELETE /api/qualifications/{id}         Delete one record
    GET    /api/types                       Qualification type catalog

  Import:
    POST   /api/import/preview              Auto-map + validate headers
    POST   /api/import/people               Bulk roster import
    POST   /api/import/qualifications       Bulk qualification import
    GET    /api/import/log                  Audit trail

  Reporting:
    POST   /api/query                       Filtered roster query
    GET    /api/reports/readiness           Per-type readiness rates
    GET    /api/reports/roster.csv          Tabular roster export
    GET    /api/backup                      Full JSON snapshot
    POST   /api/backup                      Restore a snapshot

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Duplicate external id
  - 500: Store failures
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trident/readiness-engine/backup"
	"github.com/trident/readiness-engine/importer"
	"github.com/trident/readiness-engine/logging"
	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. The store handle is
// explicit and shared by reference; there are no ambient globals.
type Handler struct {
	Store roster.Store
	Clock qual.Clock
}

// NewHandler creates a new handler with the given store.
func NewHandler(store roster.Store, clock qual.Clock) *Handler {
	if clock == nil {
		clock = qual.SystemClock
	}
	return &Handler{Store: store, Clock: clock}
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := roster.Query(r.Context(), h.Store, h.Clock, roster.Criteria{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list people", err)
		return
	}

	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, "Failed to get person", err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(p))
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := personFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	id, err := h.Store.AddPerson(r.Context(), p)
	if err != nil {
		writeStoreError(w, "Failed to create person", err)
		return
	}
	p.ID = id
	writeJSON(w, http.StatusCreated, toPersonDTO(p))
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := personFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := h.Store.UpdatePerson(r.Context(), p); err != nil {
		writeStoreError(w, "Failed to update person", err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(p))
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePerson(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPersonQualifications(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	if _, err := h.Store.GetPerson(r.Context(), personID); err != nil {
		writeStoreError(w, "Failed to get person", err)
		return
	}

	quals, err := h.Store.ListQualificationsByPerson(r.Context(), personID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list qualifications", err)
		return
	}

	dtos := make([]QualificationDTO, len(quals))
	for i, q := range quals {
		dtos[i] = h.toQualificationDTO(r, q)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// QUALIFICATION HANDLERS
// =============================================================================

func (h *Handler) CreateQualification(w http.ResponseWriter, r *http.Request) {
	var req CreateQualificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	completion, err := qual.ParseISO(req.CompletionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid completion_date format (use YYYY-MM-DD)", err)
		return
	}
	person, err := h.Store.GetPerson(r.Context(), req.PersonID)
	if err != nil {
		writeStoreError(w, "Failed to get person", err)
		return
	}
	def, err := h.Store.GetQualificationType(r.Context(), req.TypeID)
	if err != nil {
		writeStoreError(w, "Failed to get qualification type", err)
		return
	}

	q := roster.Qualification{
		PersonID:       person.ID,
		TypeID:         def.ID,
		CompletionDate: completion,
		ExpirationDate: qual.CalculateExpiration(def, completion, person.EASDate),
		Score:          req.Score,
		Source:         req.Source,
	}
	id, err := h.Store.AddQualification(r.Context(), q)
	if err != nil {
		writeStoreError(w, "Failed to create qualification", err)
		return
	}
	q.ID = id
	writeJSON(w, http.StatusCreated, h.toQualificationDTO(r, q))
}

func (h *Handler) DeleteQualification(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteQualification(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete qualification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListQualificationTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list qualification types", err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	fields := importer.PersonFields
	if req.Kind == "qualifications" {
		fields = importer.QualificationFields
	}

	result := importer.AutoMap(req.Headers, fields)
	writeJSON(w, http.StatusOK, PreviewResponse{
		Mapping:        result.Mapping,
		Unmapped:       result.Unmapped,
		DetectedSource: importer.DetectSource(req.Headers),
		Errors:         importer.ValidateMapping(result.Mapping, fields),
	})
}

func (h *Handler) ImportPeople(w http.ResponseWriter, r *http.Request) {
	req, err := decodeImportRequest(r, importer.PersonFields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import request", err)
		return
	}

	rec := importer.NewReconciler(h.Store, h.Clock, logging.FromContext(r.Context()))
	summary, err := rec.ImportPeople(r.Context(), req.Rows, req.Mapping, importOptions(req))
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ImportQualifications(w http.ResponseWriter, r *http.Request) {
	req, err := decodeImportRequest(r, importer.QualificationFields)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import request", err)
		return
	}

	rec := importer.NewReconciler(h.Store, h.Clock, logging.FromContext(r.Context()))
	summary, err := rec.ImportQualifications(r.Context(), req.Rows, req.Mapping, req.TypeID, importOptions(req))
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// decodeImportRequest accepts either a JSON body (pre-read rows plus an
// explicit mapping) or a multipart upload whose "file" part is delimited
// text. Uploads are read through ReadDelimited and auto-mapped; the caller
// reviews a mapping via PreviewImport before committing.
func decodeImportRequest(r *http.Request, fields []importer.FieldSpec) (ImportRequest, error) {
	var req ImportRequest

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode body: %w", err)
		}
		return req, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, fmt.Errorf("missing file part: %w", err)
	}
	defer file.Close()

	headers, rows, err := importer.ReadDelimited(file)
	if err != nil {
		return req, err
	}

	req.Rows = rows
	req.Mapping = importer.AutoMap(headers, fields).Mapping
	req.TypeID = r.FormValue("type_id")
	req.UpdateExisting = r.FormValue("update_existing") == "true"
	req.Source = r.FormValue("source")
	if req.Source == "" {
		req.Source = string(importer.DetectSource(headers))
	}
	req.FileName = header.Filename
	return req, nil
}

func (h *Handler) ListImportLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListImportLog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list import log", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func importOptions(req ImportRequest) importer.Options {
	return importer.Options{
		UpdateExisting: req.UpdateExisting,
		Source:         req.Source,
		FileName:       req.FileName,
	}
}

// =============================================================================
// QUERY & REPORTING HANDLERS
// =============================================================================

func (h *Handler) QueryRoster(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	people, err := roster.Query(r.Context(), h.Store, h.Clock, roster.Criteria{
		Status:         roster.PersonStatus(req.Status),
		Section:        req.Section,
		Rank:           req.Rank,
		MOS:            req.MOS,
		Qualifications: req.Qualifications,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Query failed", err)
		return
	}

	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ReadinessReport(w http.ResponseWriter, r *http.Request) {
	report, err := roster.Readiness(r.Context(), h.Store, h.Clock)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build readiness report", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) RosterCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="roster.csv"`)
	if err := roster.WriteRosterCSV(r.Context(), h.Store, h.Clock, w); err != nil {
		logging.FromContext(r.Context()).Error("roster export failed", "error", err)
	}
}

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := backup.Export(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export backup", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="readiness-backup.json"`)
	if err := backup.Write(w, snap); err != nil {
		logging.FromContext(r.Context()).Error("backup export failed", "error", err)
	}
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := backup.Read(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid backup document", err)
		return
	}
	summary, err := backup.Restore(r.Context(), h.Store, snap)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidSnapshot) {
			writeError(w, http.StatusBadRequest, "Invalid backup document", err)
			return
		}
		writeStoreError(w, "Restore failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// HELPERS
// =============================================================================

func toPersonDTO(p roster.Person) PersonDTO {
	dto := PersonDTO{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		LastName:   p.LastName,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		Rank:       p.Rank,
		MOS:        p.MOS,
		Section:    p.Section,
		Status:     string(p.Status),
		Email:      p.Email,
		Phone:      p.Phone,
		Notes:      p.Notes,
	}
	if p.EASDate != nil {
		dto.EASDate = p.EASDate.String()
	}
	return dto
}

func personFromRequest(req SavePersonRequest) (roster.Person, error) {
	// External ids are digits-only everywhere: bulk import strips separators,
	// so manual entry must too or "123-45-6789" would never reconcile with an
	// imported "123456789".
	p := roster.Person{
		ExternalID: importer.DigitsOnly(req.ExternalID),
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		Rank:       req.Rank,
		MOS:        req.MOS,
		Section:    req.Section,
		Status:     roster.PersonStatus(req.Status),
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
	}
	if req.EASDate != "" {
		d, err := qual.ParseISO(req.EASDate)
		if err != nil {
			return p, errors.New("invalid eas_date format (use YYYY-MM-DD)")
		}
		p.EASDate = &d
	}
	return p, nil
}

func (h *Handler) toQualificationDTO(r *http.Request, q roster.Qualification) QualificationDTO {
	dto := QualificationDTO{
		ID:             q.ID,
		PersonID:       q.PersonID,
		TypeID:         q.TypeID,
		CompletionDate: q.CompletionDate.String(),
		Score:          q.Score,
		Source:         q.Source,
		Status:         q.Status(h.Clock),
		DaysUntil:      qual.DaysUntil(q.ExpirationDate, h.Clock),
	}
	if q.ExpirationDate != nil {
		dto.ExpirationDate = q.ExpirationDate.String()
	}
	if q.Score != nil {
		if def, err := h.Store.GetQualificationType(r.Context(), q.TypeID); err == nil {
			dto.ScoreClass = def.ScoreClass(*q.Score)
		}
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps store error taxonomy onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, roster.ErrDuplicateExternalID):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, importer.ErrInvalidMapping):
		writeError(w, http.StatusBadRequest, "Invalid column mapping", err)
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Import failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Import failed", err)
	}
}
