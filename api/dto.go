/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the internal domain
  model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/trident/readiness-engine/importer"
	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/roster"
)

// =============================================================================
// PEOPLE
// =============================================================================

// PersonDTO represents a roster member in API responses.
type PersonDTO struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Rank       string `json:"rank,omitempty"`
	MOS        string `json:"mos,omitempty"`
	Section    string `json:"section,omitempty"`
	Status     string `json:"status,omitempty"`
	EASDate    string `json:"eas_date,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// SavePersonRequest creates or updates a roster member.
type SavePersonRequest struct {
	ExternalID string `json:"external_id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Rank       string `json:"rank,omitempty"`
	MOS        string `json:"mos,omitempty"`
	Section    string `json:"section,omitempty"`
	Status     string `json:"status,omitempty"`
	EASDate    string `json:"eas_date,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// =============================================================================
// QUALIFICATIONS
// =============================================================================

// QualificationDTO includes the computed status so clients never classify
// locally.
type QualificationDTO struct {
	ID             string          `json:"id"`
	PersonID       string          `json:"person_id"`
	TypeID         string          `json:"type_id"`
	CompletionDate string          `json:"completion_date"`
	ExpirationDate string          `json:"expiration_date,omitempty"`
	Score          *int            `json:"score,omitempty"`
	ScoreClass     string          `json:"score_class,omitempty"`
	Source         string          `json:"source,omitempty"`
	Status         qual.StatusInfo `json:"status"`
	DaysUntil      *int            `json:"days_until_expiration,omitempty"`
}

// CreateQualificationRequest records a manual completion. Expiration is
// computed server-side; clients never supply it.
type CreateQualificationRequest struct {
	PersonID       string `json:"person_id"`
	TypeID         string `json:"type_id"`
	CompletionDate string `json:"completion_date"`
	Score          *int   `json:"score,omitempty"`
	Source         string `json:"source,omitempty"`
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportRequest carries pre-read rows plus their column mapping.
type ImportRequest struct {
	Rows           []map[string]string `json:"rows"`
	Mapping        importer.Mapping    `json:"mapping"`
	TypeID         string              `json:"type_id,omitempty"` // qualification imports only
	UpdateExisting bool                `json:"update_existing"`
	Source         string              `json:"source,omitempty"`
	FileName       string              `json:"file_name,omitempty"`
}

// PreviewRequest asks for auto-mapping of a header row.
type PreviewRequest struct {
	Headers []string `json:"headers"`
	Kind    string   `json:"kind"` // "people" or "qualifications"
}

// PreviewResponse reports the proposed mapping, detected source format,
// and any validation errors.
type PreviewResponse struct {
	Mapping        importer.Mapping  `json:"mapping"`
	Unmapped       []string          `json:"unmapped,omitempty"`
	DetectedSource importer.SourceID `json:"detected_source,omitempty"`
	Errors         []string          `json:"errors,omitempty"`
}

// =============================================================================
// QUERY
// =============================================================================

// QueryRequest filters the roster. All criteria are ANDed.
type QueryRequest struct {
	Status         string                 `json:"status,omitempty"`
	Section        string                 `json:"section,omitempty"`
	Rank           string                 `json:"rank,omitempty"`
	MOS            string                 `json:"mos,omitempty"`
	Qualifications []roster.QualCriterion `json:"qualifications,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
