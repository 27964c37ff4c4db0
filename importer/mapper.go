/*
mapper.go - Header auto-mapping, source detection, mapping validation

MATCHING RULES:
  - AutoMap: first field (in table order) with any matching pattern wins.
    Headers matching nothing are reported unmapped for manual assignment.
  - DetectSource: a known source matches when >= 60% of its signature
    header substrings appear (case-sensitive containment) among the file's
    headers. Ties resolve to declaration order; there is no ranking.
  - ValidateMapping: required fields must be mapped, and the mapping must
    identify people - either the identifier column, or both name columns.
*/
package importer

import (
	"fmt"
	"strings"
)

// Mapping assigns a canonical field to each source header.
type Mapping map[string]FieldID

// MapResult is the outcome of auto-mapping a header row.
type MapResult struct {
	Mapping  Mapping  `json:"mapping"`
	Unmapped []string `json:"unmapped"`
}

// AutoMap pattern-matches each header against the field table. First match
// in declaration order wins; a header matching two fields' patterns is
// assigned to the earlier field.
func AutoMap(headers []string, fields []FieldSpec) MapResult {
	result := MapResult{Mapping: make(Mapping, len(headers))}

	for _, header := range headers {
		field, ok := matchHeader(header, fields)
		if !ok {
			result.Unmapped = append(result.Unmapped, header)
			continue
		}
		result.Mapping[header] = field
	}
	return result
}

func matchHeader(header string, fields []FieldSpec) (FieldID, bool) {
	for _, field := range fields {
		for _, pattern := range field.Patterns {
			if pattern.MatchString(header) {
				return field.ID, true
			}
		}
	}
	return "", false
}

// =============================================================================
// SOURCE DETECTION
// =============================================================================

type SourceID string

const (
	SourceMCTIMS     SourceID = "mctims"
	SourceMOL        SourceID = "mol"
	SourceUnitRoster SourceID = "unit_roster"
)

// SourceFormat names a known export format by its signature headers.
type SourceFormat struct {
	ID        SourceID
	Name      string
	Signature []string
}

// knownSources is checked in order; the first source clearing the hit
// ratio wins.
var knownSources = []SourceFormat{
	{ID: SourceMCTIMS, Name: "MCTIMS Training Export",
		Signature: []string{"EDIPI", "Event", "Completion Date", "Score"}},
	{ID: SourceMOL, Name: "MOL Unit Roster",
		Signature: []string{"DoD ID", "Rank", "PMOS", "EAS", "RUC"}},
	{ID: SourceUnitRoster, Name: "Unit Excel Roster",
		Signature: []string{"Last Name", "First Name", "Rank", "Section"}},
}

const sourceHitRatio = 0.6

// DetectSource identifies a known source format from the header row, or
// returns "" when none clears the 60% signature hit ratio.
func DetectSource(headers []string) SourceID {
	for _, source := range knownSources {
		hits := 0
		for _, sig := range source.Signature {
			for _, header := range headers {
				if strings.Contains(header, sig) {
					hits++
					break
				}
			}
		}
		if float64(hits)/float64(len(source.Signature)) >= sourceHitRatio {
			return source.ID
		}
	}
	return ""
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateMapping returns the reasons a mapping cannot proceed, or an
// empty slice when it is sufficient. A valid mapping covers every required
// field and can identify people: the unique-identifier field, or both
// first- and last-name fields.
func ValidateMapping(mapping Mapping, fields []FieldSpec) []string {
	mapped := make(map[FieldID]bool, len(mapping))
	for _, field := range mapping {
		mapped[field] = true
	}

	var errs []string
	for _, field := range fields {
		if field.Required && !mapped[field.ID] {
			errs = append(errs, fmt.Sprintf("required field %q is not mapped", field.Label))
		}
	}

	hasID := mapped[FieldExternalID]
	hasName := (mapped[FieldFirstName] && mapped[FieldLastName]) || mapped[FieldFullName]
	if !hasID && !hasName {
		errs = append(errs, "mapping cannot identify people: map the unique identifier, or both first and last name")
	}
	return errs
}
