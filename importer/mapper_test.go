package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trident/readiness-engine/importer"
)

// =============================================================================
// AUTO-MAPPING
// =============================================================================

func TestAutoMap_RosterHeaders(t *testing.T) {
	// GIVEN: A typical unit roster header row
	// WHEN: Auto-mapping against the person field table
	// THEN: Known headers map, unknown headers are reported unmapped

	headers := []string{"DoD ID", "Last Name", "First Name", "Rank", "PMOS", "Section", "EAS", "Random Column"}
	result := importer.AutoMap(headers, importer.PersonFields)

	assert.Equal(t, importer.FieldExternalID, result.Mapping["DoD ID"])
	assert.Equal(t, importer.FieldLastName, result.Mapping["Last Name"])
	assert.Equal(t, importer.FieldFirstName, result.Mapping["First Name"])
	assert.Equal(t, importer.FieldRank, result.Mapping["Rank"])
	assert.Equal(t, importer.FieldMOS, result.Mapping["PMOS"])
	assert.Equal(t, importer.FieldSection, result.Mapping["Section"])
	assert.Equal(t, importer.FieldEASDate, result.Mapping["EAS"])
	assert.Equal(t, []string{"Random Column"}, result.Unmapped)
}

func TestAutoMap_HeaderVariants(t *testing.T) {
	tests := []struct {
		header string
		want   importer.FieldID
	}{
		{"EDIPI", importer.FieldExternalID},
		{"dodid", importer.FieldExternalID},
		{"Surname", importer.FieldLastName},
		{"Given Name", importer.FieldFirstName},
		{"Name", importer.FieldFullName},
		{"Full Name", importer.FieldFullName},
		{"Pay Grade", importer.FieldRank},
		{"Platoon", importer.FieldSection},
		{"End of Active Service", importer.FieldEASDate},
		{"Duty Status", importer.FieldStatus},
		{"E-Mail", importer.FieldEmail},
		{"Remarks", importer.FieldNotes},
	}
	for _, tt := range tests {
		result := importer.AutoMap([]string{tt.header}, importer.PersonFields)
		assert.Equal(t, tt.want, result.Mapping[tt.header], "header %q", tt.header)
	}
}

func TestAutoMap_FirstMatchWins(t *testing.T) {
	// "Last Name" also contains "name", but the last-name field is declared
	// before the full-name field so it wins.
	result := importer.AutoMap([]string{"Last Name"}, importer.PersonFields)
	assert.Equal(t, importer.FieldLastName, result.Mapping["Last Name"])
}

func TestAutoMap_QualificationHeaders(t *testing.T) {
	headers := []string{"EDIPI", "Completion Date", "Score"}
	result := importer.AutoMap(headers, importer.QualificationFields)

	assert.Equal(t, importer.FieldExternalID, result.Mapping["EDIPI"])
	assert.Equal(t, importer.FieldCompletionDate, result.Mapping["Completion Date"])
	assert.Equal(t, importer.FieldScore, result.Mapping["Score"])
	assert.Empty(t, result.Unmapped)
}

// =============================================================================
// SOURCE DETECTION
// =============================================================================

func TestDetectSource(t *testing.T) {
	// MCTIMS export: all four signature headers present
	assert.Equal(t, importer.SourceMCTIMS,
		importer.DetectSource([]string{"EDIPI", "Event", "Completion Date", "Score", "Extra"}))

	// MOL roster: 4 of 5 signature headers clears the 60% ratio
	assert.Equal(t, importer.SourceMOL,
		importer.DetectSource([]string{"DoD ID", "Rank", "PMOS", "EAS"}))

	// Generic unit roster
	assert.Equal(t, importer.SourceUnitRoster,
		importer.DetectSource([]string{"Last Name", "First Name", "Rank", "Section"}))

	// Nothing recognizable
	assert.Equal(t, importer.SourceID(""),
		importer.DetectSource([]string{"Alpha", "Bravo", "Charlie"}))
}

// =============================================================================
// MAPPING VALIDATION
// =============================================================================

func TestValidateMapping_PersonIdentification(t *testing.T) {
	// Identifier alone is sufficient
	assert.Empty(t, importer.ValidateMapping(
		importer.Mapping{"DoD ID": importer.FieldExternalID}, importer.PersonFields))

	// Name pair is sufficient
	assert.Empty(t, importer.ValidateMapping(
		importer.Mapping{"Last": importer.FieldLastName, "First": importer.FieldFirstName},
		importer.PersonFields))

	// Combined name column is sufficient
	assert.Empty(t, importer.ValidateMapping(
		importer.Mapping{"Name": importer.FieldFullName}, importer.PersonFields))

	// Last name alone cannot identify people
	errs := importer.ValidateMapping(
		importer.Mapping{"Last": importer.FieldLastName}, importer.PersonFields)
	assert.NotEmpty(t, errs)
}

func TestValidateMapping_QualificationRequiredFields(t *testing.T) {
	// Missing the completion date
	errs := importer.ValidateMapping(
		importer.Mapping{"EDIPI": importer.FieldExternalID}, importer.QualificationFields)
	assert.Len(t, errs, 1)

	// Complete mapping
	assert.Empty(t, importer.ValidateMapping(importer.Mapping{
		"EDIPI":           importer.FieldExternalID,
		"Completion Date": importer.FieldCompletionDate,
	}, importer.QualificationFields))
}
