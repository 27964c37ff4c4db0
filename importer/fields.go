/*
Package importer maps heterogeneous spreadsheet exports onto the roster.

PURPOSE:
  Personnel and training data arrives as delimited files exported from
  several systems, each with its own header spellings. This package
  auto-detects which canonical field each column holds, validates the
  mapping, transforms raw rows into canonical records, and reconciles them
  into the store by natural key.

PIPELINE:
  raw file -> ReadDelimited -> AutoMap/ValidateMapping -> TransformRow
           -> Reconciler.ImportPeople / ImportQualifications

KEY CONCEPTS IN THIS FILE (fields.go):
  - FieldID: Canonical field identifier
  - FieldSpec: Label, requiredness, header patterns, and value kind
  - PersonFields / QualificationFields: The ordered field tables

MATCHING:
  Header patterns are tried in the field table's declared order and the
  first field with any matching pattern wins. A header matching two fields'
  patterns resolves to declaration order; the mapper does not rank matches.
*/
package importer

import "regexp"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

type FieldID string

const (
	FieldExternalID     FieldID = "external_id"
	FieldLastName       FieldID = "last_name"
	FieldFirstName      FieldID = "first_name"
	FieldFullName       FieldID = "full_name"
	FieldMiddleName     FieldID = "middle_name" // produced by name splitting, never mapped directly
	FieldRank           FieldID = "rank"
	FieldMOS            FieldID = "mos"
	FieldSection        FieldID = "section"
	FieldEASDate        FieldID = "eas_date"
	FieldStatus         FieldID = "status"
	FieldEmail          FieldID = "email"
	FieldPhone          FieldID = "phone"
	FieldNotes          FieldID = "notes"
	FieldCompletionDate FieldID = "completion_date"
	FieldScore          FieldID = "score"
)

// FieldKind selects the value transform applied by TransformRow.
type FieldKind int

const (
	KindText   FieldKind = iota
	KindDate             // normalized to ISO via ParseDate
	KindRank             // rank.Normalize
	KindDigits           // all non-digit characters stripped
	KindInt              // must parse as an integer
)

// FieldSpec describes one canonical field: its display label, whether a
// valid mapping must include it, the header patterns that select it, and
// the transform kind applied to its values.
type FieldSpec struct {
	ID       FieldID
	Label    string
	Required bool
	Patterns []*regexp.Regexp
	Kind     FieldKind
}

func pats(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile("(?i)" + expr)
	}
	return compiled
}

// PersonFields is the ordered field table for roster imports. Order is
// load-bearing: AutoMap resolves ambiguous headers to the first match.
var PersonFields = []FieldSpec{
	{ID: FieldExternalID, Label: "DoD ID / EDIPI", Kind: KindDigits,
		Patterns: pats(`dod\s*id`, `edipi`, `dodid`, `\bssn\b`, `social`, `service\s*(number|no)`, `emp(loyee)?\s*(id|number)`)},
	{ID: FieldLastName, Label: "Last Name", Kind: KindText,
		Patterns: pats(`last\s*name`, `surname`, `\blname\b`)},
	{ID: FieldFirstName, Label: "First Name", Kind: KindText,
		Patterns: pats(`first\s*name`, `given\s*name`, `\bfname\b`)},
	{ID: FieldFullName, Label: "Name", Kind: KindText,
		Patterns: pats(`^(full\s*)?name$`, `member\s*name`, `marine$`)},
	{ID: FieldRank, Label: "Rank", Kind: KindRank,
		Patterns: pats(`\brank\b`, `\bgrade\b`, `pay\s*grade`)},
	{ID: FieldMOS, Label: "MOS", Kind: KindText,
		Patterns: pats(`\bp?mos\b`, `occupational`, `job\s*code`)},
	{ID: FieldSection, Label: "Section", Kind: KindText,
		Patterns: pats(`section`, `platoon`, `\bplt\b`, `shop`, `work\s*center`, `company`)},
	{ID: FieldEASDate, Label: "EAS Date", Kind: KindDate,
		Patterns: pats(`\beas\b`, `separation`, `end\s*of\s*(active\s*)?service`, `\bets\b`)},
	{ID: FieldStatus, Label: "Status", Kind: KindText,
		Patterns: pats(`^status$`, `duty\s*status`)},
	{ID: FieldEmail, Label: "Email", Kind: KindText,
		Patterns: pats(`e-?mail`)},
	{ID: FieldPhone, Label: "Phone", Kind: KindText,
		Patterns: pats(`phone`, `\bcell\b`, `contact\s*(number|no)`)},
	{ID: FieldNotes, Label: "Notes", Kind: KindText,
		Patterns: pats(`notes?`, `remarks?`, `comments?`)},
}

// QualificationFields is the ordered field table for qualification imports.
// Person resolution is strictly by identifier on this path, so the
// identifier and completion date are hard requirements.
var QualificationFields = []FieldSpec{
	{ID: FieldExternalID, Label: "DoD ID / EDIPI", Required: true, Kind: KindDigits,
		Patterns: pats(`dod\s*id`, `edipi`, `dodid`, `\bssn\b`, `service\s*(number|no)`)},
	{ID: FieldCompletionDate, Label: "Completion Date", Required: true, Kind: KindDate,
		Patterns: pats(`completion`, `date\s*completed`, `comp\s*date`, `event\s*date`, `^date$`, `qual(ification)?\s*date`)},
	{ID: FieldScore, Label: "Score", Kind: KindInt,
		Patterns: pats(`score`, `points`, `result`)},
	{ID: FieldLastName, Label: "Last Name", Kind: KindText,
		Patterns: pats(`last\s*name`, `surname`)},
	{ID: FieldFirstName, Label: "First Name", Kind: KindText,
		Patterns: pats(`first\s*name`, `given\s*name`)},
}

// specByID builds a lookup for TransformRow.
func specByID(fields []FieldSpec) map[FieldID]FieldSpec {
	m := make(map[FieldID]FieldSpec, len(fields))
	for _, f := range fields {
		m[f.ID] = f
	}
	return m
}
