/*
transform.go - Raw row to canonical record

PURPOSE:
  Applies a column mapping plus field-level transforms (date parsing, rank
  normalization, identifier digit-stripping, name splitting) to one raw
  spreadsheet row. Transformation is pure; unparseable dates degrade to an
  unset field with a warning rather than failing the row.
*/
package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trident/readiness-engine/rank"
)

// Record is a canonical row: mapped field values plus any soft warnings
// raised while transforming.
type Record struct {
	Fields   map[FieldID]string
	Warnings []string
}

// Get returns a field value, "" when unset.
func (r Record) Get(id FieldID) string { return r.Fields[id] }

// TransformRow applies the mapping and per-field transforms to a raw row.
// Empty raw values contribute nothing; unmapped headers are ignored. A
// combined full-name column is split into surname/given/middle unless the
// row also carries explicit name columns.
func TransformRow(row map[string]string, mapping Mapping, fields []FieldSpec) Record {
	specs := specByID(fields)
	rec := Record{Fields: make(map[FieldID]string)}

	for header, fieldID := range mapping {
		raw := strings.TrimSpace(row[header])
		if raw == "" {
			continue
		}
		spec, ok := specs[fieldID]
		if !ok {
			rec.Fields[fieldID] = raw
			continue
		}

		switch spec.Kind {
		case KindDate:
			d := ParseDate(raw)
			if d == nil {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("unparseable date %q in column %q", raw, header))
				continue
			}
			rec.Fields[fieldID] = d.String()
		case KindRank:
			rec.Fields[fieldID] = rank.Normalize(raw)
		case KindDigits:
			rec.Fields[fieldID] = DigitsOnly(raw)
		case KindInt:
			if _, err := strconv.Atoi(raw); err != nil {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("non-numeric value %q in column %q", raw, header))
				continue
			}
			rec.Fields[fieldID] = raw
		default:
			rec.Fields[fieldID] = raw
		}
	}

	if full := rec.Fields[FieldFullName]; full != "" {
		last, first, middle := ParseName(full)
		setIfEmpty(rec.Fields, FieldLastName, last)
		setIfEmpty(rec.Fields, FieldFirstName, first)
		if middle != "" {
			rec.Fields[FieldMiddleName] = middle
		}
	}
	return rec
}

func setIfEmpty(fields map[FieldID]string, id FieldID, value string) {
	if fields[id] == "" && value != "" {
		fields[id] = value
	}
}

// DigitsOnly strips everything but digits. Identifiers are normalized to a
// digits-only canonical form before any lookup, on both the import path and
// manual entry.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// NAME SPLITTING
// =============================================================================

// ParseName splits a combined name value into surname, given name, and
// middle initial.
//
// With a comma, the portion before it is the surname and the remainder is
// given name plus an optional one-letter middle initial:
//
//	"Garcia, Maria E"  -> ("Garcia", "Maria", "E")
//
// Without a comma, two tokens are given+surname, three or more take the
// first token as given name, a single-letter second token as middle
// initial, and the last token as surname. A single token is surname only.
func ParseName(value string) (last, first, middle string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", ""
	}

	if before, after, found := strings.Cut(value, ","); found {
		last = strings.TrimSpace(before)
		tokens := strings.Fields(after)
		if len(tokens) > 0 {
			first = tokens[0]
		}
		if len(tokens) > 1 && isInitial(tokens[1]) {
			middle = strings.TrimSuffix(tokens[1], ".")
		}
		return last, first, middle
	}

	tokens := strings.Fields(value)
	switch len(tokens) {
	case 1:
		return tokens[0], "", ""
	case 2:
		return tokens[1], tokens[0], ""
	default:
		first = tokens[0]
		if isInitial(tokens[1]) {
			middle = strings.TrimSuffix(tokens[1], ".")
		}
		return tokens[len(tokens)-1], first, middle
	}
}

func isInitial(token string) bool {
	token = strings.TrimSuffix(token, ".")
	return len(token) == 1
}
