/*
query.go - Roster filtering by attribute and qualification currency

PURPOSE:
  Conjunctive (AND) filtering of the roster. Simple attribute criteria
  match person fields; qualification criteria require that the person hold
  a record of a type, optionally with the most recent completion still
  classifying as Current.
*/
package roster

import (
	"context"
	"sort"

	"github.com/trident/readiness-engine/qual"
	"github.com/trident/readiness-engine/rank"
)

// QualCriterion requires the person to hold at least one qualification of
// TypeID. With MustBeCurrent set, the most recently completed record of
// that type must classify as Current.
type QualCriterion struct {
	TypeID        string `json:"type_id"`
	MustBeCurrent bool   `json:"must_be_current"`
}

// Criteria is a conjunctive filter. Zero-valued fields are ignored; an
// empty Criteria matches the whole roster.
type Criteria struct {
	Status         PersonStatus    `json:"status,omitempty"`
	Section        string          `json:"section,omitempty"`
	Rank           string          `json:"rank,omitempty"`
	MOS            string          `json:"mos,omitempty"`
	Qualifications []QualCriterion `json:"qualifications,omitempty"`
}

// Query returns the people matching all provided criteria, sorted by rank
// precedence then name.
func Query(ctx context.Context, store Store, clock qual.Clock, c Criteria) ([]Person, error) {
	people, err := store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	var matched []Person
	for _, p := range people {
		if c.Status != "" && p.Status != c.Status {
			continue
		}
		if c.Section != "" && p.Section != c.Section {
			continue
		}
		if c.Rank != "" && rank.Normalize(p.Rank) != rank.Normalize(c.Rank) {
			continue
		}
		if c.MOS != "" && p.MOS != c.MOS {
			continue
		}

		ok, err := matchesQualCriteria(ctx, store, clock, p, c.Qualifications)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if c := rank.Compare(matched[i].Rank, matched[j].Rank); c != 0 {
			return c < 0
		}
		if matched[i].LastName != matched[j].LastName {
			return matched[i].LastName < matched[j].LastName
		}
		return matched[i].FirstName < matched[j].FirstName
	})
	return matched, nil
}

func matchesQualCriteria(ctx context.Context, store Store, clock qual.Clock, p Person, criteria []QualCriterion) (bool, error) {
	if len(criteria) == 0 {
		return true, nil
	}

	quals, err := store.ListQualificationsByPerson(ctx, p.ID)
	if err != nil {
		return false, err
	}

	for _, criterion := range criteria {
		latest, found := latestOfType(quals, criterion.TypeID)
		if !found {
			return false, nil
		}
		if criterion.MustBeCurrent && latest.Status(clock).Kind != qual.StatusCurrent {
			return false, nil
		}
	}
	return true, nil
}

// latestOfType returns the record of the given type with the most recent
// completion date. Ties are unspecified.
func latestOfType(quals []Qualification, typeID string) (Qualification, bool) {
	var latest Qualification
	found := false
	for _, q := range quals {
		if q.TypeID != typeID {
			continue
		}
		if !found || latest.CompletionDate.Before(q.CompletionDate) {
			latest = q
			found = true
		}
	}
	return latest, found
}
