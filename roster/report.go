/*
report.go - Readiness rates and tabular roster export

PURPOSE:
  Pure projections of already-stored data: no new expiration computation
  happens at export time. Rates use decimal arithmetic so a 2/3 section
  does not report as 0.6666666666666666.
*/
package roster

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/trident/readiness-engine/qual"
)

// =============================================================================
// READINESS REPORT
// =============================================================================

// TypeReadiness summarizes one qualification type across the roster.
type TypeReadiness struct {
	TypeID      string          `json:"type_id"`
	Name        string          `json:"name"`
	Category    qual.Category   `json:"category"`
	Current     int             `json:"current"`
	Expiring    int             `json:"expiring"` // soon + urgent
	Expired     int             `json:"expired"`
	Missing     int             `json:"missing"` // people with no record of a required type
	Rate        decimal.Decimal `json:"rate"`    // current / roster size, 4dp
	AvgScore    decimal.Decimal `json:"avg_score,omitempty"`
	ScoredCount int             `json:"scored_count,omitempty"`
}

// ReadinessReport aggregates per-type readiness over the whole roster.
type ReadinessReport struct {
	RosterSize int             `json:"roster_size"`
	Types      []TypeReadiness `json:"types"`
}

// Readiness builds a readiness report from stored records. For each type,
// each person's MOST RECENT completion is the one classified; required
// types count people with no record at all as missing.
func Readiness(ctx context.Context, store Store, clock qual.Clock) (*ReadinessReport, error) {
	people, err := store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	types, err := store.ListQualificationTypes(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })

	report := &ReadinessReport{RosterSize: len(people)}
	rosterSize := decimal.NewFromInt(int64(len(people)))

	for _, def := range types {
		quals, err := store.ListQualificationsByType(ctx, def.ID)
		if err != nil {
			return nil, err
		}

		// Latest record per person.
		latest := make(map[string]Qualification)
		for _, q := range quals {
			prev, ok := latest[q.PersonID]
			if !ok || prev.CompletionDate.Before(q.CompletionDate) {
				latest[q.PersonID] = q
			}
		}

		tr := TypeReadiness{TypeID: def.ID, Name: def.Name, Category: def.Category}
		scoreSum := decimal.Zero
		for _, q := range latest {
			switch q.Status(clock).Kind {
			case qual.StatusCurrent:
				tr.Current++
			case qual.StatusExpiringSoon, qual.StatusExpiringUrgent:
				tr.Expiring++
			case qual.StatusExpired:
				tr.Expired++
			}
			if def.TrackScore && q.Score != nil {
				scoreSum = scoreSum.Add(decimal.NewFromInt(int64(*q.Score)))
				tr.ScoredCount++
			}
		}
		if def.Required {
			tr.Missing = len(people) - len(latest)
		}
		if !rosterSize.IsZero() {
			tr.Rate = decimal.NewFromInt(int64(tr.Current)).Div(rosterSize).Round(4)
		}
		if tr.ScoredCount > 0 {
			tr.AvgScore = scoreSum.Div(decimal.NewFromInt(int64(tr.ScoredCount))).Round(1)
		}
		report.Types = append(report.Types, tr)
	}
	return report, nil
}

// =============================================================================
// CSV EXPORT
// =============================================================================

// rosterColumns is the fixed column order of the roster export.
var rosterColumns = []string{
	"External ID", "Last Name", "First Name", "Rank", "MOS", "Section", "Status", "EAS Date", "Email", "Phone",
}

// WriteRosterCSV writes the roster as CSV, one row per person, sorted by
// rank then name.
func WriteRosterCSV(ctx context.Context, store Store, clock qual.Clock, w io.Writer) error {
	people, err := Query(ctx, store, clock, Criteria{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(rosterColumns); err != nil {
		return fmt.Errorf("write roster header: %w", err)
	}
	for _, p := range people {
		eas := ""
		if p.EASDate != nil {
			eas = p.EASDate.String()
		}
		row := []string{
			p.ExternalID, p.LastName, p.FirstName, p.Rank, p.MOS, p.Section,
			string(p.Status), eas, p.Email, p.Phone,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write roster row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
