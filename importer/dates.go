/*
dates.go - Best-effort date parsing for imported values

PURPOSE:
  Source systems export dates every way a spreadsheet can: ISO strings,
  US slash formats with two- or four-digit years, military DDMMMYYYY, and
  raw spreadsheet serial numbers. ParseDate tries each in a fixed order
  and degrades to nil (a soft warning upstream) when nothing matches.
*/
package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trident/readiness-engine/qual"
)

// Spreadsheet serial dates count days from the 1900 epoch; serial 25569 is
// 1970-01-01. Values above maxSerialDate would land past year 2500; values
// below minSerialDate land before 1928 and cover every bare four-digit year
// (a stray "2024" is a year, not a day count). Both are treated as
// not-a-serial.
const (
	minSerialDate = 10000
	maxSerialDate = 220000
)

var (
	usDateRe       = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	usShortDateRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	militaryDateRe = regexp.MustCompile(`^(\d{1,2})\s?([A-Za-z]{3})\s?(\d{4})$`)
)

// militaryMonths is the fixed 3-letter month abbreviation table.
var militaryMonths = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// fallbackLayouts is the generic last-resort attempt.
var fallbackLayouts = []string{
	"Jan 2, 2006", "2 Jan 2006", "January 2, 2006", "2006/01/02", "2006.01.02", "01-02-2006",
}

// ParseDate parses an imported date value, attempting in order: spreadsheet
// numeric serial, ISO YYYY-MM-DD, MM/DD/YYYY, MM/DD/YY (two-digit years
// >= 50 are 1900s, < 50 are 2000s), military DDMMMYYYY / DD MMM YYYY, and
// finally a set of generic layouts. Returns nil when nothing matches.
func ParseDate(value string) *qual.Date {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil
	}

	// Spreadsheet serial: days since the 1900 epoch (value-25569 days from
	// 1970-01-01), truncated to the day.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < minSerialDate || serial > maxSerialDate {
			return nil
		}
		d := qual.NewDate(1970, time.January, 1).AddDays(int(serial) - 25569)
		return &d
	}

	if d, err := qual.ParseISO(s); err == nil {
		return &d
	}

	if m := usDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(atoi(m[3]), atoi(m[1]), atoi(m[2]))
	}

	if m := usShortDateRe.FindStringSubmatch(s); m != nil {
		yy := atoi(m[3])
		year := 2000 + yy
		if yy >= 50 {
			year = 1900 + yy
		}
		return buildDate(year, atoi(m[1]), atoi(m[2]))
	}

	if m := militaryDateRe.FindStringSubmatch(s); m != nil {
		month, ok := militaryMonths[strings.ToUpper(m[2])]
		if !ok {
			return nil
		}
		return buildDate(atoi(m[3]), int(month), atoi(m[1]))
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := qual.DateOf(t)
			return &d
		}
	}
	return nil
}

// buildDate rejects month/day values time.Date would silently roll over.
func buildDate(year, month, day int) *qual.Date {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	d := qual.NewDate(year, time.Month(month), day)
	if int(d.Month()) != month || d.Day() != day {
		return nil
	}
	return &d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
