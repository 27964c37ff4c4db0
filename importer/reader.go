/*
reader.go - Delimited file ingestion

PURPOSE:
  Reads a header-row delimited file (comma or tab, sniffed from the header
  line) into raw rows keyed by header. This is the validated intermediate
  representation the rest of the pipeline consumes: plain string values,
  no dynamic shapes.
*/
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("file has no header row")

// ReadDelimited parses delimited text with a header row. The delimiter is
// sniffed from the header line (tab when present, else comma). Fully empty
// rows are skipped; short rows are padded with empty values by omission.
func ReadDelimited(r io.Reader) (headers []string, rows []map[string]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyFile
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse delimited input: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}

	headers = make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = CleanHeader(h)
	}

	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		empty := true
		for i, header := range headers {
			if i >= len(record) {
				break
			}
			value := strings.TrimSpace(record[i])
			row[header] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if strings.ContainsRune(line, '\t') {
		return '\t'
	}
	return ','
}

// CleanHeader strips whitespace and spreadsheet artifacts (quotes, Excel
// formula prefixes) from a header cell.
func CleanHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "=")
	h = strings.Trim(h, `"`)
	return strings.TrimSpace(h)
}
