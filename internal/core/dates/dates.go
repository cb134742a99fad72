// Package dates rewrites heterogeneous date strings to one canonical
// MM/DD/YYYY form. The source system is US locale, so month first layouts are
// tried before ISO 8601; Excel serial numbers show up when a report has been
// round tripped through a spreadsheet, so those are handled too
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"donorpipe/internal/core/tabular"
)

// OutputLayout is the canonical zero padded output format
const OutputLayout = "01/02/2006"

// layouts are tried in order; first parse wins
var layouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
}

// excelEpoch is day zero of the 1900 date system as spreadsheets store it
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Warning records a value that could not be parsed and was left in place
type Warning struct {
	Column string
	RowID  string
	Raw    string
}

func (w Warning) String() string {
	if w.RowID != "" {
		return fmt.Sprintf("unparsable date in %s (row %s): %q", w.Column, w.RowID, w.Raw)
	}
	return fmt.Sprintf("unparsable date in %s: %q", w.Column, w.Raw)
}

// Parse attempts to parse one raw date value
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	// spreadsheet serial date, days since the Excel epoch
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f < 200000 {
		return excelEpoch.Add(time.Duration(f * 24 * float64(time.Hour))), true
	}
	return time.Time{}, false
}

// Normalize converts one raw value to the canonical output form. ok=false
// means the value was non empty and unparsable
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	t, ok := Parse(s)
	if !ok {
		return raw, false
	}
	return t.Format(OutputLayout), true
}

// Apply rewrites the named columns of every row. Unparsable values keep the
// raw cell verbatim and yield exactly one warning each; a bad date never
// aborts the batch. idColumn, when non empty, is used to label warnings
func Apply(t *tabular.Table, columns []string, idColumn string) []Warning {
	var warns []Warning
	for _, row := range t.Rows {
		for _, col := range columns {
			raw, ok := row[col]
			if !ok {
				continue
			}
			norm, parsed := Normalize(raw)
			if !parsed {
				warns = append(warns, Warning{Column: col, RowID: row[idColumn], Raw: raw})
				continue
			}
			row[col] = norm
		}
	}
	return warns
}
