// Package tabular reads decoded report text into an ordered row set
// Real partner exports are sloppy: rows can be short or long relative to the
// header, and quoting is not always strict, so the reader pads, truncates,
// and records a warning instead of failing the batch
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	perr "donorpipe/internal/platform/errors"
)

// Row maps a source column name, exactly as it appears in the header, to a
// raw cell value
type Row map[string]string

// Table is an ordered sequence of rows plus the header that produced them
type Table struct {
	Columns []string
	Rows    []Row
}

// Warning is a non fatal issue found while reading
type Warning struct {
	Row     int
	Message string
}

// Read parses text as delimiter separated values. sep is the field delimiter;
// zero means comma. The header row is required, data rows are not
func Read(text string, sep rune) (*Table, []Warning, error) {
	r := csv.NewReader(strings.NewReader(text))
	if sep != 0 {
		r.Comma = sep
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, perr.Newf(perr.ErrorCodeDecoding, "no header row in input")
		}
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeDecoding, "reading header row")
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	t := &Table{Columns: header}
	var warns []Warning
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			warns = append(warns, Warning{Row: line, Message: fmt.Sprintf("unreadable row: %v", err)})
			continue
		}
		switch {
		case len(rec) < len(header):
			warns = append(warns, Warning{
				Row:     line,
				Message: fmt.Sprintf("row has %d fields, header has %d, padding", len(rec), len(header)),
			})
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		case len(rec) > len(header):
			warns = append(warns, Warning{
				Row:     line,
				Message: fmt.Sprintf("row has %d fields, header has %d, truncating", len(rec), len(header)),
			})
			rec = rec[:len(header)]
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, warns, nil
}

// Clone returns a deep copy so a pipeline stage can rewrite rows without
// touching the caller's table
func (t *Table) Clone() *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}
