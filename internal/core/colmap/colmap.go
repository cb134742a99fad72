// Package colmap renames partner report columns to their canonical
// snake_case names. Columns outside the catalogue pass through untouched
// because the source schema grows over time and unknown data must survive;
// catalogue columns absent from the input are recorded as warnings, not
// failures, since older export versions simply lack the newer fields
package colmap

import (
	"fmt"
	"sort"

	"donorpipe/internal/core/tabular"
)

// Catalog is the static rename table for one report shape
type Catalog struct {
	renames    map[string]string
	identifier string
	dateCols   []string
}

// NewCatalog builds a Catalog from a rename map, the canonical identifier
// column, and the canonical date columns
func NewCatalog(renames map[string]string, identifier string, dateCols []string) Catalog {
	return Catalog{renames: renames, identifier: identifier, dateCols: dateCols}
}

// Contribution is the catalogue for the standard contribution report
func Contribution() Catalog {
	return NewCatalog(ContributionColumns, ContributionIdentifier, ContributionDateColumns)
}

// Recurring is the catalogue for the recurring commitment report
func Recurring() Catalog {
	return NewCatalog(RecurringCommitmentColumns, RecurringIdentifier, RecurringDateColumns)
}

// Identifier returns the canonical id column for this catalogue
func (c Catalog) Identifier() string { return c.identifier }

// DateColumns returns the canonical date bearing columns for this catalogue
func (c Catalog) DateColumns() []string { return append([]string(nil), c.dateCols...) }

// Observation records one applied rename for diagnostics
type Observation struct {
	Source    string
	Canonical string
}

// Result is the outcome of applying a catalogue to a table
type Result struct {
	Table *tabular.Table
	// Renamed lists the renames that were applied, in header order
	Renamed []Observation
	// Missing lists catalogue source columns absent from the input, sorted
	Missing []string
}

// Apply renames the table's columns per the catalogue. The input table is
// not mutated
func (c Catalog) Apply(t *tabular.Table) Result {
	out := &tabular.Table{Columns: make([]string, len(t.Columns))}
	var renamed []Observation

	seen := make(map[string]bool, len(t.Columns))
	for i, col := range t.Columns {
		seen[col] = true
		if canonical, ok := c.renames[col]; ok {
			out.Columns[i] = canonical
			renamed = append(renamed, Observation{Source: col, Canonical: canonical})
			continue
		}
		out.Columns[i] = col
	}

	var missing []string
	for src := range c.renames {
		if !seen[src] {
			missing = append(missing, src)
		}
	}
	sort.Strings(missing)

	out.Rows = make([]tabular.Row, len(t.Rows))
	for i, row := range t.Rows {
		nr := make(tabular.Row, len(row))
		for src, val := range row {
			if canonical, ok := c.renames[src]; ok {
				nr[canonical] = val
			} else {
				nr[src] = val
			}
		}
		out.Rows[i] = nr
	}

	return Result{Table: out, Renamed: renamed, Missing: missing}
}

// MissingWarnings formats the missing column list as warning strings
func (r Result) MissingWarnings() []string {
	out := make([]string, 0, len(r.Missing))
	for _, m := range r.Missing {
		out = append(out, fmt.Sprintf("catalogue column %q absent from input", m))
	}
	return out
}
