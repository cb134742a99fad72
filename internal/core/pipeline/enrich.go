package pipeline

import (
	"fmt"

	"donorpipe/internal/core/tabular"
)

// Enrichment columns appended after the source columns, in this order
const (
	ColProcessedAt = "processed_at"
	ColPartner     = "partner"
	ColSearchKey   = "email_name_search_key"
	ColID          = "id"
)

// processedAtLayout is what the warehouse DateTime column accepts
const processedAtLayout = "2006-01-02 15:04:05"

// enrich stamps run metadata onto every row and assigns the record id from
// the report's identifier column. Rows whose identifier cell is empty cannot
// be keyed and are dropped, counted in failed rather than silently lost
func enrich(t *tabular.Table, idColumn string, run RunContext) (records []Record, columns []string, failed int, warnings []string) {
	stamp := run.Now.UTC().Format(processedAtLayout)

	columns = append(columns, t.Columns...)
	columns = append(columns, ColProcessedAt, ColPartner, ColSearchKey, ColID)

	for i, row := range t.Rows {
		id := row[idColumn]
		if id == "" {
			failed++
			warnings = append(warnings, fmt.Sprintf("row %d: no %s, excluded", i+1, idColumn))
			continue
		}

		rec := make(Record, len(row)+4)
		for k, v := range row {
			rec[k] = v
		}
		rec[ColProcessedAt] = stamp
		rec[ColPartner] = run.Partner
		rec[ColSearchKey] = run.SearchKey
		rec[ColID] = id
		records = append(records, rec)
	}
	return records, columns, failed, warnings
}
