// Package repo provides postgres access for the ingest run audit
package repo

import (
	"context"
	"time"

	"donorpipe/internal/modkit/repokit"
	"donorpipe/internal/platform/store"
)

// Repo defines the repository contract for ingest runs
type Repo interface {
	Insert(ctx context.Context, row RowRun) error
	Recent(ctx context.Context, partner string, limit int) ([]RowRun, error)
}

// RowRun is one ingest_runs row
type RowRun struct {
	RunID         string
	Partner       string
	Dataset       string
	Table         string
	Mode          string
	Source        string
	Status        string
	Stage         string
	Encoding      string
	RowsProcessed int
	RowsFailed    int
	RowsWritten   int
	Warnings      []string
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Insert(ctx context.Context, row RowRun) error {
	const sql = `
insert into ingest_runs (
  run_id, partner, dataset, table_name, mode, source_type,
  status, stage, encoding, rows_processed, rows_failed, rows_written,
  warnings, error, started_at, finished_at
) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`
	return store.ExecOne(ctx, r.q, sql,
		row.RunID, row.Partner, row.Dataset, row.Table, row.Mode, row.Source,
		row.Status, row.Stage, row.Encoding, row.RowsProcessed, row.RowsFailed, row.RowsWritten,
		row.Warnings, row.Error, row.StartedAt, row.FinishedAt,
	)
}

func (r *queries) Recent(ctx context.Context, partner string, limit int) ([]RowRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const sql = `
select run_id::text, partner, dataset, table_name, mode, source_type,
  status, stage, encoding, rows_processed, rows_failed, rows_written,
  warnings, error, started_at, finished_at
from ingest_runs
where ($1 = '' or partner = $1)
order by started_at desc
limit $2
`
	return store.Many(ctx, r.q, scanRun, sql, partner, limit)
}

func scanRun(row store.Row) (RowRun, error) {
	var rr RowRun
	err := row.Scan(
		&rr.RunID,
		&rr.Partner,
		&rr.Dataset,
		&rr.Table,
		&rr.Mode,
		&rr.Source,
		&rr.Status,
		&rr.Stage,
		&rr.Encoding,
		&rr.RowsProcessed,
		&rr.RowsFailed,
		&rr.RowsWritten,
		&rr.Warnings,
		&rr.Error,
		&rr.StartedAt,
		&rr.FinishedAt,
	)
	return rr, err
}
