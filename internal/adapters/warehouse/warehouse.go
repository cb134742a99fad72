// Package warehouse delivers finished report rows to ClickHouse. Tables are
// created on first use and widened in place when a report grows new columns,
// so re-runs never fail on schema drift
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"donorpipe/internal/core/pipeline"
	perr "donorpipe/internal/platform/errors"
	"donorpipe/internal/platform/logger"
	"donorpipe/internal/platform/store"
)

// Sink writes pipeline records through the store's ClickHouse seam
type Sink struct {
	ch  store.Clickhouse
	log logger.Logger
}

var _ pipeline.Sink = (*Sink)(nil)

// NewSink wraps a ClickHouse seam as a pipeline sink
func NewSink(ch store.Clickhouse) *Sink {
	return &Sink{ch: ch, log: *logger.Named("warehouse")}
}

// Write ensures the destination exists, honors the write mode, and inserts
// every record. Returns the number of rows handed to the driver
func (s *Sink) Write(
	ctx context.Context,
	columns []string,
	rows []pipeline.Record,
	dest pipeline.Destination,
	mode pipeline.WriteMode,
) (int, error) {
	if dest.Dataset == "" || dest.Table == "" {
		return 0, perr.InvalidArgf("destination %q.%q is incomplete", dest.Dataset, dest.Table)
	}

	if err := s.ensureTable(ctx, columns, dest); err != nil {
		return 0, err
	}

	if mode == pipeline.ModeReplace {
		if err := s.ch.Exec(ctx, "TRUNCATE TABLE "+qualified(dest)); err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeUpload, "truncate %s", qualified(dest))
		}
	}

	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]any, len(rows))
	for i, rec := range rows {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		values[i] = row
	}

	if err := s.ch.Insert(ctx, qualified(dest), columns, values); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUpload, "insert %d rows into %s", len(rows), qualified(dest))
	}

	s.log.Info().
		Str("dest", qualified(dest)).
		Str("mode", string(mode)).
		Int("rows", len(rows)).
		Msg("rows delivered")

	return len(rows), nil
}

// ensureTable creates the database and table when absent and adds any
// columns the current report carries that the table does not
func (s *Sink) ensureTable(ctx context.Context, columns []string, dest pipeline.Destination) error {
	if err := s.ch.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+ident(dest.Dataset)); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpload, "create database %s", dest.Dataset)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = ident(col) + " String"
	}
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = ReplacingMergeTree ORDER BY %s",
		qualified(dest), strings.Join(defs, ", "), ident(pipeline.ColID),
	)
	if err := s.ch.Exec(ctx, ddl); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUpload, "create table %s", qualified(dest))
	}

	existing, err := s.tableColumns(ctx, dest)
	if err != nil {
		return err
	}
	for _, col := range columns {
		if existing[col] {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s String", qualified(dest), ident(col))
		if err := s.ch.Exec(ctx, alter); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUpload, "add column %s to %s", col, qualified(dest))
		}
		s.log.Debug().Str("dest", qualified(dest)).Str("column", col).Msg("table widened")
	}
	return nil
}

// tableColumns reads the current column set from system.columns
func (s *Sink) tableColumns(ctx context.Context, dest pipeline.Destination) (map[string]bool, error) {
	rows, err := s.ch.Query(ctx,
		"SELECT name FROM system.columns WHERE database = ? AND table = ?",
		dest.Dataset, dest.Table,
	)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpload, "describe %s", qualified(dest))
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUpload, "scan column name for %s", qualified(dest))
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUpload, "iterate columns for %s", qualified(dest))
	}
	return out, nil
}

func qualified(dest pipeline.Destination) string {
	return ident(dest.Dataset) + "." + ident(dest.Table)
}

// ident backtick quotes a name, report headers may carry spaces
func ident(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "") + "`"
}
