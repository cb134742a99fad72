// Package pipeline sequences the transformation stages for one report run:
// decode, rename, hash, normalize dates, enrich, deliver. Stage order
// matters, hashing and date parsing must see canonical column names, so the
// mapper always runs before them. Each run owns its table exclusively; the
// only state shared between concurrent runs is the read only catalogues
package pipeline

import (
	"context"
	"time"

	"donorpipe/internal/core/colmap"
	"donorpipe/internal/core/dates"
	"donorpipe/internal/core/encoding"
	"donorpipe/internal/core/pii"
	"donorpipe/internal/core/tabular"
	perr "donorpipe/internal/platform/errors"
	"donorpipe/internal/platform/logger"
)

// Stage names the steps of a run, in order
type Stage string

// Run stages. Failed is reachable from any of them
const (
	StageFetched        Stage = "fetched"
	StageDecoded        Stage = "decoded"
	StageMapped         Stage = "mapped"
	StageHashed         Stage = "hashed"
	StageDateNormalized Stage = "date_normalized"
	StageEnriched       Stage = "enriched"
	StageDelivered      Stage = "delivered"
	StageFailed         Stage = "failed"
)

// Record is one finished output row, canonical column name to final value
type Record map[string]string

// Destination locates the warehouse table a run writes to
type Destination struct {
	Dataset string
	Table   string
}

// WriteMode selects how rows land in the destination
type WriteMode string

// Write modes: replace drops existing rows first, append adds
const (
	ModeReplace WriteMode = "replace"
	ModeAppend  WriteMode = "append"
)

// Sink is the upload collaborator. The pipeline hands finished rows over and
// reports whatever the sink returns; retry policy belongs to the caller
type Sink interface {
	Write(ctx context.Context, columns []string, rows []Record, dest Destination, mode WriteMode) (int, error)
}

// RunContext carries per run metadata stamped onto every record
type RunContext struct {
	Partner   string
	SearchKey string
	Now       time.Time
}

// Summary is the per run outcome returned to the caller, never persisted by
// the pipeline itself
type Summary struct {
	RowsProcessed int      `json:"rows_processed"`
	RowsFailed    int      `json:"rows_failed"`
	RowsWritten   int      `json:"rows_written"`
	Warnings      []string `json:"warnings,omitempty"`
	Stage         Stage    `json:"stage"`
	Encoding      string   `json:"encoding,omitempty"`
}

// Orchestrator runs the fixed stage sequence for one report shape
type Orchestrator struct {
	catalog colmap.Catalog
	spec    pii.Spec
	sink    Sink
	log     logger.Logger
}

// New builds an orchestrator from a column catalogue, a sensitive field
// spec, and the upload collaborator
func New(catalog colmap.Catalog, spec pii.Spec, sink Sink) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		spec:    spec,
		sink:    sink,
		log:     *logger.Named("pipeline"),
	}
}

// Run decodes raw bytes and processes them end to end
func (o *Orchestrator) Run(
	ctx context.Context,
	raw []byte,
	run RunContext,
	dest Destination,
	mode WriteMode,
) ([]Record, Summary, error) {
	sum := Summary{Stage: StageFetched}

	det, err := encoding.Detect(raw)
	if err != nil {
		return nil, sum, failAt(err, StageDecoded)
	}
	sum.Encoding = string(det.Encoding)

	table, readWarns, err := tabular.Read(det.Text, det.Separator)
	if err != nil {
		return nil, sum, failAt(err, StageDecoded)
	}
	sum.Stage = StageDecoded
	for _, w := range readWarns {
		sum.Warnings = append(sum.Warnings, w.Message)
	}

	return o.process(ctx, table, run, dest, mode, sum)
}

// RunTable processes an already decoded table end to end
func (o *Orchestrator) RunTable(
	ctx context.Context,
	table *tabular.Table,
	run RunContext,
	dest Destination,
	mode WriteMode,
) ([]Record, Summary, error) {
	return o.process(ctx, table.Clone(), run, dest, mode, Summary{Stage: StageDecoded})
}

func (o *Orchestrator) process(
	ctx context.Context,
	table *tabular.Table,
	run RunContext,
	dest Destination,
	mode WriteMode,
	sum Summary,
) ([]Record, Summary, error) {
	mapped := o.catalog.Apply(table)
	for _, ob := range mapped.Renamed {
		o.log.Debug().Str("source", ob.Source).Str("canonical", ob.Canonical).Msg("column renamed")
	}
	sum.Warnings = append(sum.Warnings, mapped.MissingWarnings()...)
	table = mapped.Table
	sum.Stage = StageMapped

	o.spec.Apply(table)
	sum.Stage = StageHashed

	for _, w := range dates.Apply(table, o.catalog.DateColumns(), o.catalog.Identifier()) {
		sum.Warnings = append(sum.Warnings, w.String())
	}
	sum.Stage = StageDateNormalized

	records, columns, failed, warns := enrich(table, o.catalog.Identifier(), run)
	sum.Warnings = append(sum.Warnings, warns...)
	sum.RowsProcessed = len(records)
	sum.RowsFailed = failed
	sum.Stage = StageEnriched

	if o.sink == nil {
		return records, sum, nil
	}

	written, err := o.sink.Write(ctx, columns, records, dest, mode)
	if err != nil {
		// report how many rows were ready so the failure is diagnosable
		sum.RowsWritten = 0
		return records, sum, failAt(
			perr.Wrapf(err, perr.ErrorCodeUpload, "writing %d rows to %s.%s", len(records), dest.Dataset, dest.Table),
			StageDelivered,
		)
	}
	sum.RowsWritten = written
	sum.Stage = StageDelivered

	o.log.Info().
		Str("partner", run.Partner).
		Int("rows", sum.RowsProcessed).
		Int("failed", sum.RowsFailed).
		Int("warnings", len(sum.Warnings)).
		Msg("run delivered")

	return records, sum, nil
}

// failAt tags an error with the stage it happened in
func failAt(err error, at Stage) error {
	return perr.WithOp(err, string(at))
}

// FailedStage extracts the stage tag from a run error, or StageFailed when
// the error carries none
func FailedStage(err error) Stage {
	if e, ok := perr.As(err); ok && e.Op() != "" {
		return Stage(e.Op())
	}
	return StageFailed
}
