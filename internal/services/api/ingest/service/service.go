// Package service contains the ingest workflows: fetch a report, run the
// pipeline, deliver to the warehouse, record the run
package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"donorpipe/internal/core/colmap"
	"donorpipe/internal/core/partner"
	"donorpipe/internal/core/pii"
	"donorpipe/internal/core/pipeline"
	"donorpipe/internal/modkit/repokit"
	perr "donorpipe/internal/platform/errors"
	"donorpipe/internal/platform/logger"
	"donorpipe/internal/services/api/ingest/domain"
	"donorpipe/internal/services/api/ingest/repo"

	"donorpipe/internal/adapters/mailbox"
)

// Mailbox fetches and disposes of report emails. Search returns a non nil
// attachment or an error, never both nil
type Mailbox interface {
	Search(ctx context.Context, query string) (*mailbox.Attachment, error)
	Delete(ctx context.Context, messageID string) error
}

// Service defines the service contract for ingest
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	mail Mailbox
	sink pipeline.Sink
	log  logger.Logger
	now  func() time.Time
}

// New creates a new ingest service. mail may be nil when the email source is
// not configured; sink may be nil for dry runs
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], mail Mailbox, sink pipeline.Sink) *Svc {
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo:   binder.Bind(db),
		binder: binder,
		db:     db,
		mail:   mail,
		sink:   sink,
		log:    *logger.Named("ingest"),
		now:    time.Now,
	}
}

// Process runs one report end to end and records the outcome. The audit row
// is written for failed runs too, so the error path must keep enough of the
// summary to explain what happened
func (s *Svc) Process(ctx context.Context, in domain.ProcessRequest) (domain.ProcessResult, error) {
	cfg, err := partner.Lookup(in.Partner)
	if err != nil {
		return domain.ProcessResult{}, err
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	started := s.now().UTC()

	dest := pipeline.Destination{Dataset: cfg.DefaultDataset, Table: cfg.DefaultTable}
	if in.Dataset != "" {
		dest.Dataset = in.Dataset
	}
	if in.Table != "" {
		dest.Table = in.Table
	}
	mode := pipeline.ModeReplace
	if in.Mode == string(pipeline.ModeAppend) {
		mode = pipeline.ModeAppend
	}

	raw, messageID, err := s.fetch(ctx, cfg, in)
	if err != nil {
		return domain.ProcessResult{}, err
	}

	orc := pipeline.New(catalogFor(cfg.Report), specFor(cfg.Report), s.sink)
	run := pipeline.RunContext{Partner: cfg.ID, SearchKey: cfg.SearchKey, Now: started}

	_, sum, runErr := orc.Run(ctx, raw, run, dest, mode)
	finished := s.now().UTC()

	res := domain.ProcessResult{
		RunID:         runID,
		Partner:       cfg.ID,
		Dataset:       dest.Dataset,
		Table:         dest.Table,
		Mode:          string(mode),
		Source:        in.Source,
		Status:        "ok",
		Stage:         string(sum.Stage),
		Encoding:      sum.Encoding,
		RowsProcessed: sum.RowsProcessed,
		RowsFailed:    sum.RowsFailed,
		RowsWritten:   sum.RowsWritten,
		Warnings:      sum.Warnings,
		StartedAt:     started.Format(time.RFC3339),
		FinishedAt:    finished.Format(time.RFC3339),
	}

	errText := ""
	if runErr != nil {
		res.Status = "failed"
		res.Stage = string(pipeline.FailedStage(runErr))
		errText = runErr.Error()
	}

	// Delivered reports are removed from the mailbox so the next run sees
	// only fresh mail. A trash failure is a warning, the data already landed
	if runErr == nil && messageID != "" && s.mail != nil {
		if derr := s.mail.Delete(ctx, messageID); derr != nil {
			logger.C(ctx).Warn().Err(derr).Str("message_id", messageID).Msg("mailbox cleanup failed")
			res.Warnings = append(res.Warnings, "mailbox cleanup failed: "+derr.Error())
		}
	}

	if ierr := s.Repo.Insert(ctx, repo.RowRun{
		RunID:         runID,
		Partner:       cfg.ID,
		Dataset:       dest.Dataset,
		Table:         dest.Table,
		Mode:          string(mode),
		Source:        in.Source,
		Status:        res.Status,
		Stage:         res.Stage,
		Encoding:      res.Encoding,
		RowsProcessed: res.RowsProcessed,
		RowsFailed:    res.RowsFailed,
		RowsWritten:   res.RowsWritten,
		Warnings:      res.Warnings,
		Error:         errText,
		StartedAt:     started,
		FinishedAt:    finished,
	}); ierr != nil {
		if runErr != nil {
			// the run error is the one the caller needs; the lost audit row
			// is only logged
			logger.C(ctx).Error().Err(ierr).Msg("ingest run audit insert failed")
			return res, runErr
		}
		return res, perr.Wrapf(ierr, perr.ErrorCodeDB, "record ingest run")
	}

	if runErr != nil {
		return res, runErr
	}

	logger.C(ctx).Info().
		Str("partner", cfg.ID).
		Str("table", dest.Dataset+"."+dest.Table).
		Int("rows_written", res.RowsWritten).
		Msg("ingest run complete")
	return res, nil
}

// Recent lists recent audit rows, newest first
func (s *Svc) Recent(ctx context.Context, in domain.RunsInput) ([]domain.Run, error) {
	rows, err := s.Repo.Recent(ctx, in.Partner, in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Run, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Run{
			RunID:         r.RunID,
			Partner:       r.Partner,
			Dataset:       r.Dataset,
			Table:         r.Table,
			Mode:          r.Mode,
			Source:        r.Source,
			Status:        r.Status,
			Stage:         r.Stage,
			Encoding:      r.Encoding,
			RowsProcessed: r.RowsProcessed,
			RowsFailed:    r.RowsFailed,
			RowsWritten:   r.RowsWritten,
			Warnings:      r.Warnings,
			Error:         r.Error,
			StartedAt:     r.StartedAt.UTC().Format(time.RFC3339),
			FinishedAt:    r.FinishedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// fetch resolves the report bytes for the requested source. Email runs also
// return the mailbox message id for post delivery cleanup
func (s *Svc) fetch(ctx context.Context, cfg partner.Config, in domain.ProcessRequest) ([]byte, string, error) {
	switch in.Source {
	case domain.SourceFile:
		raw, err := base64.StdEncoding.DecodeString(in.CSVData)
		if err != nil {
			return nil, "", perr.WithField(perr.InvalidArgf("csv_data is not valid base64: %v", err), "csv_data")
		}
		if len(raw) == 0 {
			return nil, "", perr.WithField(perr.InvalidArgf("csv_data is empty"), "csv_data")
		}
		return raw, "", nil
	case domain.SourceEmail:
		if s.mail == nil {
			return nil, "", perr.Newf(perr.ErrorCodeUnavailable, "email source is not configured")
		}
		att, err := s.mail.Search(ctx, cfg.SearchKey)
		if err != nil {
			return nil, "", err
		}
		if att == nil {
			return nil, "", perr.NotFoundf("no report message matches %q", cfg.SearchKey)
		}
		return att.Data, att.MessageID, nil
	default:
		return nil, "", perr.WithField(perr.InvalidArgf("unknown source_type %q", in.Source), "source_type")
	}
}

func catalogFor(r partner.Report) colmap.Catalog {
	if r == partner.ReportRecurring {
		return colmap.Recurring()
	}
	return colmap.Contribution()
}

// specFor picks the sensitive field spec. The recurring commitment report
// carries no direct PII columns, so nothing is hashed there
func specFor(r partner.Report) pii.Spec {
	if r == partner.ReportRecurring {
		return pii.None()
	}
	return pii.Default()
}
