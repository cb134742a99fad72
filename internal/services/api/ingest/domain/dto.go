// Package domain holds DTOs for ingest http and service contracts
package domain

// Source selects where the report bytes come from
const (
	SourceEmail = "email"
	SourceFile  = "file"
)

// ProcessRequest asks for a single report run
type ProcessRequest struct {
	Partner string `json:"partner"            validate:"required,min=1,max=64"  example:"whitestork"`
	Source  string `json:"source_type"        validate:"required,oneof=email file" example:"email"`
	Mode    string `json:"mode,omitempty"     validate:"omitempty,oneof=replace append" example:"replace"`
	Dataset string `json:"dataset,omitempty"  validate:"omitempty,min=1,max=128" example:"staging"`
	Table   string `json:"table,omitempty"    validate:"omitempty,min=1,max=128" example:"contribution_report"`
	// CSVData carries the raw report base64 encoded, file source only
	CSVData string `json:"csv_data,omitempty" validate:"required_if=Source file"`
}

// ProcessResult reports one finished run
type ProcessResult struct {
	RunID         string   `json:"run_id"`
	Partner       string   `json:"partner"`
	Dataset       string   `json:"dataset"`
	Table         string   `json:"table"`
	Mode          string   `json:"mode"`
	Source        string   `json:"source_type"`
	Status        string   `json:"status"` // ok failed
	Stage         string   `json:"stage"`
	Encoding      string   `json:"encoding,omitempty"`
	RowsProcessed int      `json:"rows_processed"`
	RowsFailed    int      `json:"rows_failed"`
	RowsWritten   int      `json:"rows_written"`
	Warnings      []string `json:"warnings,omitempty"`
	StartedAt     string   `json:"started_at"`
	FinishedAt    string   `json:"finished_at"`
}

// RunsInput filters the run audit listing
type RunsInput struct {
	Partner string `json:"partner,omitempty" validate:"omitempty,min=1,max=64"`
	Limit   int    `json:"limit,omitempty"   validate:"omitempty,min=1,max=200"`
}

// Run is one audit row
type Run struct {
	RunID         string   `json:"run_id"`
	Partner       string   `json:"partner"`
	Dataset       string   `json:"dataset"`
	Table         string   `json:"table"`
	Mode          string   `json:"mode"`
	Source        string   `json:"source_type"`
	Status        string   `json:"status"`
	Stage         string   `json:"stage"`
	Encoding      string   `json:"encoding,omitempty"`
	RowsProcessed int      `json:"rows_processed"`
	RowsFailed    int      `json:"rows_failed"`
	RowsWritten   int      `json:"rows_written"`
	Warnings      []string `json:"warnings,omitempty"`
	Error         string   `json:"error,omitempty"`
	StartedAt     string   `json:"started_at"`
	FinishedAt    string   `json:"finished_at"`
}
