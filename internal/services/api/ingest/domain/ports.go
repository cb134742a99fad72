package domain

import "context"

// ServicePort defines the service contract for ingest
type ServicePort interface {
	Process(ctx context.Context, in ProcessRequest) (ProcessResult, error)
	Recent(ctx context.Context, in RunsInput) ([]Run, error)
}
