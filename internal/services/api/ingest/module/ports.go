package module

import (
	"context"

	ingestdom "donorpipe/internal/services/api/ingest/domain"
	ingestsvc "donorpipe/internal/services/api/ingest/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptIngestPort adapts the ingest service to the domain port interface
type adaptIngestPort struct{ svc ingestsvc.Service }

// Process implements the domain ServicePort interface
func (a adaptIngestPort) Process(ctx context.Context, in ingestdom.ProcessRequest) (ingestdom.ProcessResult, error) {
	return a.svc.Process(ctx, in)
}

// Recent implements the domain ServicePort interface
func (a adaptIngestPort) Recent(ctx context.Context, in ingestdom.RunsInput) ([]ingestdom.Run, error) {
	return a.svc.Recent(ctx, in)
}
