// Package http provides http transport for ingest
package http

import (
	stdhttp "net/http"
	"strconv"

	"donorpipe/internal/modkit/httpkit"
	"donorpipe/internal/services/api/ingest/domain"
	svc "donorpipe/internal/services/api/ingest/service"
)

// Register mounts ingest endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.ProcessRequest](r, "/process", h.process)
	httpkit.Get(r, "/runs", h.runs)
}

type handlers struct{ svc svc.Service }

func (h *handlers) process(r *stdhttp.Request, in domain.ProcessRequest) (any, error) {
	return h.svc.Process(r.Context(), in)
}

func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	in := domain.RunsInput{Partner: q.Get("partner")}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			in.Limit = n
		}
	}
	return h.svc.Recent(r.Context(), in)
}
