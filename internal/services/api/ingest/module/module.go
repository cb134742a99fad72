// Package module wires ingest into the API using modkit
package module

import (
	"net/http"

	"donorpipe/internal/adapters/mailbox"
	"donorpipe/internal/adapters/secrets"
	"donorpipe/internal/adapters/warehouse"
	"donorpipe/internal/core/pipeline"
	modkit "donorpipe/internal/modkit"
	"donorpipe/internal/modkit/httpkit"
	str "donorpipe/internal/platform/strings"
	ingesthttp "donorpipe/internal/services/api/ingest/http"
	ingestrepo "donorpipe/internal/services/api/ingest/repo"
	ingestsvc "donorpipe/internal/services/api/ingest/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc ingestsvc.Service
}

// New constructs an ingest module with the provided dependencies and options.
// The mailbox client is only built when OAuth credentials are configured;
// without them the file source still works and the email source reports
// unavailable
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ingest"), modkit.WithPrefix("/ingest")}, opts...)...)

	var mail ingestsvc.Mailbox
	if clientID := deps.Cfg.MayString("GMAIL_CLIENT_ID", ""); clientID != "" {
		tokens := secrets.NewProvider(secrets.Config{
			ClientID:     clientID,
			ClientSecret: deps.Cfg.MayString("GMAIL_CLIENT_SECRET", ""),
			RefreshToken: deps.Cfg.MayString("GMAIL_REFRESH_TOKEN", ""),
		})
		mail = mailbox.NewClient(mailbox.Options{}, tokens)
	}

	var sink pipeline.Sink
	if deps.CH != nil {
		sink = warehouse.NewSink(deps.CH)
	}

	svc := ingestsvc.New(deps.PG, ingestrepo.NewPG(), mail, sink)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptIngestPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ingesthttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
