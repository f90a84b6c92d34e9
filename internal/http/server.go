package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pocketbook/internal/catalog"
	"pocketbook/internal/chart"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	applog "pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/security"
	"pocketbook/internal/middleware/trace"
	"pocketbook/internal/render"
	"pocketbook/internal/storage"
	appweb "pocketbook/web"
)

// Ledger is the part of the ledger service the handlers use.
type Ledger interface {
	Add(ctx context.Context, f core.Fields) (core.Transaction, error)
	Update(ctx context.Context, id int64, f core.Fields) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Get(id int64) (core.Transaction, error)
	List(f core.Filter) []core.Transaction
	Summary() core.Summary
	Revision() uint64
	Len() int
}

// ChartRenderer produces both drawings for a theme.
type ChartRenderer interface {
	Charts(ctx context.Context, theme chart.Theme) (*render.Charts, error)
}

// Deps wires the server to the rest of the application. Limiter, Detector,
// Hub, Notifier and Ready are optional.
type Deps struct {
	Ledger   Ledger
	Charts   ChartRenderer
	Prefs    storage.PreferenceStore
	Catalog  *catalog.Catalog
	Notifier events.Notifier
	Hub      *Hub
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
	Ready    func(context.Context) error
	Logger   *slog.Logger
}

type Server struct {
	http.Server
	deps      Deps
	templates *template.Template
	trace     *trace.Middleware
	logs      *applog.StructuredLogger
	logger    *slog.Logger
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and builds the router.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Ledger == nil || deps.Charts == nil || deps.Prefs == nil {
		return nil, fmt.Errorf("new server: ledger, charts and preferences are required")
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if deps.Detector == nil {
		deps.Detector = security.NewDetector()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	logger := deps.Logger.With(applog.FieldComponent, applog.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs(deps.Catalog)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		deps:      deps,
		templates: t,
		trace:     trace.NewMiddleware(deps.Logger, deps.Detector.ClientIP, deps.Detector.Suspicious),
		logs:      applog.NewStructuredLogger(deps.Logger),
		logger:    logger,
		started:   time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.trace.Handler)
	r.Use(applog.Middleware(s.deps.Logger, chimiddleware.GetReqID))
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	if s.deps.Hub != nil {
		r.Get("/ws", s.deps.Hub.ServeWS)
	}

	r.Group(func(r chi.Router) {
		if s.deps.Limiter != nil {
			r.Use(s.deps.Limiter.Middleware(s.deps.Detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, s.deps.Detector.ClientIP(r),
					applog.FieldPath, r.URL.Path)
				TooManyRequestsError().Write(w)
			}))
		}

		r.Get("/", s.handleIndex)
		r.Get("/ui/transactions", s.handleTransactions)
		r.Get("/ui/summary", s.handleSummary)
		r.Get("/ui/transactions/{id}/edit", s.handleEditForm)

		r.Post("/transactions", s.handleCreate)
		r.Post("/transactions/{id}", s.handleUpdate)
		r.Post("/transactions/{id}/delete", s.handleDelete)

		r.Get("/charts/category.svg", s.handleChartSVG(render.CategoryChart))
		r.Get("/charts/monthly.svg", s.handleChartSVG(render.MonthlyChart))
		r.Get("/api/charts/{name}", s.handleChartJSON)

		r.Post("/theme/toggle", s.handleThemeToggle)
	})

	return r
}

// Shutdown stops the limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.deps.Limiter != nil {
			s.deps.Limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
