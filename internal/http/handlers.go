package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	"pocketbook/internal/ledger"
	applog "pocketbook/internal/log"
	"pocketbook/internal/render"
)

type formView struct {
	Action      string
	Submit      string
	Tx          core.Transaction
	Today       string
	IncomeCats  []string
	ExpenseCats []string
}

type listView struct {
	Rows     []core.Transaction
	Filtered bool
}

type pageView struct {
	Theme      chart.Theme
	Revision   uint64
	Form       formView
	Categories []string
	Summary    core.Summary
	List       listView
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the storage backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{"transactions": s.deps.Ledger.Len()}
	if s.deps.Ready != nil {
		if err := s.deps.Ready(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	total, failed := s.trace.Counts()
	sec := s.deps.Detector.Metrics()
	metric := func(name, kind, help string, v any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, v)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", total)
	metric("http_requests_failed_total", "counter", "HTTP requests answered with 5xx", failed)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", sec.SuspiciousRequests)
	metric("transactions", "gauge", "Transactions currently stored", s.deps.Ledger.Len())
	metric("ledger_revision", "gauge", "Current collection revision", s.deps.Ledger.Revision())
	if s.deps.Limiter != nil {
		metric("rate_limit_hits_total", "counter", "Total rate limit hits", s.deps.Limiter.Hits())
		metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.deps.Limiter.ActiveClients())
	}
	if rc, ok := s.deps.Charts.(interface{ Renders() int }); ok {
		metric("chart_renders_total", "counter", "Chart renders that missed the cache", rc.Renders())
	}
	if s.deps.Hub != nil {
		metric("websocket_clients", "gauge", "Connected pages", s.deps.Hub.Clients())
	}
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

func (s *Server) theme(ctx context.Context) chart.Theme {
	theme, err := s.deps.Prefs.LoadTheme(ctx)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Theme load failed, using dark", "error", err)
		return chart.Dark
	}
	return theme
}

func (s *Server) newForm() formView {
	return formView{
		Action:      "/transactions",
		Submit:      "Add Transaction",
		Today:       time.Now().Format(core.DateLayout),
		IncomeCats:  s.deps.Catalog.For(core.Income),
		ExpenseCats: s.deps.Catalog.For(core.Expense),
		Tx:          core.Transaction{Type: core.Expense},
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "index.html", pageView{
		Theme:      s.theme(r.Context()),
		Revision:   s.deps.Ledger.Revision(),
		Form:       s.newForm(),
		Categories: s.deps.Catalog.All(),
		Summary:    s.deps.Ledger.Summary(),
		List:       listView{Rows: s.deps.Ledger.List(core.Filter{})},
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f := ParseFilter(r.URL.Query())
	s.render(w, r, "transactions", listView{Rows: s.deps.Ledger.List(f), Filtered: !f.IsEmpty()})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "summary", s.deps.Ledger.Summary())
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx, err := s.deps.Ledger.Get(id)
	if err != nil {
		s.writeMutationError(w, r, applog.OpUpdate, err)
		return
	}
	form := s.newForm()
	form.Action = fmt.Sprintf("/transactions/%d", tx.ID)
	form.Submit = "Update Transaction"
	form.Tx = tx
	s.render(w, r, "form", form)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	fields, err := ParseFields(r.PostForm)
	if err != nil {
		s.writeMutationError(w, r, applog.OpCreate, err)
		return
	}
	tx, err := s.deps.Ledger.Add(r.Context(), fields)
	if err != nil {
		s.writeMutationError(w, r, applog.OpCreate, err)
		return
	}
	s.logs.LogTransaction(r.Context(), applog.OpCreate, tx.ID, tx.Type.String(), tx.Category, tx.Amount)

	NewHTMXResponse().
		TriggerTransactionsChanged(s.deps.Ledger.Revision()).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		BodyHTML(`<div class="success">Added ` + template.HTMLEscapeString(core.FormatSignedAmount(tx.Type, tx.Amount)) +
			` (` + template.HTMLEscapeString(core.DisplayName(tx.Category)) + `)</div>`).
		Write(w)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}
	fields, err := ParseFields(r.PostForm)
	if err != nil {
		s.writeMutationError(w, r, applog.OpUpdate, err)
		return
	}
	tx, err := s.deps.Ledger.Update(r.Context(), id, fields)
	if err != nil {
		s.writeMutationError(w, r, applog.OpUpdate, err)
		return
	}
	s.logs.LogTransaction(r.Context(), applog.OpUpdate, tx.ID, tx.Type.String(), tx.Category, tx.Amount)

	NewHTMXResponse().
		TriggerTransactionsChanged(s.deps.Ledger.Revision()).
		TriggerModalClose().
		TriggerSuccessNotification("Transaction updated").
		Write(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	tx, err := s.deps.Ledger.Get(id)
	if err == nil {
		err = s.deps.Ledger.Delete(r.Context(), id)
	}
	if err != nil {
		s.writeMutationError(w, r, applog.OpDelete, err)
		return
	}
	s.logs.LogTransaction(r.Context(), applog.OpDelete, tx.ID, tx.Type.String(), tx.Category, tx.Amount)

	NewHTMXResponse().
		TriggerTransactionsChanged(s.deps.Ledger.Revision()).
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

// writeMutationError maps validation failures to 422, unknown ids to 404 and
// everything else to 500.
func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case isValidationError(err):
		UnprocessableEntityError(validationMessage(err)).Write(w)
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError("Transaction not found").Write(w)
	default:
		s.logs.LogError(r.Context(), "Transaction "+op+" failed", err, applog.ComponentLedger, op, nil)
		InternalServerError("Could not save the transaction").
			TriggerErrorNotification("Could not save the transaction").
			Write(w)
	}
}

func (s *Server) charts(w http.ResponseWriter, r *http.Request) (*render.Charts, chart.Theme, bool) {
	theme := s.theme(r.Context())
	if v := r.URL.Query().Get("theme"); v != "" {
		if t, err := chart.ParseTheme(v); err == nil {
			theme = t
		}
	}
	c, err := s.deps.Charts.Charts(r.Context(), theme)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Chart render failed", "error", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return nil, theme, false
	}
	return c, theme, true
}

func (s *Server) handleChartSVG(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, theme, ok := s.charts(w, r)
		if !ok {
			return
		}
		d, _ := c.Drawing(name)
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := chart.WriteSVG(w, d, theme); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "SVG write failed", applog.FieldChart, name, "error", err)
		}
	}
}

func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, theme, ok := s.charts(w, r)
	if !ok {
		return
	}
	d, found := c.Drawing(name)
	if !found {
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"chart":    name,
		"theme":    theme,
		"revision": c.Revision,
		"drawing":  d,
	})
}

// handleThemeToggle flips and stores the theme. The page restyles right
// away; charts are redrawn once the change notification reaches them.
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	next := s.theme(ctx).Toggle()
	if err := s.deps.Prefs.SaveTheme(ctx, next); err != nil {
		s.logs.LogError(ctx, "Theme save failed", err, applog.ComponentStorage, applog.OpTheme, applog.NewFields())
		InternalServerError("Could not save the theme").Write(w)
		return
	}
	if s.deps.Notifier != nil {
		msg := events.NewChangeMessage(events.OpTheme, 0, s.deps.Ledger.Revision())
		if err := s.deps.Notifier.Notify(ctx, msg); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Theme notification failed", "error", err)
		}
	}

	NewHTMXResponse().TriggerThemeChanged(next.String()).Write(w)
}
