// Package render turns the current collection into chart drawings and keeps
// the results cached per revision and theme.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pocketbook/internal/analytics"
	"pocketbook/internal/cache"
	"pocketbook/internal/chart"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	applog "pocketbook/internal/log"
)

// Chart names accepted by Drawing.
const (
	CategoryChart = "category"
	MonthlyChart  = "monthly"
)

// Source provides a consistent view of the collection.
type Source interface {
	Snapshot() ([]core.Transaction, uint64)
}

// Charts is one full rendering of the analytics tab.
type Charts struct {
	Theme    chart.Theme
	Revision uint64
	Totals   analytics.CategoryTotals
	Months   []analytics.MonthTotal
	Category chart.Drawing
	Monthly  chart.Drawing
}

// Drawing returns the chart with the given name.
func (c *Charts) Drawing(name string) (chart.Drawing, bool) {
	switch name {
	case CategoryChart:
		return c.Category, true
	case MonthlyChart:
		return c.Monthly, true
	}
	return chart.Drawing{}, false
}

type Config struct {
	CacheSize   int
	CacheTTL    time.Duration
	RedrawDelay time.Duration
}

// Service renders charts on demand. It implements events.Notifier so it can
// be subscribed to ledger changes; each change drops cached drawings and
// tells the redraw notifier (usually the websocket hub) to refresh.
type Service struct {
	source Source
	cache  *cache.LRUCache[*Charts]
	group  singleflight.Group
	redraw events.Notifier
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending *time.Timer
	renders int
}

func New(source Source, cfg Config, redraw events.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 16
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Service{
		source: source,
		cache:  cache.NewLRUCache[*Charts](cfg.CacheSize, cfg.CacheTTL),
		redraw: redraw,
		delay:  cfg.RedrawDelay,
		logger: logger.With(applog.FieldComponent, applog.ComponentRender),
	}
}

// Cache exposes the drawing cache so it can be registered for cleanup.
func (s *Service) Cache() *cache.LRUCache[*Charts] {
	return s.cache
}

// Charts returns both drawings for the current revision in theme.
func (s *Service) Charts(ctx context.Context, theme chart.Theme) (*Charts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txs, rev := s.source.Snapshot()
	key := fmt.Sprintf("%d:%s", rev, theme)
	if c, ok := s.cache.Get(key); ok {
		return c, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if c, ok := s.cache.Get(key); ok {
			return c, nil
		}
		c := Build(txs, rev, theme)
		s.cache.Set(key, c)

		s.mu.Lock()
		s.renders++
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Charts rendered", "revision", rev, "theme", theme, "transactions", len(txs))
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("render charts: %w", err)
	}
	return v.(*Charts), nil
}

// Build runs aggregation and layout over txs without any caching.
func Build(txs []core.Transaction, rev uint64, theme chart.Theme) *Charts {
	totals := analytics.ComputeCategoryTotals(txs)
	months := analytics.ComputeMonthlyTotals(txs)
	return &Charts{
		Theme:    theme,
		Revision: rev,
		Totals:   totals,
		Months:   months,
		Category: chart.CategoryChart(totals, theme),
		Monthly:  chart.MonthlyChart(months, theme),
	}
}

// Invalidate drops every cached drawing.
func (s *Service) Invalidate() {
	s.cache.Clear()
}

// Renders reports how many times drawings were actually computed.
func (s *Service) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Notify implements events.Notifier. Collection changes redraw right away;
// theme changes wait for the configured delay so the page restyles first.
// A newer theme change replaces a pending one.
func (s *Service) Notify(ctx context.Context, msg events.ChangeMessage) error {
	if msg.Op != events.OpTheme {
		s.Invalidate()
		return s.forward(ctx, msg)
	}

	if s.delay <= 0 {
		return s.forward(ctx, msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
	}
	detached := context.WithoutCancel(ctx)
	s.pending = time.AfterFunc(s.delay, func() {
		if err := s.forward(detached, msg); err != nil {
			s.logger.WarnContext(detached, "Delayed redraw failed", "error", err)
		}
	})
	return nil
}

// Stop cancels a pending delayed redraw.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Service) forward(ctx context.Context, msg events.ChangeMessage) error {
	if s.redraw == nil {
		return nil
	}
	return s.redraw.Notify(ctx, msg)
}
