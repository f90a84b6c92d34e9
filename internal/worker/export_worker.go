// Package worker keeps rendered chart files on disk in step with the
// collection, driven by change events and a periodic catch-up.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
	"pocketbook/internal/events"
	"pocketbook/internal/render"
	"pocketbook/internal/storage"
)

// Ledger is what the worker reads the collection from.
type Ledger interface {
	Reload(ctx context.Context) error
	Snapshot() ([]core.Transaction, uint64)
}

// ExportWorker writes category.svg and monthly.svg into a directory.
type ExportWorker struct {
	ledger Ledger
	prefs  storage.PreferenceStore
	outDir string
	logger *slog.Logger

	mu        sync.Mutex
	exported  bool
	lastRev   uint64
	lastTheme chart.Theme
	exports   int
}

func NewExportWorker(l Ledger, prefs storage.PreferenceStore, outDir string, logger *slog.Logger) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{
		ledger: l,
		prefs:  prefs,
		outDir: outDir,
		logger: logger,
	}
}

// HandleChange processes a single change message from AMQP.
func (w *ExportWorker) HandleChange(ctx context.Context, msg events.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change message",
		"id", msg.ID,
		"op", msg.Op,
		"revision", msg.Revision)

	if msg.Op != events.OpTheme {
		if err := w.ledger.Reload(ctx); err != nil {
			return fmt.Errorf("reload ledger: %w", err)
		}
	}
	_, err := w.Export(ctx)
	return err
}

// Export writes both charts unless the revision and theme already match the
// last export. It reports whether files were written.
func (w *ExportWorker) Export(ctx context.Context) (bool, error) {
	theme, err := w.prefs.LoadTheme(ctx)
	if err != nil {
		return false, fmt.Errorf("load theme: %w", err)
	}
	txs, rev := w.ledger.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.exported && rev == w.lastRev && theme == w.lastTheme {
		return false, nil
	}

	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return false, fmt.Errorf("create export directory: %w", err)
	}
	charts := render.Build(txs, rev, theme)
	for _, name := range []string{render.CategoryChart, render.MonthlyChart} {
		d, _ := charts.Drawing(name)
		if err := writeAtomic(filepath.Join(w.outDir, name+".svg"), d, theme); err != nil {
			return false, err
		}
	}

	w.exported, w.lastRev, w.lastTheme = true, rev, theme
	w.exports++
	w.logger.InfoContext(ctx, "Charts exported",
		"dir", w.outDir,
		"revision", rev,
		"theme", theme,
		"transactions", len(txs))
	return true, nil
}

// StartupExport writes the charts once before any message arrives.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	_, err := w.Export(ctx)
	return err
}

// ProcessPeriodic reloads from storage and re-exports; a backup for
// messages lost while the worker was down.
func (w *ExportWorker) ProcessPeriodic(ctx context.Context) error {
	if err := w.ledger.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}
	_, err := w.Export(ctx)
	return err
}

// Run calls ProcessPeriodic every interval until ctx ends.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessPeriodic(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

// Exports returns how many times files were written.
func (w *ExportWorker) Exports() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exports
}

func writeAtomic(path string, d chart.Drawing, theme chart.Theme) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.svg")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := chart.WriteSVG(tmp, d, theme); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
