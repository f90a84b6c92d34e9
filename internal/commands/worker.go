package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pocketbook/internal/cli"
	"pocketbook/internal/events"
	applog "pocketbook/internal/log"
	"pocketbook/internal/worker"
)

func newExportWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-worker",
		Short: "Keep exported chart files up to date from change events",
		Long: `Consumes transaction change events from AMQP and rewrites category.svg
and monthly.svg in EXPORT_DIR. A periodic reload every EXPORT_INTERVAL catches
changes whose events were missed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportWorker(cmd.Context())
		},
	}
}

func runExportWorker(parent context.Context) error {
	a, err := bootstrap(parent)
	if err != nil {
		return err
	}
	logger := a.logger(applog.ComponentWorker)

	if a.cfg.AMQPURL == "" {
		_ = a.close()
		return errors.New("AMQP_URL is required for the export worker")
	}

	ctx, stop := cli.SignalContext(parent, logger)
	defer stop()

	bus, err := events.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
	if err != nil {
		_ = a.close()
		return fmt.Errorf("create AMQP client: %w", err)
	}

	w := worker.NewExportWorker(a.ledger, a.backend.Backend, a.cfg.ExportDir, logger)
	if err := w.StartupExport(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	logger.Info("Export worker started",
		"dir", a.cfg.ExportDir,
		"interval", a.cfg.ExportInterval,
		"source", bus.Source())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := bus.Consume(gctx, w.HandleChange)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, events.ErrClientClosed) {
			return fmt.Errorf("consume change events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		w.Run(gctx, a.cfg.ExportInterval)
		return nil
	})

	err = g.Wait()
	shutdownErr := cli.GracefulShutdown(logger, shutdownTimeout,
		func(context.Context) error { return bus.Close() },
		func(context.Context) error { return a.close() },
	)
	return errors.Join(err, shutdownErr)
}
