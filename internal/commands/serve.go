package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pocketbook/internal/cache"
	"pocketbook/internal/cli"
	"pocketbook/internal/events"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/ledger"
	applog "pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/render"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	local := events.NewLocal()
	a, err := bootstrap(parent, ledger.WithNotifier(local))
	if err != nil {
		return err
	}
	logger := a.logger(applog.ComponentApp)

	ctx, stop := cli.SignalContext(parent, logger)
	defer stop()

	hub := apphttp.NewHub(a.log.Logger)
	charts := render.New(a.ledger, render.Config{
		CacheSize:   a.cfg.ChartCacheSize,
		CacheTTL:    a.cfg.ChartCacheTTL,
		RedrawDelay: a.cfg.ThemeRedrawDelay,
	}, hub, a.log.Logger)
	local.Subscribe(charts)

	var bus *events.Client
	if a.cfg.AMQPURL != "" {
		bus, err = events.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			local.Subscribe(bus)
			logger.Info("Initialized AMQP client", "exchange", a.cfg.AMQPExchange, "source", bus.Source())
		}
	}

	caches := cache.NewManager(a.logger(applog.ComponentCache))
	caches.Register(charts.Cache())
	caches.StartCleanup(5 * time.Minute)

	rps := a.cfg.RateLimitRPS
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerSecond: rps,
		Burst:             max(1, int(rps*2)),
	})

	srv, err := apphttp.NewServer(":"+a.cfg.Port, apphttp.Deps{
		Ledger:   a.ledger,
		Charts:   charts,
		Prefs:    a.backend.Backend,
		Catalog:  a.catalog,
		Notifier: local,
		Hub:      hub,
		Limiter:  limiter,
		Ready:    a.backend.Ready,
		Logger:   a.log.Logger,
	})
	if err != nil {
		_ = a.close()
		return err
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting pocketbook server",
			"port", a.cfg.Port,
			"backend", a.cfg.DataBackend,
			"transactions", a.ledger.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if bus != nil {
		g.Go(func() error {
			err := bus.Consume(gctx, func(ctx context.Context, msg events.ChangeMessage) error {
				return applyRemoteChange(ctx, a.ledger, charts, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, events.ErrClientClosed) {
				logger.Warn("Change consumer stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, shutdownTimeout,
			srv.Shutdown,
			func(context.Context) error {
				charts.Stop()
				caches.Stop()
				return nil
			},
			func(context.Context) error {
				if bus == nil {
					return nil
				}
				return bus.Close()
			},
			func(context.Context) error { return a.close() },
		)
	})

	return g.Wait()
}

// reloader is the part of the ledger refreshed by remote changes.
type reloader interface {
	Reload(ctx context.Context) error
}

// applyRemoteChange brings this process in line with a change made by
// another one sharing the same storage.
func applyRemoteChange(ctx context.Context, l reloader, redraw events.Notifier, msg events.ChangeMessage) error {
	if msg.Op != events.OpTheme {
		if err := l.Reload(ctx); err != nil {
			return err
		}
	}
	return redraw.Notify(ctx, msg)
}
