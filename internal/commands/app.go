package commands

import (
	"context"
	"fmt"
	"log/slog"

	"pocketbook/internal/backend"
	"pocketbook/internal/catalog"
	"pocketbook/internal/cli"
	"pocketbook/internal/config"
	"pocketbook/internal/ledger"
	applog "pocketbook/internal/log"
)

// app is what every command needs: configuration, logging, the storage
// backend and a loaded ledger.
type app struct {
	cfg     *config.Config
	log     *applog.Logger
	catalog *catalog.Catalog
	backend *backend.BackendResult
	ledger  *ledger.Service
}

func bootstrap(ctx context.Context, opts ...ledger.Option) (*app, error) {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	cat, err := catalog.LoadOrDefault(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	opts = append([]ledger.Option{
		ledger.WithCatalog(cat),
		ledger.WithLogger(logger.Logger),
	}, opts...)
	l, err := ledger.New(ctx, res.Backend, opts...)
	if err != nil {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
		return nil, err
	}

	return &app{cfg: cfg, log: logger, catalog: cat, backend: res, ledger: l}, nil
}

func (a *app) logger(component string) *slog.Logger {
	return a.log.WithComponent(component)
}

func (a *app) close() error {
	if a.backend.Cleanup == nil {
		return nil
	}
	return a.backend.Cleanup()
}
