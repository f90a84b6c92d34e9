package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/config"
)

func TestSetupLogger(t *testing.T) {
	cfg := config.Load()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	logger, err := SetupLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cfg.LogFormat = "yaml"
	_, err = SetupLogger(cfg)
	assert.Error(t, err)
}

func TestGracefulShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var order []string

	err := GracefulShutdown(logger, time.Second,
		func(context.Context) error { order = append(order, "http"); return nil },
		nil,
		func(context.Context) error { order = append(order, "amqp"); return errors.New("closed twice") },
		func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			order = append(order, "store")
			return nil
		},
	)

	assert.EqualError(t, err, "closed twice")
	assert.Equal(t, []string{"http", "amqp", "store"}, order)
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
}
