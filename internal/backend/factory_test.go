package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/config"
	"pocketbook/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	cfg := config.Load()
	cfg.DataBackend = "redis"
	cfg.RedisAddr = "cache:6379"
	cfg.StorageKey = "k"

	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, RedisBackend, bc.Type)
	assert.Equal(t, "cache:6379", bc.RedisAddr)
	assert.Equal(t, "k", bc.StorageKey)

	cfg.DataBackend = "sheets"
	_, err = FromAppConfig(cfg)
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: RedisBackend}.Validate())
	assert.Error(t, Config{Type: "postgres"}.Validate())
}

func TestCreateBackend_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Nil(t, res.Ready)
	assert.Nil(t, res.Cleanup)

	txs, err := res.Backend.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pocketbook.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer func() { require.NoError(t, res.Cleanup()) }()

	require.NoError(t, res.Ready(context.Background()))

	tx := core.Transaction{ID: 1, Amount: 5, Type: core.Expense, Category: "food", Date: core.NewDate(2024, 3, 1)}
	require.NoError(t, res.Backend.Save(context.Background(), []core.Transaction{tx}))
	got, err := res.Backend.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "food", got[0].Category)
}
