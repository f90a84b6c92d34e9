package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores the collection as rows of a single table. Save
// rewrites the table inside one transaction so a failed save leaves the
// previous snapshot intact.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements a readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const (
	selectTransactions = `SELECT id, amount, type, category, date, description, created_at
		FROM transactions ORDER BY position`
	insertTransaction = `INSERT INTO transactions
		(id, amount, type, category, date, description, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)

// Load implements Store. Rows come back in the order they were saved.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t                core.Transaction
			typ, date, stamp string
		)
		if err := rows.Scan(&t.ID, &t.Amount, &typ, &t.Category, &date, &t.Description, &stamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("parse stored date of %d: %w", t.ID, err)
		}
		if t.Timestamp, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("parse stored timestamp of %d: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Save implements Store.
func (r *SQLiteRepository) Save(ctx context.Context, txs []core.Transaction) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err = stmt.ExecContext(ctx,
			t.ID, t.Amount, string(t.Type), t.Category, t.Date.String(), t.Description,
			t.Timestamp.UTC().Format(time.RFC3339Nano), i,
		); err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}

	slog.DebugContext(ctx, "Collection saved to SQLite", "count", len(txs))
	return nil
}

// LoadTheme implements PreferenceStore.
func (r *SQLiteRepository) LoadTheme(ctx context.Context) (chart.Theme, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, ThemeKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return chart.Dark, nil
	}
	if err != nil {
		return chart.Dark, fmt.Errorf("get theme: %w", err)
	}
	return DecodeTheme(v), nil
}

// SaveTheme implements PreferenceStore.
func (r *SQLiteRepository) SaveTheme(ctx context.Context, theme chart.Theme) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		ThemeKey, theme.String())
	if err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
