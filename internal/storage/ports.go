// Package storage persists the transaction collection and the theme
// preference. The collection is always written as a whole snapshot.
package storage

import (
	"context"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
)

// Keys used by key-value backends.
const (
	DefaultCollectionKey = "expenseEntries"
	ThemeKey             = "theme"
)

// Ports for persistence adapters.
type (
	// Store loads and saves the full transaction collection. A backend with
	// nothing saved yet returns an empty collection and no error.
	Store interface {
		Load(ctx context.Context) ([]core.Transaction, error)
		Save(ctx context.Context, txs []core.Transaction) error
	}

	// PreferenceStore keeps the selected theme. Missing or unreadable values
	// fall back to chart.Dark.
	PreferenceStore interface {
		LoadTheme(ctx context.Context) (chart.Theme, error)
		SaveTheme(ctx context.Context, theme chart.Theme) error
	}

	// Backend is what the application needs from a persistence adapter.
	Backend interface {
		Store
		PreferenceStore
	}
)

// DecodeTheme maps a stored value to a theme, defaulting to dark.
func DecodeTheme(v string) chart.Theme {
	t, err := chart.ParseTheme(v)
	if err != nil {
		return chart.Dark
	}
	return t
}
