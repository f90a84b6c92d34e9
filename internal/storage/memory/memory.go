package memory

import (
	"context"
	"slices"
	"sync"

	"pocketbook/internal/chart"
	"pocketbook/internal/core"
)

// Store keeps everything in process memory. Useful for development and tests.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	theme chart.Theme
	saves int
}

func New(seed ...core.Transaction) *Store {
	return &Store{items: slices.Clone(seed), theme: chart.Dark}
}

// Load returns a copy of the saved collection.
func (s *Store) Load(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		return []core.Transaction{}, nil
	}
	return slices.Clone(s.items), nil
}

// Save replaces the collection with a copy of txs.
func (s *Store) Save(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(txs)
	s.saves++
	return nil
}

func (s *Store) LoadTheme(_ context.Context) (chart.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == "" {
		return chart.Dark, nil
	}
	return s.theme, nil
}

func (s *Store) SaveTheme(_ context.Context, theme chart.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	return nil
}

// Saves reports how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
