// Package ledger owns the canonical transaction collection. Every mutation
// is validated, persisted as a full snapshot and then announced.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/events"
	applog "pocketbook/internal/log"
	"pocketbook/internal/storage"
)

var ErrNotFound = errors.New("transaction not found")

// Service is safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	store    storage.Store
	catalog  core.CategoryChecker
	notifier events.Notifier
	logger   *slog.Logger
	now      func() time.Time

	items    []core.Transaction
	revision uint64
	lastID   int64
}

type Option func(*Service)

// WithCatalog restricts categories per transaction type.
func WithCatalog(c core.CategoryChecker) Option {
	return func(s *Service) { s.catalog = c }
}

// WithNotifier receives a message after every successful mutation.
func WithNotifier(n events.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New loads the stored collection and returns a ready service.
func New(ctx context.Context, store storage.Store, opts ...Option) (*Service, error) {
	s := &Service{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(applog.FieldComponent, applog.ComponentLedger)

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with what the store holds, for
// example after another process changed it.
func (s *Service) Reload(ctx context.Context) error {
	items, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	s.mu.Lock()
	// The revision only moves when the content changes.
	changed := s.revision == 0 || !slices.EqualFunc(s.items, items, sameTransaction)
	if changed {
		s.items = items
		s.revision++
	}
	for _, t := range items {
		s.lastID = max(s.lastID, t.ID)
	}
	rev := s.revision
	s.mu.Unlock()

	if changed {
		s.logger.InfoContext(ctx, "Transactions loaded", "count", len(items), "revision", rev)
	} else {
		s.logger.DebugContext(ctx, "Transactions unchanged", "count", len(items), "revision", rev)
	}
	return nil
}

// Add appends a new transaction. Its ID is the creation time in
// milliseconds, bumped when needed to stay unique.
func (s *Service) Add(ctx context.Context, f core.Fields) (core.Transaction, error) {
	if err := f.Validate(s.catalog); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	t := core.Transaction{ID: id, Timestamp: now.UTC()}.WithFields(f)

	next := append(slices.Clone(s.items), t)
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.lastID = id
	rev := s.revision
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added",
		"id", t.ID, "type", t.Type, "category", t.Category, "amount", t.Amount)
	s.notify(ctx, events.OpAdd, t.ID, rev)
	return t, nil
}

// Update replaces every editable field of the transaction with the given
// id, keeping its ID and Timestamp.
func (s *Service) Update(ctx context.Context, id int64, f core.Fields) (core.Transaction, error) {
	if err := f.Validate(s.catalog); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	next := slices.Clone(s.items)
	next[i] = next[i].WithFields(f)
	t := next[i]
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	rev := s.revision
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction updated", "id", id)
	s.notify(ctx, events.OpUpdate, id, rev)
	return t, nil
}

// Delete removes the transaction with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete %d: %w", id, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.items), i, i+1)
	if err := s.commitLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	rev := s.revision
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction deleted", "id", id)
	s.notify(ctx, events.OpDelete, id, rev)
	return nil
}

func (s *Service) Get(id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return core.Transaction{}, fmt.Errorf("get %d: %w", id, ErrNotFound)
	}
	return s.items[i], nil
}

// List returns the transactions matching f, newest first.
func (s *Service) List(f core.Filter) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.items)
}

// Summary totals the whole collection, ignoring any list filter.
func (s *Service) Summary() core.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.items)
}

// Snapshot returns a copy of the collection in insertion order together
// with the revision it belongs to.
func (s *Service) Snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), s.revision
}

// Revision increases by one with every committed change or reload.
func (s *Service) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// commitLocked saves next and makes it current. On a save error the
// previous collection stays in place.
func (s *Service) commitLocked(ctx context.Context, next []core.Transaction) error {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save transactions", "error", err)
		return fmt.Errorf("save transactions: %w", err)
	}
	s.items = next
	s.revision++
	return nil
}

func sameTransaction(a, b core.Transaction) bool {
	return a.ID == b.ID &&
		a.Amount == b.Amount &&
		a.Type == b.Type &&
		a.Category == b.Category &&
		a.Date.Equal(b.Date.Time) &&
		a.Description == b.Description &&
		a.Timestamp.Equal(b.Timestamp)
}

func (s *Service) indexLocked(id int64) int {
	return slices.IndexFunc(s.items, func(t core.Transaction) bool { return t.ID == id })
}

func (s *Service) notify(ctx context.Context, op events.Op, id int64, rev uint64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, events.NewChangeMessage(op, id, rev)); err != nil {
		s.logger.WarnContext(ctx, "Change notification failed", "op", op, "id", id, "error", err)
	}
}
