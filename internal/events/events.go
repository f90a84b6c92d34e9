// Package events announces collection and theme changes to interested
// parties: chart caches, websocket clients and other processes sharing the
// same storage.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Op names the kind of change.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpTheme  Op = "theme"
	OpReload Op = "reload"
)

// ChangeMessage is published after every successful mutation.
type ChangeMessage struct {
	ID            uuid.UUID `json:"id"`
	Source        string    `json:"source,omitempty"`
	Op            Op        `json:"op"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Revision      uint64    `json:"revision"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewChangeMessage stamps a change with a fresh id and the current time.
func NewChangeMessage(op Op, txID int64, revision uint64) ChangeMessage {
	return ChangeMessage{
		ID:            uuid.New(),
		Op:            op,
		TransactionID: txID,
		Revision:      revision,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and rejects ones without an op.
func ChangeMessageFromJSON(data []byte) (ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChangeMessage{}, err
	}
	if msg.Op == "" {
		return ChangeMessage{}, errors.New("change message without op")
	}
	return msg, nil
}

// Notifier receives change messages.
type Notifier interface {
	Notify(ctx context.Context, msg ChangeMessage) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, msg ChangeMessage) error

func (f NotifierFunc) Notify(ctx context.Context, msg ChangeMessage) error {
	return f(ctx, msg)
}

// Local fans a message out to in-process subscribers, synchronously and in
// subscription order.
type Local struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Notifier
	order  []int
}

func NewLocal() *Local {
	return &Local{subs: make(map[int]Notifier)}
}

// Subscribe registers n and returns a function that removes it again.
func (l *Local) Subscribe(n Notifier) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.subs[id] = n
	l.order = append(l.order, id)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
		for i, v := range l.order {
			if v == id {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
}

// Notify delivers msg to every subscriber and joins their errors.
func (l *Local) Notify(ctx context.Context, msg ChangeMessage) error {
	l.mu.RLock()
	targets := make([]Notifier, 0, len(l.order))
	for _, id := range l.order {
		targets = append(targets, l.subs[id])
	}
	l.mu.RUnlock()

	var errs []error
	for _, n := range targets {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multi notifies each non-nil notifier in turn.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg ChangeMessage) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
