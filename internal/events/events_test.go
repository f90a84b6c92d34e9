package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewChangeMessage(t *testing.T) {
	msg := NewChangeMessage(OpAdd, 42, 3)

	if msg.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("NewChangeMessage() should assign an id")
	}
	if msg.Op != OpAdd || msg.TransactionID != 42 || msg.Revision != 3 {
		t.Errorf("NewChangeMessage() = %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("NewChangeMessage() Timestamp should be recent")
	}
	if other := NewChangeMessage(OpAdd, 42, 3); other.ID == msg.ID {
		t.Error("message ids should be unique")
	}
}

func TestChangeMessage_JSON(t *testing.T) {
	msg := NewChangeMessage(OpDelete, 7, 9)
	msg.Source = "node-a"

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := ChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON() error = %v", err)
	}
	if got.ID != msg.ID || got.Op != msg.Op || got.Source != "node-a" || got.Revision != 9 {
		t.Errorf("round trip mismatch: got %+v want %+v", got, msg)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestChangeMessageFromJSON_Invalid(t *testing.T) {
	for _, body := range []string{`{"op": 1}`, `{"revision": 1}`, `not json`} {
		if _, err := ChangeMessageFromJSON([]byte(body)); err == nil {
			t.Errorf("ChangeMessageFromJSON(%s) should fail", body)
		}
	}
}

func TestLocal_FanOutInOrder(t *testing.T) {
	l := NewLocal()
	var calls []string
	record := func(name string) Notifier {
		return NotifierFunc(func(context.Context, ChangeMessage) error {
			calls = append(calls, name)
			return nil
		})
	}

	l.Subscribe(record("a"))
	unsubB := l.Subscribe(record("b"))
	l.Subscribe(record("c"))

	if err := l.Notify(context.Background(), NewChangeMessage(OpAdd, 1, 1)); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	unsubB()
	_ = l.Notify(context.Background(), NewChangeMessage(OpAdd, 1, 2))

	want := []string{"a", "b", "c", "a", "c"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestLocal_JoinsErrors(t *testing.T) {
	l := NewLocal()
	boom := errors.New("boom")
	delivered := false
	l.Subscribe(NotifierFunc(func(context.Context, ChangeMessage) error { return boom }))
	l.Subscribe(NotifierFunc(func(context.Context, ChangeMessage) error { delivered = true; return nil }))

	err := l.Notify(context.Background(), NewChangeMessage(OpTheme, 0, 0))
	if !errors.Is(err, boom) {
		t.Errorf("Notify() error = %v, want boom", err)
	}
	if !delivered {
		t.Error("a failing subscriber must not stop delivery")
	}
}

func TestMulti_SkipsNil(t *testing.T) {
	n := 0
	m := Multi{nil, NotifierFunc(func(context.Context, ChangeMessage) error { n++; return nil })}
	if err := m.Notify(context.Background(), NewChangeMessage(OpAdd, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}
