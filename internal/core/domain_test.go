package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type allowAll struct{}

func (allowAll) Allowed(TransactionType, string) bool { return true }

type onlyFood struct{}

func (onlyFood) Allowed(t TransactionType, c string) bool { return t == Expense && c == "food" }

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseType(t *testing.T) {
	if tt, err := ParseType(" Income "); err != nil || tt != Income {
		t.Fatalf("expected income, got %q (err=%v)", tt, err)
	}
	if _, err := ParseType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestFieldsValidate(t *testing.T) {
	good := Fields{
		Amount:   40,
		Type:     Expense,
		Category: "food",
		Date:     NewDate(2024, 1, 20),
	}
	if err := good.Validate(onlyFood{}); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	bads := []struct {
		f    Fields
		want error
	}{
		{Fields{Amount: 0, Type: Expense, Category: "food", Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{Fields{Amount: 1, Type: "gift", Category: "food", Date: NewDate(2024, 1, 1)}, ErrInvalidType},
		{Fields{Amount: 1, Type: Expense, Category: " ", Date: NewDate(2024, 1, 1)}, ErrInvalidCategory},
		{Fields{Amount: 1, Type: Income, Category: "food", Date: NewDate(2024, 1, 1)}, ErrInvalidCategory},
		{Fields{Amount: 1, Type: Expense, Category: "food"}, ErrInvalidDate},
		{Fields{Amount: 1, Type: Expense, Category: "food", Date: NewDate(2024, 1, 1), Description: string(long)}, ErrDescriptionTooLong},
	}
	for i, tc := range bads {
		if err := tc.f.Validate(onlyFood{}); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestWithFieldsKeepsIdentity(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	orig := Transaction{ID: 42, Amount: 10, Type: Expense, Category: "food", Date: NewDate(2024, 1, 15), Timestamp: ts}
	got := orig.WithFields(Fields{Amount: 99, Type: Income, Category: "salary", Date: NewDate(2024, 2, 1), Description: "pay"})
	if got.ID != 42 || !got.Timestamp.Equal(ts) {
		t.Fatalf("identity changed: %+v", got)
	}
	if got.Amount != 99 || got.Type != Income || got.Category != "salary" || got.Description != "pay" {
		t.Fatalf("fields not replaced: %+v", got)
	}
	if orig.Amount != 10 {
		t.Fatalf("original mutated: %+v", orig)
	}
}

func TestTransactionJSONShape(t *testing.T) {
	raw := `{"id":1705312800000,"amount":40,"type":"expense","category":"food","date":"2024-01-20","description":"","timestamp":"2024-01-20T09:00:00.000Z"}`
	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Date.String() != "2024-01-20" || tx.Type != Expense || tx.Amount != 40 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	out, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back["date"] != "2024-01-20" {
		t.Fatalf("date should stay a calendar date, got %v", back["date"])
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(NewDate(2024, 3, 9)); got != "2024-03" {
		t.Fatalf("expected 2024-03, got %s", got)
	}
	y, m, err := ParseMonthKey("2023-11")
	if err != nil || y != 2023 || m != 11 {
		t.Fatalf("unexpected parse: %d %d %v", y, m, err)
	}
	if _, _, err := ParseMonthKey("2023-13"); err == nil {
		t.Fatalf("expected error for month 13")
	}
}
