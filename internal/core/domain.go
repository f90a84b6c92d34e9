package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the ISO calendar date format used for storage and forms.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is one recorded income or expense event.
	Transaction struct {
		ID          int64           `json:"id"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
		Timestamp   time.Time       `json:"timestamp"`
	}

	// Fields is the user-editable part of a transaction. Edits replace all of
	// them at once.
	Fields struct {
		Amount      float64
		Type        TransactionType
		Category    string
		Date        Date
		Description string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// CategoryChecker reports whether a category is allowed for a transaction type.
type CategoryChecker interface {
	Allowed(t TransactionType, category string) bool
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseType accepts "income" or "expense" in any case.
func ParseType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the calendar part is kept.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (f Fields) Validate(catalog CategoryChecker) error {
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !f.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(f.Category) == "" {
		return ErrInvalidCategory
	}
	if catalog != nil && !catalog.Allowed(f.Type, f.Category) {
		return fmt.Errorf("%w: %q not allowed for %s", ErrInvalidCategory, f.Category, f.Type)
	}
	if err := f.Date.Validate(); err != nil {
		return err
	}
	if len(f.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

// Fields returns the editable fields of t.
func (t Transaction) Fields() Fields {
	return Fields{
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Date:        t.Date,
		Description: t.Description,
	}
}

// WithFields replaces every editable field, keeping ID and Timestamp.
func (t Transaction) WithFields(f Fields) Transaction {
	t.Amount = f.Amount
	t.Type = f.Type
	t.Category = f.Category
	t.Date = f.Date
	t.Description = f.Description
	return t
}

// MonthKey returns the "YYYY-MM" bucket for a date. The zero date yields
// "0001-01"; callers are expected to pass valid dates.
func MonthKey(d Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// ParseMonthKey splits a "YYYY-MM" key.
func ParseMonthKey(key string) (year, month int, err error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t.Year(), int(t.Month()), nil
}
