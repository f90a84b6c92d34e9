package core

import (
	"sort"
	"strings"
)

// AllValues is the select value meaning "no constraint".
const AllValues = "all"

// Filter holds the list predicates of the transactions view. Zero values
// (and "all") disable a predicate; From and To are inclusive.
type Filter struct {
	Type     string
	Category string
	Search   string
	From     Date
	To       Date
}

// IsEmpty reports whether no predicate is active.
func (f Filter) IsEmpty() bool {
	return !active(f.Type) && !active(f.Category) && strings.TrimSpace(f.Search) == "" &&
		f.From.IsZero() && f.To.IsZero()
}

// Match reports whether t satisfies every active predicate.
func (f Filter) Match(t Transaction) bool {
	if active(f.Type) && string(t.Type) != f.Type {
		return false
	}
	if active(f.Category) && t.Category != f.Category {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.Category), term) {
			return false
		}
	}
	if !f.From.IsZero() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To.Time) {
		return false
	}
	return true
}

// Apply returns the matching transactions newest first. The input is not
// modified.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != AllValues
}
