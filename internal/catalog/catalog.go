// Package catalog holds the fixed category sets allowed per transaction type.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pocketbook/internal/core"
)

// DefaultEmoji is shown for categories without an icon of their own.
const DefaultEmoji = "📌"

// Catalog lists the allowed categories per type, in display order.
type Catalog struct {
	Income  []string          `yaml:"income"`
	Expense []string          `yaml:"expense"`
	Emoji   map[string]string `yaml:"emoji,omitempty"`
}

var _ core.CategoryChecker = (*Catalog)(nil)

// Default returns the built-in category sets.
func Default() *Catalog {
	return &Catalog{
		Income:  []string{"salary", "freelance", "investment", "other"},
		Expense: []string{"food", "travel", "shopping", "bills", "healthcare", "entertainment", "education", "other"},
		Emoji: map[string]string{
			"salary":        "💼",
			"freelance":     "💻",
			"investment":    "📈",
			"food":          "🍔",
			"travel":        "✈️",
			"shopping":      "🛍️",
			"bills":         "📱",
			"healthcare":    "🏥",
			"entertainment": "🎬",
			"education":     "📚",
			"other":         "📌",
		},
	}
}

// Load reads a YAML catalog file. Missing emoji entries fall back to the
// built-in icons.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c.Income = normalize(c.Income)
	c.Expense = normalize(c.Expense)
	if len(c.Income) == 0 || len(c.Expense) == 0 {
		return nil, fmt.Errorf("catalog %s: income and expense lists must not be empty", path)
	}
	defaults := Default().Emoji
	if c.Emoji == nil {
		c.Emoji = map[string]string{}
	}
	for k, v := range defaults {
		if _, ok := c.Emoji[k]; !ok {
			c.Emoji[k] = v
		}
	}
	return &c, nil
}

// LoadOrDefault loads path when set, otherwise returns Default.
func LoadOrDefault(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}

// For returns the categories allowed for t.
func (c *Catalog) For(t core.TransactionType) []string {
	switch t {
	case core.Income:
		return append([]string(nil), c.Income...)
	case core.Expense:
		return append([]string(nil), c.Expense...)
	}
	return nil
}

// All returns every category once, income first.
func (c *Catalog) All() []string {
	return normalize(append(c.For(core.Income), c.Expense...))
}

func (c *Catalog) Allowed(t core.TransactionType, category string) bool {
	for _, v := range c.For(t) {
		if v == category {
			return true
		}
	}
	return false
}

// EmojiFor returns the icon for a category.
func (c *Catalog) EmojiFor(category string) string {
	if e, ok := c.Emoji[category]; ok && e != "" {
		return e
	}
	return DefaultEmoji
}

func normalize(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
