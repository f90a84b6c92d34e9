package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
)

func TestDefaultAllowed(t *testing.T) {
	c := Default()
	assert.True(t, c.Allowed(core.Income, "salary"))
	assert.True(t, c.Allowed(core.Expense, "food"))
	assert.False(t, c.Allowed(core.Income, "food"))
	assert.False(t, c.Allowed(core.Expense, "salary"))
	assert.True(t, c.Allowed(core.Income, "other"))
	assert.True(t, c.Allowed(core.Expense, "other"))
}

func TestAllDedupes(t *testing.T) {
	all := Default().All()
	count := 0
	for _, v := range all {
		if v == "other" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "salary", all[0])
}

func TestEmojiFallback(t *testing.T) {
	c := Default()
	assert.Equal(t, "🍔", c.EmojiFor("food"))
	assert.Equal(t, DefaultEmoji, c.EmojiFor("pets"))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	content := "income:\n  - Salary\n  - gifts\nexpense:\n  - food\n  - pets\n  - food\nemoji:\n  pets: \"🐶\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"salary", "gifts"}, c.Income)
	assert.Equal(t, []string{"food", "pets"}, c.Expense)
	assert.Equal(t, "🐶", c.EmojiFor("pets"))
	assert.Equal(t, "🍔", c.EmojiFor("food"))
	assert.True(t, c.Allowed(core.Expense, "pets"))
}

func TestLoadRejectsEmptyLists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("income: []\nexpense: [food]\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	c, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default().Expense, c.Expense)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
