package http

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"pocketbook/internal/catalog"
	"pocketbook/internal/core"
)

// sanitizeInput removes control characters (tab, newline and carriage return
// excepted) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(result)
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidCategory,
	core.ErrInvalidDate,
	core.ErrDescriptionTooLong,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// validationMessage is what the form shows for a rejected field.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount"
	case errors.Is(err, core.ErrInvalidType):
		return "Please choose income or expense"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Please choose a category"
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a valid date"
	case errors.Is(err, core.ErrDescriptionTooLong):
		return "Description is too long (max 200 characters)"
	}
	return err.Error()
}

func templateFuncs(c *catalog.Catalog) template.FuncMap {
	return template.FuncMap{
		"amount":  core.FormatAmount,
		"signed":  core.FormatSignedAmount,
		"date":    core.FormatDate,
		"display": core.DisplayName,
		"emoji":   c.EmojiFor,
		"plain":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"isIncome": func(t core.TransactionType) bool {
			return t == core.Income
		},
	}
}
