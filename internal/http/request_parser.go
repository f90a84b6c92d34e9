// Package http serves the transactions page, its htmx partials, the chart
// images and the websocket used to push redraw notices.
package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pocketbook/internal/core"
)

// ParseFields reads a transaction form. The first invalid field wins.
func ParseFields(form url.Values) (core.Fields, error) {
	amount, err := core.ParseAmount(form.Get("amount"))
	if err != nil {
		return core.Fields{}, err
	}
	txType, err := core.ParseType(form.Get("type"))
	if err != nil {
		return core.Fields{}, err
	}
	category := strings.ToLower(sanitizeInput(form.Get("category")))
	if category == "" {
		return core.Fields{}, core.ErrInvalidCategory
	}
	date, err := core.ParseDate(form.Get("date"))
	if err != nil {
		return core.Fields{}, err
	}

	return core.Fields{
		Amount:      amount,
		Type:        txType,
		Category:    category,
		Date:        date,
		Description: sanitizeInput(form.Get("description")),
	}, nil
}

// ParseFilter reads the list filters. Unparseable dates are ignored.
func ParseFilter(query url.Values) core.Filter {
	f := core.Filter{
		Type:     strings.ToLower(sanitizeInput(query.Get("type"))),
		Category: strings.ToLower(sanitizeInput(query.Get("category"))),
		Search:   sanitizeInput(query.Get("q")),
	}
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.From = d
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.To = d
		}
	}
	return f
}

// ParseID returns the {id} route parameter.
func ParseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", raw)
	}
	return id, nil
}
