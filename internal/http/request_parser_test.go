package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketbook/internal/core"
)

func TestParseFields(t *testing.T) {
	form := url.Values{
		"amount":      {"12,345"},
		"type":        {"Expense"},
		"category":    {" Food "},
		"date":        {"2024-01-15"},
		"description": {"lunch\x00 "},
	}
	f, err := ParseFields(form)
	require.NoError(t, err)
	assert.Equal(t, 12.35, f.Amount)
	assert.Equal(t, core.Expense, f.Type)
	assert.Equal(t, "food", f.Category)
	assert.Equal(t, core.NewDate(2024, 1, 15), f.Date)
	assert.Equal(t, "lunch", f.Description)
}

func TestParseFields_Errors(t *testing.T) {
	valid := func() url.Values {
		return url.Values{"amount": {"10"}, "type": {"income"}, "category": {"salary"}, "date": {"2024-02-01"}}
	}
	tests := []struct {
		name  string
		field string
		value string
		want  error
	}{
		{"bad amount", "amount", "abc", core.ErrInvalidAmount},
		{"zero amount", "amount", "0", core.ErrInvalidAmount},
		{"bad type", "type", "transfer", core.ErrInvalidType},
		{"missing category", "category", " ", core.ErrInvalidCategory},
		{"bad date", "date", "15/01/2024", core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			form.Set(tt.field, tt.value)
			_, err := ParseFields(form)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter(url.Values{
		"type":     {"EXPENSE"},
		"category": {"all"},
		"q":        {" coffee "},
		"from":     {"2024-01-01"},
		"to":       {"garbage"},
	})
	assert.Equal(t, "expense", f.Type)
	assert.Equal(t, "all", f.Category)
	assert.Equal(t, "coffee", f.Search)
	assert.Equal(t, core.NewDate(2024, 1, 1), f.From)
	assert.True(t, f.To.IsZero())

	assert.True(t, ParseFilter(url.Values{}).IsEmpty())
}

func TestParseID(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		r := httptest.NewRequest(http.MethodPost, "/transactions/"+v, nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParseID(withParam("1704067200000"))
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200000), id)

	for _, bad := range []string{"", "abc", "-3", "0"} {
		_, err := ParseID(withParam(bad))
		assert.Error(t, err, bad)
	}
}
