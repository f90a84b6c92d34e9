package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side event names carried in HX-Trigger.
const (
	EventTransactionsChanged = "transactions:changed"
	EventThemeChanged        = "theme:changed"
	EventFormReset           = "form:reset"
	EventModalClose          = "modal:close"
	EventNotification        = "show-notification"
)

// HTMXResponseBuilder collects HX-Trigger events, headers and an optional
// HTML fragment, then writes them in one go.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       string
	headers    http.Header
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(http.Header),
	}
}

func (b *HTMXResponseBuilder) trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerTransactionsChanged tells the page to reload the list, the summary
// and, when visible, the charts.
func (b *HTMXResponseBuilder) TriggerTransactionsChanged(revision uint64) *HTMXResponseBuilder {
	return b.trigger(EventTransactionsChanged, map[string]uint64{"revision": revision})
}

// TriggerThemeChanged carries the new theme so the page can restyle itself.
func (b *HTMXResponseBuilder) TriggerThemeChanged(theme string) *HTMXResponseBuilder {
	return b.trigger(EventThemeChanged, map[string]string{"theme": theme})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.trigger(EventFormReset, struct{}{})
}

// TriggerModalClose closes the edit dialog.
func (b *HTMXResponseBuilder) TriggerModalClose() *HTMXResponseBuilder {
	return b.trigger(EventModalClose, struct{}{})
}

// Toast durations in milliseconds.
const (
	successToastMs = 3000
	errorToastMs   = 5000
)

func (b *HTMXResponseBuilder) notify(kind, message string, durationMs int) *HTMXResponseBuilder {
	return b.trigger(EventNotification, map[string]any{
		"type":     kind,
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.notify("success", message, successToastMs)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.notify("error", message, errorToastMs)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

// BodyHTML sets an HTML fragment as the body. The caller escapes any user
// data inside it.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	b.body = html
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.headers {
		w.Header()[name] = values
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if b.body != "" {
		_, _ = w.Write([]byte(b.body))
	}
}

// ErrorResponse renders message, escaped, inside an error fragment.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	b := NewHTMXResponse().BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
	b.statusCode = statusCode
	return b
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError is used for form values that fail validation.
func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError is returned for edits or deletes of unknown transaction ids.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError asks the client to retry after a second.
func TooManyRequestsError() *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Too many requests, slow down a little.").
		Header("Retry-After", "1").
		TriggerErrorNotification("Too many requests")
}
