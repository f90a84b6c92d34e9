package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, raw)
	}
	return out
}

func TestHTMXResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if h := w.Header().Get("HX-Trigger"); h != "" {
		t.Errorf("HX-Trigger = %q, want empty", h)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestHTMXResponseBuilder_MutationTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionsChanged(7).
		TriggerFormReset().
		TriggerModalClose().
		TriggerSuccessNotification("Transaction added").
		Write(w)

	triggers := decodeTriggers(t, w)
	for _, name := range []string{EventTransactionsChanged, EventFormReset, EventModalClose, EventNotification} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q", name)
		}
	}
	if got := string(triggers[EventTransactionsChanged]); got != `{"revision":7}` {
		t.Errorf("revision payload = %s", got)
	}

	var toast struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(triggers[EventNotification], &toast); err != nil {
		t.Fatal(err)
	}
	if toast.Type != "success" || toast.Message != "Transaction added" || toast.Duration != successToastMs {
		t.Errorf("notification = %+v", toast)
	}
}

func TestHTMXResponseBuilder_ThemeChanged(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().TriggerThemeChanged("light").Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger != `{"theme:changed":{"theme":"light"}}` {
		t.Errorf("HX-Trigger = %s", trigger)
	}
}

func TestHTMXResponseBuilder_BodyHTML(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		BodyHTML(`<div class="success">ok</div>`).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `<div class="success">ok</div>` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad id",
			builder:    BadRequestError("invalid transaction id"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">invalid transaction id</div>`,
		},
		{
			name:       "validation",
			builder:    UnprocessableEntityError("Please enter a valid amount"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error">Please enter a valid amount</div>`,
		},
		{
			name:       "storage failure",
			builder:    InternalServerError("Failed to save transaction"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Failed to save transaction</div>`,
		},
		{
			name:       "unknown id",
			builder:    NotFoundError("Transaction not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `<div class="error">Transaction not found</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	UnprocessableEntityError(`category "<b>x</b>" not allowed`).Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<b>") {
		t.Errorf("message not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;b&gt;") {
		t.Errorf("expected escaped entities: %s", body)
	}
}

func TestTooManyRequestsError(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequestsError().Write(w)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("missing error notification: %s", w.Header().Get("HX-Trigger"))
	}
}
