package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestMiddleware_LogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := NewMiddleware(logger, func(*http.Request) string { return "1.2.3.4" }, func(r *http.Request) bool {
		return strings.Contains(r.URL.Path, ".env")
	})

	var seenID string
	h := chimiddleware.RequestID(m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})))

	for _, p := range []string{"/", "/boom", "/.env"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if seenID == "" {
		t.Error("request id should be propagated")
	}
	total, failed := m.Counts()
	if total != 3 || failed != 1 {
		t.Errorf("Counts() = %d, %d", total, failed)
	}
	out := buf.String()
	if !strings.Contains(out, "Suspicious request") {
		t.Error("suspicious request should be logged")
	}
	if !strings.Contains(out, "status_code=500") || !strings.Contains(out, "client_ip=1.2.3.4") {
		t.Errorf("unexpected log output:\n%s", out)
	}
}
