package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"cyberdocs-rag/internal/contextutil"
)

func TestLoggerMiddleware(t *testing.T) {
	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextutil.LoggerFromContext(r.Context()) != nil {
			sawLogger = true
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := LoggerMiddleware(slog.Default())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !sawLogger {
		t.Error("expected logger in request context")
	}
}

func TestCORSHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected Access-Control-Allow-Methods header")
	}
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight request should not reach the next handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	rec := httptest.NewRecorder()
	CORS(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
