package handlers

import (
	_ "embed"
	"net/http"

	"cyberdocs-rag/internal/contextutil"
)

//go:embed assets/index.html
var indexPage []byte

// HomeHandler serves the built-in query page.
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// ServeHTTP serves the query form.
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexPage); err != nil {
		logger.ErrorContext(ctx, "failed to write index page", "error", err)
	}
}
