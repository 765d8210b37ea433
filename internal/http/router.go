package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cyberdocs-rag/internal/handlers"
	"cyberdocs-rag/internal/rag"
	"cyberdocs-rag/internal/storage"
	"cyberdocs-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine      rag.Engine
	VectorStore    vectorstore.VectorStore
	ChunkRepo      storage.ChunkStore
	CollectionName string
	Logger         *slog.Logger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	statsHandler := handlers.NewStatsHandler(deps.VectorStore, deps.ChunkRepo, deps.CollectionName)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)
	homeHandler := handlers.NewHomeHandler()

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/", homeHandler)

	return r
}
