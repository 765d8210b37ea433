package handlers

import (
	"encoding/json"
	"net/http"

	"cyberdocs-rag/internal/contextutil"
	"cyberdocs-rag/internal/storage"
	"cyberdocs-rag/internal/vectorstore"
)

// StatsHandler reports knowledge base statistics.
type StatsHandler struct {
	vectorStore    vectorstore.VectorStore
	chunkRepo      storage.ChunkStore
	collectionName string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(vectorStore vectorstore.VectorStore, chunkRepo storage.ChunkStore, collectionName string) *StatsHandler {
	return &StatsHandler{
		vectorStore:    vectorStore,
		chunkRepo:      chunkRepo,
		collectionName: collectionName,
	}
}

// StatsResponse represents knowledge base statistics.
type StatsResponse struct {
	// Name of the vector store collection
	Collection string `json:"collection"`

	// Total chunks in the vector store
	TotalChunks int `json:"total_chunks"`

	// Chunk count per source file
	Sources []SourceStats `json:"sources"`
}

// SourceStats is a per-source chunk tally.
type SourceStats struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// ServeHTTP handles HTTP requests for knowledge base statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	total, err := h.vectorStore.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count vector store chunks", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	counts, err := h.chunkRepo.CountBySource(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count chunks by source", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load statistics")
		return
	}

	sources := make([]SourceStats, len(counts))
	for i, count := range counts {
		sources[i] = SourceStats{Source: count.Path, Chunks: count.Chunks}
	}

	resp := StatsResponse{
		Collection:  h.collectionName,
		TotalChunks: total,
		Sources:     sources,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode stats response", "error", err)
	}
}
