package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cyberdocs-rag/internal/contextutil"
	"cyberdocs-rag/internal/rag"
)

// AskHandler handles HTTP requests for RAG queries.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for RAG queries.
// This mirrors the rag.AskRequest but is defined here for HTTP layer separation.
type AskRequest struct {
	Question     string `json:"question"`
	K            int    `json:"k,omitempty"`
	Language     string `json:"language,omitempty"`
	Multilingual bool   `json:"multilingual,omitempty"`
	FilterPages  bool   `json:"filter_pages,omitempty"`
}

// AskResponse represents the HTTP response payload for RAG queries.
type AskResponse struct {
	// The generated answer with inline citation markers
	Answer string `json:"answer"`

	// Formatted markdown block with retrieved sources and citations
	Sources string `json:"sources"`

	// Per-chunk references backing the answer
	References []ReferenceResponse `json:"references"`

	// Citations extracted from the answer, with grounding flags
	Citations []CitationResponse `json:"citations"`

	// Detected or requested answer language ("en" or "th")
	Language string `json:"language"`

	// Warning set when the answer carries no citations
	Warning string `json:"warning,omitempty"`
}

// ReferenceResponse represents a retrieved chunk reference in the HTTP response.
type ReferenceResponse struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Score   float32 `json:"score"`
	Preview string  `json:"preview"`
}

// CitationResponse represents an extracted citation in the HTTP response.
type CitationResponse struct {
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Grounded bool   `json:"grounded"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for RAG queries.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Language {
	case "", "auto", "en", "th":
	default:
		logger.WarnContext(ctx, "invalid language in request", "language", req.Language)
		writeError(w, http.StatusBadRequest, "Language must be one of: auto, en, th")
		return
	}

	// Bounds for user-provided K. Zero means "use server default".
	if req.K < 0 {
		req.K = 0
	}
	if req.K > 20 {
		req.K = 20
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question:     req.Question,
		K:            req.K,
		Language:     req.Language,
		Multilingual: req.Multilingual,
		FilterPages:  req.FilterPages,
	})
	if err != nil {
		handleRAGError(w, r, err)
		return
	}

	references := make([]ReferenceResponse, len(ragResp.References))
	for i, ref := range ragResp.References {
		references[i] = ReferenceResponse{
			Source:  ref.Source,
			Page:    ref.Page,
			Score:   ref.Score,
			Preview: ref.Preview,
		}
	}

	citations := make([]CitationResponse, len(ragResp.Citations))
	for i, citation := range ragResp.Citations {
		citations[i] = CitationResponse{
			Source:   citation.Source,
			Page:     citation.Page,
			Grounded: citation.Grounded,
		}
	}

	resp := AskResponse{
		Answer:     ragResp.Answer,
		Sources:    ragResp.Sources,
		References: references,
		Citations:  citations,
		Language:   ragResp.Language,
		Warning:    ragResp.Warning,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleRAGError maps RAG engine errors to appropriate HTTP status codes.
func handleRAGError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "RAG engine error", "error", err)

	var validationErr *rag.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, rag.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, rag.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process query")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
