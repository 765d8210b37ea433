package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"cyberdocs-rag/internal/storage"
	storagemocks "cyberdocs-rag/internal/storage/mocks"
	vsmocks "cyberdocs-rag/internal/vectorstore/mocks"
)

func TestStatsHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Count(gomock.Any()).Return(150, nil)

	chunkRepo := storagemocks.NewMockChunkStore(ctrl)
	chunkRepo.EXPECT().CountBySource(gomock.Any()).Return([]storage.SourceCount{
		{Path: "owasp-top-10.pdf", Chunks: 100},
		{Path: "thailand-web-security-standard-2025.pdf", Chunks: 50},
	}, nil)

	handler := NewStatsHandler(store, chunkRepo, "rag_knowledge_base")

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Collection != "rag_knowledge_base" {
		t.Errorf("Collection = %q", resp.Collection)
	}
	if resp.TotalChunks != 150 {
		t.Errorf("TotalChunks = %d, want 150", resp.TotalChunks)
	}
	if len(resp.Sources) != 2 || resp.Sources[0].Source != "owasp-top-10.pdf" || resp.Sources[0].Chunks != 100 {
		t.Errorf("unexpected sources: %+v", resp.Sources)
	}
}

func TestStatsHandler_VectorStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := vsmocks.NewMockVectorStore(ctrl)
	store.EXPECT().Count(gomock.Any()).Return(0, errors.New("connection refused"))

	chunkRepo := storagemocks.NewMockChunkStore(ctrl)

	handler := NewStatsHandler(store, chunkRepo, "rag_knowledge_base")

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestStatsHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewStatsHandler(vsmocks.NewMockVectorStore(ctrl), storagemocks.NewMockChunkStore(ctrl), "rag_knowledge_base")

	req := httptest.NewRequest(http.MethodPost, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHomeHandler_ServesPage(t *testing.T) {
	handler := NewHomeHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty page body")
	}
}
