package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"cyberdocs-rag/internal/rag"
	ragmocks "cyberdocs-rag/internal/rag/mocks"
)

func postAsk(t *testing.T, handler *AskHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(ragmocks.NewMockEngine(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestAskHandler_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(ragmocks.NewMockEngine(ctrl))

	rec := postAsk(t, handler, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAskHandler_InvalidLanguage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(ragmocks.NewMockEngine(ctrl))

	rec := postAsk(t, handler, `{"question": "hi", "language": "fr"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAskHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := ragmocks.NewMockEngine(ctrl)
	engine.EXPECT().Ask(gomock.Any(), rag.AskRequest{
		Question:     "What is OWASP?",
		K:            5,
		Multilingual: true,
	}).Return(rag.AskResponse{
		Answer:   "OWASP is a security foundation. [Source: owasp-top-10.pdf, Page 1]",
		Sources:  "### Retrieved Sources:\n",
		Language: "en",
		References: []rag.Reference{
			{Source: "owasp-top-10.pdf", Page: 1, Score: 0.9, Preview: "preview"},
		},
		Citations: []rag.Citation{
			{Source: "owasp-top-10.pdf", Page: 1, Grounded: true},
		},
	}, nil)

	handler := NewAskHandler(engine)
	rec := postAsk(t, handler, `{"question": "What is OWASP?", "k": 5, "multilingual": true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp AskResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Language != "en" {
		t.Errorf("Language = %q, want %q", resp.Language, "en")
	}
	if len(resp.References) != 1 || resp.References[0].Source != "owasp-top-10.pdf" {
		t.Errorf("unexpected references: %+v", resp.References)
	}
	if len(resp.Citations) != 1 || !resp.Citations[0].Grounded {
		t.Errorf("unexpected citations: %+v", resp.Citations)
	}
}

func TestAskHandler_ClampsK(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := ragmocks.NewMockEngine(ctrl)
	engine.EXPECT().Ask(gomock.Any(), rag.AskRequest{Question: "q", K: 20}).Return(rag.AskResponse{}, nil)

	handler := NewAskHandler(engine)
	rec := postAsk(t, handler, `{"question": "q", "k": 99}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "external service error",
			err:        fmt.Errorf("failed to generate answer: %w", rag.ErrExternalService),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "validation error",
			err:        &rag.ValidationError{Field: "question", Message: "Question is required"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			engine := ragmocks.NewMockEngine(ctrl)
			engine.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(rag.AskResponse{}, tt.err)

			handler := NewAskHandler(engine)
			rec := postAsk(t, handler, `{"question": "q"}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error == "" {
				t.Error("error message should not be empty")
			}
		})
	}
}
