package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks cyberdocs-rag/internal/llm Embedder

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// Embedder generates vector representations of text.
// Both indexed chunks and incoming queries go through the same model, so the
// vectors live in the same space.
type Embedder interface {
	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts generates embeddings for the given texts, one vector per input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder is a Gemini embeddings client.
// It implements the Embedder interface.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
}

// NewGeminiEmbedder creates a new embeddings client for the given model.
func NewGeminiEmbedder(gc *genai.Client, modelName string) *GeminiEmbedder {
	return &GeminiEmbedder{
		model: gc.EmbeddingModel(modelName),
	}
}

// EmbedText generates an embedding for a single text.
func (e *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty input text")
	}

	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Embedding.Values, nil
}

// EmbedTexts generates embeddings for the given texts using a single batch request.
func (e *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	batch := e.model.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(genai.Text(text))
	}

	resp, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embedding request failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	result := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		result[i] = embedding.Values
	}

	return result, nil
}
