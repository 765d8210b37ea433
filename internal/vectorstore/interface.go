package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks cyberdocs-rag/internal/vectorstore VectorStore

import "context"

// Chunk is a unit of retrieved document text with its source metadata.
// Chunks are produced by the vector store and immutable once retrieved.
// Page is 0 when the source had no page metadata.
type Chunk struct {
	ID      string
	Content string
	Source  string
	Page    int
}

// Document is a chunk plus its precomputed embedding, used for ingestion.
type Document struct {
	ID        string
	Content   string
	Source    string
	Page      int
	Embedding []float32
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// VectorStore defines the interface for vector storage operations.
// Implementations bind to a single collection at construction.
type VectorStore interface {
	// Search returns the k nearest chunks to the query vector, nearest-first.
	// Filters restrict results to chunks whose metadata matches every entry
	// (e.g. {"source": "owasp-top-10.pdf"}). An empty result is not an error.
	Search(ctx context.Context, query []float32, k int, filters map[string]string) ([]SearchResult, error)

	// Add inserts documents with precomputed embeddings into the collection.
	Add(ctx context.Context, docs []Document) error

	// Delete removes documents by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of chunks in the collection.
	Count(ctx context.Context) (int, error)
}
