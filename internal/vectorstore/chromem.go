package vectorstore

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"cyberdocs-rag/internal/contextutil"
)

const metaPageUnknown = "unknown"

// ChromemStore implements VectorStore using a chromem-go collection persisted
// on disk. The persistence directory is opaque; its existence is the only
// precondition checked before serving queries.
type ChromemStore struct {
	collection *chromem.Collection
}

// externalEmbeddings is installed as the collection's embedding function so a
// code path that forgets to supply a precomputed vector fails loudly instead
// of silently calling a default provider.
func externalEmbeddings(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embeddings are computed externally; no embedding function is configured")
}

// OpenChromem loads an existing persistent index for serving queries.
// It fails if the index directory does not exist, is empty, or does not
// contain the named collection. This is a setup error surfaced at startup,
// never a per-query condition.
func OpenChromem(path, collectionName string) (*ChromemStore, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("index directory not found at %s (run the ingest pipeline first): %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("index path %s is not a directory", path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index directory %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("index directory %s is empty (run the ingest pipeline first)", path)
	}

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}

	collection := db.GetCollection(collectionName, externalEmbeddings)
	if collection == nil {
		return nil, fmt.Errorf("collection %q not found in index at %s", collectionName, path)
	}

	return &ChromemStore{collection: collection}, nil
}

// CreateChromem opens or creates a persistent index for ingestion.
func CreateChromem(path, collectionName string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, externalEmbeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %q: %w", collectionName, err)
	}

	return &ChromemStore{collection: collection}, nil
}

// Search returns the k nearest chunks to the query vector, nearest-first.
func (s *ChromemStore) Search(ctx context.Context, query []float32, k int, filters map[string]string) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	// chromem rejects nResults larger than the collection, so clamp.
	count := s.collection.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	n := k
	if n > count {
		n = count
	}

	results, err := s.collection.QueryEmbedding(ctx, query, n, filters, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, result := range results {
		searchResults = append(searchResults, SearchResult{
			Chunk: Chunk{
				ID:      result.ID,
				Content: result.Content,
				Source:  result.Metadata["source"],
				Page:    parsePage(result.Metadata["page"]),
			},
			Score: result.Similarity,
		})
	}

	logger.InfoContext(ctx, "search completed", "k", k, "results", len(searchResults))
	return searchResults, nil
}

// Add inserts documents with precomputed embeddings into the collection.
func (s *ChromemStore) Add(ctx context.Context, docs []Document) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		page := metaPageUnknown
		if doc.Page > 0 {
			page = strconv.Itoa(doc.Page)
		}
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata: map[string]string{
				"source": doc.Source,
				"page":   page,
			},
		})
	}

	if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		logger.ErrorContext(ctx, "failed to add documents", "count", len(docs), "error", err)
		return fmt.Errorf("failed to add documents: %w", err)
	}

	logger.InfoContext(ctx, "added documents", "count", len(docs))
	return nil
}

// Delete removes documents by ID. Used when re-indexing a changed source file.
func (s *ChromemStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the collection.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// parsePage converts stored page metadata back to an integer.
// Missing or non-numeric metadata maps to 0.
func parsePage(value string) int {
	if value == "" || value == metaPageUnknown {
		return 0
	}
	page, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return page
}
