package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"cyberdocs-rag/internal/contextutil"
)

// QdrantStore implements VectorStore using a remote Qdrant server.
// It is the alternative to the local chromem index for deployments where the
// index is shared between hosts.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a new Qdrant vector store client bound to a collection.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port is derived from the HTTP port.
func NewQdrantStore(urlStr, collection string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is typically HTTP port + 1.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
	}, nil
}

// EnsureCollection ensures the bound collection exists with the given vector size.
// Called by the ingest pipeline before the first add; the serving path requires
// the collection to already exist and fails at startup otherwise.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// RequireCollection verifies the bound collection exists and is non-empty.
// This is the startup precondition check for the serving path.
func (s *QdrantStore) RequireCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %q not found (run the ingest pipeline first)", s.collection)
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("collection %q is empty (run the ingest pipeline first)", s.collection)
	}
	return nil
}

// Search returns the k nearest chunks to the query vector, nearest-first.
func (s *QdrantStore) Search(ctx context.Context, query []float32, k int, filters map[string]string) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	var qdrantFilter *qdrant.Filter
	if len(filters) > 0 {
		mustConditions := make([]*qdrant.Condition, 0, len(filters))
		for key, value := range filters {
			mustConditions = append(mustConditions, qdrant.NewMatch(key, value))
		}
		qdrantFilter = &qdrant.Filter{Must: mustConditions}
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if qdrantFilter != nil {
		queryReq.Filter = qdrantFilter
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", s.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		pointID := ""
		if point.Id != nil {
			pointID = point.Id.GetUuid()
		}

		chunk := Chunk{ID: pointID}
		if point.Payload != nil {
			if v, ok := point.Payload["content"]; ok {
				chunk.Content = v.GetStringValue()
			}
			if v, ok := point.Payload["source"]; ok {
				chunk.Source = v.GetStringValue()
			}
			if v, ok := point.Payload["page"]; ok {
				chunk.Page = int(v.GetIntegerValue())
			}
		}

		results = append(results, SearchResult{
			Chunk: chunk,
			Score: point.Score,
		})
	}

	logger.InfoContext(ctx, "search completed", "collection", s.collection, "k", k, "results", len(results))
	return results, nil
}

// Add inserts documents with precomputed embeddings into the collection.
func (s *QdrantStore) Add(ctx context.Context, docs []Document) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content": doc.Content,
				"source":  doc.Source,
				"page":    doc.Page,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(docs), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", s.collection, "count", len(docs))
	return nil
}

// Delete removes documents by ID. Used when re-indexing a changed source file.
func (s *QdrantStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewID(id))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}

	if info.PointsCount == nil {
		return 0, nil
	}
	return int(*info.PointsCount), nil
}
