package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cyberdocs-rag/internal/config"
	"cyberdocs-rag/internal/ingest"
	"cyberdocs-rag/internal/llm"
	"cyberdocs-rag/internal/storage"
	"cyberdocs-rag/internal/vectorstore"
)

// embeddingVectorSize is the dimensionality of text-embedding-004 vectors,
// needed to create a Qdrant collection up front.
const embeddingVectorSize = 768

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Open or create the vector store collection for writing.
	var vectorStore vectorstore.VectorStore
	switch cfg.VectorBackend {
	case "qdrant":
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.CollectionName)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, embeddingVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		vectorStore = qdrantStore
	default:
		chromemStore, err := vectorstore.CreateChromem(cfg.IndexPath, cfg.CollectionName)
		if err != nil {
			log.Fatalf("Failed to create local index: %v", err)
		}
		vectorStore = chromemStore
	}
	slog.Info("Vector store ready", "backend", cfg.VectorBackend, "collection", cfg.CollectionName)

	cleaner, err := ingest.LoadCleaner(cfg.CleanupRulesPath)
	if err != nil {
		log.Fatalf("Failed to load cleanup rules: %v", err)
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer func() {
		_ = genaiClient.Close()
	}()

	embedder := llm.NewGeminiEmbedder(genaiClient, cfg.EmbeddingModel)

	pipeline := ingest.NewPipeline(cfg.DatasetPath, cleaner, embedder, vectorStore, docRepo, chunkRepo)

	slog.Info("Starting ingest", "dataset", cfg.DatasetPath)
	summary, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	slog.Info("Ingest finished",
		"scanned", summary.FilesScanned,
		"indexed", summary.FilesIndexed,
		"skipped", summary.FilesSkipped,
		"chunks", summary.ChunksIndexed,
	)
}
