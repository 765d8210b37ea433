package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cyberdocs-rag/internal/config"
	"cyberdocs-rag/internal/http"
	"cyberdocs-rag/internal/llm"
	"cyberdocs-rag/internal/rag"
	"cyberdocs-rag/internal/storage"
	"cyberdocs-rag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
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
	slog.Info("Database initialized", "path", cfg.DBPath)

	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Open the vector store. The index must already exist: queries cannot be
	// answered without it, so a missing index is a startup failure.
	var vectorStore vectorstore.VectorStore
	switch cfg.VectorBackend {
	case "qdrant":
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.CollectionName)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.RequireCollection(ctx); err != nil {
			log.Fatalf("Qdrant index not ready: %v", err)
		}
		vectorStore = qdrantStore
		slog.Info("Qdrant collection ready", "url", cfg.QdrantURL, "collection", cfg.CollectionName)
	default:
		chromemStore, err := vectorstore.OpenChromem(cfg.IndexPath, cfg.CollectionName)
		if err != nil {
			log.Fatalf("Local index not ready: %v", err)
		}
		vectorStore = chromemStore
		slog.Info("Local index ready", "path", cfg.IndexPath, "collection", cfg.CollectionName)
	}

	// Create the Gemini client shared by generation and embeddings
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer func() {
		_ = genaiClient.Close()
	}()

	embedder := llm.NewGeminiEmbedder(genaiClient, cfg.EmbeddingModel)
	generator := llm.NewClient(genaiClient, cfg.GenerationModel, llm.GenerationParams{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	slog.Info("Gemini clients initialized", "generation_model", cfg.GenerationModel, "embedding_model", cfg.EmbeddingModel)

	// Create RAG engine
	retriever := rag.NewRetriever(embedder, vectorStore, cfg.ThaiSource)
	ragEngine := rag.NewEngine(retriever, generator)
	slog.Info("RAG engine initialized")

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		RAGEngine:      ragEngine,
		VectorStore:    vectorStore,
		ChunkRepo:      chunkRepo,
		CollectionName: cfg.CollectionName,
		Logger:         logger,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
