package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cyberdocs-rag/internal/contextutil"
	"cyberdocs-rag/internal/llm"
	"cyberdocs-rag/internal/storage"
	"cyberdocs-rag/internal/vectorstore"
)

// embedBatchSize bounds a single embedding request. The provider accepts up
// to 100 texts per batch.
const embedBatchSize = 50

// Summary reports what an ingest run did.
type Summary struct {
	FilesScanned  int
	FilesIndexed  int
	FilesSkipped  int
	ChunksIndexed int
}

// Pipeline orchestrates the indexing of dataset files into SQLite and the
// vector store.
type Pipeline struct {
	datasetRoot string
	cleaner     *Cleaner
	textChunker *TextChunker
	mdChunker   *MarkdownChunker
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
}

// NewPipeline creates a new ingest pipeline.
func NewPipeline(
	datasetRoot string,
	cleaner *Cleaner,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
) *Pipeline {
	return &Pipeline{
		datasetRoot: datasetRoot,
		cleaner:     cleaner,
		textChunker: NewTextChunker(),
		mdChunker:   NewMarkdownChunker(),
		embedder:    embedder,
		vectorStore: vectorStore,
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
	}
}

// Run scans the dataset and indexes every new or changed file. Unchanged
// files, identified by content hash, are skipped. Failures on individual
// files abort the run so a partial index is never mistaken for a full one.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := Scan(ctx, p.datasetRoot)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{FilesScanned: len(files)}
	for _, file := range files {
		indexed, chunks, err := p.indexFile(ctx, file)
		if err != nil {
			return summary, fmt.Errorf("failed to index %s: %w", file.RelPath, err)
		}
		if indexed {
			summary.FilesIndexed++
			summary.ChunksIndexed += chunks
		} else {
			summary.FilesSkipped++
		}
	}

	logger.InfoContext(ctx, "ingest run completed",
		"scanned", summary.FilesScanned,
		"indexed", summary.FilesIndexed,
		"skipped", summary.FilesSkipped,
		"chunks", summary.ChunksIndexed,
	)
	return summary, nil
}

// indexFile indexes a single file. Returns false when the file was skipped
// because its content hash matched the last indexed version.
func (p *Pipeline) indexFile(ctx context.Context, file ScannedFile) (bool, int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return false, 0, fmt.Errorf("failed to read file: %w", err)
	}

	hash := sha256.Sum256(content)
	hashHex := fmt.Sprintf("%x", hash)

	existing, err := p.docRepo.GetByPath(ctx, file.RelPath)
	if err != nil && err != storage.ErrNotFound {
		return false, 0, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "path", file.RelPath)
		return false, 0, nil
	}

	pages, pageCount, err := p.extractChunks(file, content)
	if err != nil {
		return false, 0, err
	}
	if len(pages) == 0 {
		logger.WarnContext(ctx, "no text extracted", "path", file.RelPath)
		return false, 0, nil
	}

	// Drop the previous version's chunks before writing the new ones.
	if existing != nil {
		staleIDs, err := p.chunkRepo.ListIDsByDocument(ctx, existing.ID)
		if err != nil {
			return false, 0, fmt.Errorf("failed to list stale chunks: %w", err)
		}
		if err := p.vectorStore.Delete(ctx, staleIDs); err != nil {
			return false, 0, fmt.Errorf("failed to delete stale vectors: %w", err)
		}
		if err := p.chunkRepo.DeleteByDocument(ctx, existing.ID); err != nil {
			return false, 0, fmt.Errorf("failed to delete stale chunks: %w", err)
		}
	}

	doc := &storage.Document{
		Path:  file.RelPath,
		Title: titleFromPath(file.RelPath),
		Pages: pageCount,
		Hash:  hashHex,
	}
	if existing != nil {
		doc.ID = existing.ID
	}
	if err := p.docRepo.Upsert(ctx, doc); err != nil {
		return false, 0, fmt.Errorf("failed to upsert document: %w", err)
	}

	records := make([]storage.Chunk, 0, len(pages))
	for _, pc := range pages {
		records = append(records, storage.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Page:       pc.page,
			ChunkIndex: pc.index,
			Text:       pc.text,
		})
	}

	if err := p.embedAndStore(ctx, file.RelPath, records); err != nil {
		return false, 0, err
	}

	logger.InfoContext(ctx, "indexed file", "path", file.RelPath, "chunks", len(records), "pages", pageCount)
	return true, len(records), nil
}

// pageChunk is an intermediate chunk before IDs and embeddings are assigned.
type pageChunk struct {
	page  int
	index int
	text  string
}

// extractChunks turns a scanned file into cleaned, size-constrained chunks.
// PDFs chunk page by page; markdown chunks by heading section with page 0.
func (p *Pipeline) extractChunks(file ScannedFile, content []byte) ([]pageChunk, int, error) {
	var chunks []pageChunk

	switch file.Ext {
	case ".pdf":
		pages, err := ExtractPDF(file.AbsPath)
		if err != nil {
			return nil, 0, err
		}
		pageCount := 0
		for _, page := range pages {
			if page.Page > pageCount {
				pageCount = page.Page
			}
			cleaned := p.cleaner.Clean(page.Text)
			for i, text := range p.textChunker.Split(cleaned) {
				chunks = append(chunks, pageChunk{page: page.Page, index: i, text: text})
			}
		}
		return chunks, pageCount, nil

	case ".md":
		sections, err := p.mdChunker.Chunk(content)
		if err != nil {
			return nil, 0, err
		}
		for i, section := range sections {
			chunks = append(chunks, pageChunk{page: 0, index: i, text: p.cleaner.Clean(section)})
		}
		return chunks, 1, nil

	default:
		return nil, 0, fmt.Errorf("unsupported file type %s", file.Ext)
	}
}

// embedAndStore embeds chunk texts in batches and writes them to the vector
// store and the chunk registry.
func (p *Pipeline) embedAndStore(ctx context.Context, relPath string, records []storage.Chunk) error {
	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, record := range batch {
			texts[i] = record.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: got %d for %d texts", len(vectors), len(batch))
		}

		docs := make([]vectorstore.Document, len(batch))
		for i, record := range batch {
			docs[i] = vectorstore.Document{
				ID:        record.ID,
				Content:   record.Text,
				Source:    relPath,
				Page:      record.Page,
				Embedding: vectors[i],
			}
		}
		if err := p.vectorStore.Add(ctx, docs); err != nil {
			return fmt.Errorf("failed to store vectors: %w", err)
		}

		for i := range batch {
			if err := p.chunkRepo.Insert(ctx, &batch[i]); err != nil {
				return fmt.Errorf("failed to record chunk: %w", err)
			}
		}
	}
	return nil
}

// titleFromPath derives a display title from a file path.
func titleFromPath(relPath string) string {
	name := filepath.Base(relPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
