package storage

import "time"

// Document represents an indexed source file (PDF or markdown) in the database.
type Document struct {
	ID        string // UUID
	Path      string // Path relative to the dataset root
	Title     string // Display title derived from the filename
	Pages     int    // Page count for PDFs, 1 for markdown files
	Hash      string // SHA256 hex string of file content
	IndexedAt time.Time
}

// Chunk represents a page-level chunk of a document, indexed for vector search.
type Chunk struct {
	ID         string // UUID (same as the vector store record ID)
	DocumentID string // Foreign key to documents.id
	Page       int    // 1-based page number, 0 for unpaged sources
	ChunkIndex int    // Index within the page (starts at 0)
	Text       string // Cleaned chunk text
}

// SourceCount is a per-source chunk tally used by the stats endpoint.
type SourceCount struct {
	Path   string
	Chunks int
}
