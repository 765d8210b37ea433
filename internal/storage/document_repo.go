package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks cyberdocs-rag/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByPath gets a document by its dataset-relative path.
	// Returns nil and ErrNotFound if not found.
	GetByPath(ctx context.Context, path string) (*Document, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *Document) error
	// ListAll returns all indexed documents ordered by path.
	ListAll(ctx context.Context) ([]Document, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByPath gets a document by its dataset-relative path.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByPath(ctx context.Context, path string) (*Document, error) {
	var doc Document
	var indexedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, path, title, pages, hash, indexed_at FROM documents WHERE path = ?",
		path,
	).Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Pages, &doc.Hash, &indexedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	doc.IndexedAt, err = parseTimestamp(indexedAtStr)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// Upsert inserts a new document or updates an existing one.
// New documents get a generated UUID; existing ones keep their ID.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *Document) error {
	existing, err := r.GetByPath(ctx, doc.Path)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing == nil && doc.ID == "" {
		doc.ID = uuid.New().String()
	} else if existing != nil {
		doc.ID = existing.ID
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, path, title, pages, hash, indexed_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (path) DO UPDATE SET
		 title = excluded.title, pages = excluded.pages, hash = excluded.hash, indexed_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Path, doc.Title, doc.Pages, doc.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// ListAll returns all indexed documents ordered by path.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, path, title, pages, hash, indexed_at FROM documents ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var indexedAtStr string
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Title, &doc.Pages, &doc.Hash, &indexedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.IndexedAt, err = parseTimestamp(indexedAtStr)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// parseTimestamp parses a SQLite DATETIME column value.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err == nil {
		return t, nil
	}

	// SQLite may store RFC3339 depending on how the value was written
	t, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}
