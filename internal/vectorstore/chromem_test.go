package vectorstore

import (
	"context"
	"testing"

	"github.com/philippgille/chromem-go"
)

func newMemoryStore(t *testing.T) *ChromemStore {
	t.Helper()
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("test", nil, externalEmbeddings)
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}
	return &ChromemStore{collection: collection}
}

func TestChromemStore_SearchEmptyCollection(t *testing.T) {
	store := newMemoryStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty collection = %d results, want 0", len(results))
	}
}

func TestChromemStore_SearchInvalidK(t *testing.T) {
	store := newMemoryStore(t)

	if _, err := store.Search(context.Background(), []float32{1, 0, 0}, 0, nil); err == nil {
		t.Error("Search() with k=0 should return an error")
	}
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Content: "broken access control", Source: "owasp-top-10.pdf", Page: 4, Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "persistence techniques", Source: "mitre-attack.pdf", Page: 12, Embedding: []float32{0, 1, 0}},
		{ID: "c", Content: "access control checks", Source: "owasp-top-10.pdf", Page: 5, Embedding: []float32{0.9, 0.1, 0}},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("Count() = %d, want 3", count)
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() = %d results, want 2", len(results))
	}
	if results[0].Chunk.ID != "a" {
		t.Errorf("Search() nearest = %q, want %q", results[0].Chunk.ID, "a")
	}
	if results[0].Score < results[1].Score {
		t.Error("Search() results not ordered nearest-first")
	}
	if results[0].Chunk.Source != "owasp-top-10.pdf" || results[0].Chunk.Page != 4 {
		t.Errorf("Search() metadata = (%q, %d), want (owasp-top-10.pdf, 4)", results[0].Chunk.Source, results[0].Chunk.Page)
	}
}

func TestChromemStore_Delete(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Content: "broken access control", Source: "owasp-top-10.pdf", Page: 4, Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "persistence techniques", Source: "mitre-attack.pdf", Page: 12, Embedding: []float32{0, 1, 0}},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Delete(ctx, []string{"a"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after delete = %d, want 1", count)
	}

	// Deleting nothing is a no-op.
	if err := store.Delete(ctx, nil); err != nil {
		t.Errorf("Delete(nil) error = %v", err)
	}
}

func TestChromemStore_SearchKLargerThanCollection(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Content: "only document", Source: "owasp-top-10.pdf", Page: 1, Embedding: []float32{1, 0, 0}},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Requesting more results than the collection holds must clamp, not fail.
	results, err := store.Search(ctx, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search() = %d results, want 1", len(results))
	}
}

func TestChromemStore_SearchSourceFilter(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	docs := []Document{
		{ID: "a", Content: "owasp content", Source: "owasp-top-10.pdf", Page: 1, Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "thai standard content", Source: "thailand-web-security-standard-2025.pdf", Page: 5, Embedding: []float32{0.9, 0.1, 0}},
	}
	if err := store.Add(ctx, docs); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2, map[string]string{"source": "thailand-web-security-standard-2025.pdf"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() with source filter = %d results, want 1", len(results))
	}
	if results[0].Chunk.ID != "b" {
		t.Errorf("Search() with source filter returned %q, want %q", results[0].Chunk.ID, "b")
	}
}

func TestOpenChromem_MissingDirectory(t *testing.T) {
	if _, err := OpenChromem(t.TempDir()+"/does-not-exist", "test"); err == nil {
		t.Error("OpenChromem() on missing directory should return an error")
	}
}

func TestOpenChromem_EmptyDirectory(t *testing.T) {
	if _, err := OpenChromem(t.TempDir(), "test"); err == nil {
		t.Error("OpenChromem() on empty directory should return an error")
	}
}

func TestOpenChromem_Roundtrip(t *testing.T) {
	dir := t.TempDir() + "/index"
	ctx := context.Background()

	created, err := CreateChromem(dir, "test")
	if err != nil {
		t.Fatalf("CreateChromem() error = %v", err)
	}
	docs := []Document{
		{ID: "a", Content: "persisted chunk", Source: "owasp-top-10.pdf", Page: 3, Embedding: []float32{1, 0, 0}},
	}
	if err := created.Add(ctx, docs); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	opened, err := OpenChromem(dir, "test")
	if err != nil {
		t.Fatalf("OpenChromem() error = %v", err)
	}
	count, err := opened.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after reopen = %d, want 1", count)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{"41", 41},
		{"", 0},
		{"unknown", 0},
		{"iv", 0},
	}

	for _, tt := range tests {
		if got := parsePage(tt.input); got != tt.want {
			t.Errorf("parsePage(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
