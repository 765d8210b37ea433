package rag

import (
	"strings"
	"testing"

	"cyberdocs-rag/internal/vectorstore"
)

func resultFor(id, source string, page int, content string) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		Chunk: vectorstore.Chunk{ID: id, Source: source, Page: page, Content: content},
		Score: 0.5,
	}
}

func TestFormatSourcesGroupsBySource(t *testing.T) {
	results := []vectorstore.SearchResult{
		resultFor("a", "dataset/owasp-top-10.pdf", 4, "broken access control"),
		resultFor("b", "mitre-attack-philosophy-2020.pdf", 12, "persistence techniques"),
		resultFor("c", "dataset/owasp-top-10.pdf", 5, "cryptographic failures"),
	}

	out := FormatSources(results, nil)

	if strings.Count(out, "**owasp-top-10**") != 1 {
		t.Errorf("expected a single owasp-top-10 group, got:\n%s", out)
	}
	if !strings.Contains(out, "**mitre-attack-philosophy-2020**") {
		t.Errorf("expected mitre group, got:\n%s", out)
	}
	// first-seen order: owasp before mitre
	if strings.Index(out, "owasp-top-10") > strings.Index(out, "mitre-attack-philosophy-2020") {
		t.Error("groups should appear in first-seen order")
	}
}

func TestFormatSourcesCapsPagesPerSource(t *testing.T) {
	results := []vectorstore.SearchResult{
		resultFor("a", "owasp-top-10.pdf", 1, "one"),
		resultFor("b", "owasp-top-10.pdf", 2, "two"),
		resultFor("c", "owasp-top-10.pdf", 3, "three"),
		resultFor("d", "owasp-top-10.pdf", 4, "four"),
		resultFor("e", "owasp-top-10.pdf", 5, "five"),
	}

	out := FormatSources(results, nil)

	if strings.Count(out, "• Page") != maxPagesPerSource {
		t.Errorf("expected %d page previews, got:\n%s", maxPagesPerSource, out)
	}
	if !strings.Contains(out, "...and 2 more pages") {
		t.Errorf("expected overflow note, got:\n%s", out)
	}
}

func TestFormatSourcesCitationsDeduplicated(t *testing.T) {
	results := []vectorstore.SearchResult{
		resultFor("a", "owasp-top-10.pdf", 4, "content"),
	}
	citations := []Citation{
		{Source: "owasp-top-10.pdf", Page: 4, Grounded: true},
		{Source: "owasp-top-10.pdf", Page: 4, Grounded: true},
		{Source: "mitre-attack.pdf", Page: 12},
	}

	out := FormatSources(results, citations)

	if !strings.Contains(out, "### Citations in Answer:") {
		t.Fatalf("expected citations section, got:\n%s", out)
	}
	if !strings.Contains(out, "1. **owasp-top-10** (Page 4)") {
		t.Errorf("expected deduplicated first citation, got:\n%s", out)
	}
	if !strings.Contains(out, "2. **mitre-attack** (Page 12)") {
		t.Errorf("expected second citation numbered 2, got:\n%s", out)
	}
	if strings.Contains(out, "3. ") {
		t.Errorf("duplicate citation should not produce a third entry:\n%s", out)
	}
}

func TestFormatSourcesWarnsWhenNoCitations(t *testing.T) {
	results := []vectorstore.SearchResult{
		resultFor("a", "owasp-top-10.pdf", 4, "content"),
	}

	out := FormatSources(results, nil)

	if !strings.Contains(out, "Warning:") {
		t.Errorf("expected ungrounded warning, got:\n%s", out)
	}
}

func TestPreviewText(t *testing.T) {
	long := strings.Repeat("x", 300)
	preview := previewText(long)
	if len([]rune(preview)) > previewRunes {
		t.Errorf("previewText() length = %d runes, want <= %d", len([]rune(preview)), previewRunes)
	}

	multiline := "first line\nsecond line"
	if got := previewText(multiline); strings.Contains(got, "\n") {
		t.Errorf("previewText() should collapse newlines, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"dataset/owasp-top-10.pdf", "owasp-top-10"},
		{"owasp-top-10.pdf", "owasp-top-10"},
		{"notes.md", "notes.md"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := displayName(tt.input); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
