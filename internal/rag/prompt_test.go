package rag

import (
	"strings"
	"testing"

	"cyberdocs-rag/internal/vectorstore"
)

func testChunks() []vectorstore.Chunk {
	return []vectorstore.Chunk{
		{Content: "A01:2021 - Broken Access Control moves up from the fifth position.", Source: "dataset/owasp-top-10.pdf", Page: 4},
		{Content: "Adversaries use persistence techniques to maintain access.", Source: "mitre-attack-philosophy-2020.pdf", Page: 12},
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	query := "What is the first item in the OWASP Top 10?"
	chunks := testChunks()

	first := BuildPrompt(query, chunks, "auto")
	second := BuildPrompt(query, chunks, "auto")
	if first != second {
		t.Error("BuildPrompt() is not deterministic for identical inputs")
	}
}

func TestBuildPromptContainsContext(t *testing.T) {
	query := "What is the first item in the OWASP Top 10?"
	prompt := BuildPrompt(query, testChunks(), "en")

	for _, want := range []string{
		"[1] Source: owasp-top-10.pdf, Page: 4",
		"[2] Source: mitre-attack-philosophy-2020.pdf, Page: 12",
		"Question: " + query,
		"CRITICAL CITATION RULES",
		"Answer in English",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Error("BuildPrompt() should end with the answer cue")
	}
}

func TestBuildPromptLanguageSelection(t *testing.T) {
	chunks := testChunks()

	thai := BuildPrompt("มาตรฐานความปลอดภัยมีอะไรบ้าง", chunks, "auto")
	if !strings.Contains(thai, "ตอบเป็นภาษาไทย") {
		t.Error("auto language on a Thai query should render Thai instructions")
	}

	english := BuildPrompt("What are the standards?", chunks, "auto")
	if !strings.Contains(english, "Answer in English") {
		t.Error("auto language on an English query should render English instructions")
	}

	forced := BuildPrompt("What are the standards?", chunks, "th")
	if !strings.Contains(forced, "ตอบเป็นภาษาไทย") {
		t.Error("explicit th should override the detected language")
	}
}

func TestBuildPromptNoChunks(t *testing.T) {
	prompt := BuildPrompt("anything", nil, "en")
	if !strings.Contains(prompt, "[No documents retrieved]") {
		t.Error("BuildPrompt() with no chunks should render the empty-context placeholder")
	}
}

func TestFormatRetrievedChunksUnknownPage(t *testing.T) {
	chunks := []vectorstore.Chunk{{Content: "text", Source: "a.pdf", Page: 0}}
	formatted := formatRetrievedChunks(chunks)
	if !strings.Contains(formatted, "Page: unknown") {
		t.Errorf("formatRetrievedChunks() = %q, want page rendered as unknown", formatted)
	}
}

func TestSourceBasename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"owasp-top-10.pdf", "owasp-top-10.pdf"},
		{"dataset/owasp-top-10.pdf", "owasp-top-10.pdf"},
		{"dataset\\thai.pdf", "thai.pdf"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := sourceBasename(tt.input); got != tt.want {
			t.Errorf("sourceBasename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
