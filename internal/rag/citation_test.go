package rag

import (
	"testing"

	"cyberdocs-rag/internal/vectorstore"
)

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []Citation
	}{
		{
			name: "two english markers",
			answer: "Broken access control leads the list [Source: owasp-top-10.pdf, Page 4]. " +
				"It moved up from fifth [Source: a.pdf, Page 3].",
			want: []Citation{
				{Source: "owasp-top-10.pdf", Page: 4},
				{Source: "a.pdf", Page: 3},
			},
		},
		{
			name:   "no markers",
			answer: "Broken access control is the most serious risk.",
			want:   []Citation{},
		},
		{
			name:   "thai marker",
			answer: "มาตรฐานประกอบด้วย 5 หมวดหลัก [แหล่งที่มา: thailand-web-security-standard-2025.pdf, หน้า 5]",
			want: []Citation{
				{Source: "thailand-web-security-standard-2025.pdf", Page: 5},
			},
		},
		{
			name:   "mixed languages preserve order of appearance",
			answer: "First claim [แหล่งที่มา: thai.pdf, หน้า 2] then second [Source: owasp-top-10.pdf, Page 7].",
			want: []Citation{
				{Source: "thai.pdf", Page: 2},
				{Source: "owasp-top-10.pdf", Page: 7},
			},
		},
		{
			name:   "extra whitespace inside marker",
			answer: "Claim [Source:  owasp-top-10.pdf ,  Page 12].",
			want: []Citation{
				{Source: "owasp-top-10.pdf", Page: 12},
			},
		},
		{
			name:   "non-numeric page ignored",
			answer: "Claim [Source: owasp-top-10.pdf, Page iv].",
			want:   []Citation{},
		},
		{
			name:   "repeated marker kept in order",
			answer: "One [Source: a.pdf, Page 1]. Two [Source: a.pdf, Page 1].",
			want: []Citation{
				{Source: "a.pdf", Page: 1},
				{Source: "a.pdf", Page: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCitations(tt.answer)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractCitations() returned %d citations, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Source != tt.want[i].Source || got[i].Page != tt.want[i].Page {
					t.Errorf("citation %d = (%q, %d), want (%q, %d)",
						i, got[i].Source, got[i].Page, tt.want[i].Source, tt.want[i].Page)
				}
			}
		})
	}
}

func TestNormalizeSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "owasp-top-10.pdf", "owasp-top-10.pdf"},
		{"with directory", "dataset/owasp-top-10.pdf", "owasp-top-10.pdf"},
		{"uppercase", "OWASP-TOP-10.PDF", "owasp-top-10.pdf"},
		{"with spaces", " owasp-top-10.pdf ", "owasp-top-10.pdf"},
		{"windows path", "dataset\\owasp-top-10.pdf", "owasp-top-10.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeSource(tt.input)
			if result != tt.expected {
				t.Errorf("normalizeSource(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMatchSource(t *testing.T) {
	tests := []struct {
		name        string
		cited       string
		chunkSource string
		expected    bool
	}{
		{"exact match", "owasp-top-10.pdf", "owasp-top-10.pdf", true},
		{"case insensitive", "OWASP-Top-10.pdf", "owasp-top-10.pdf", true},
		{"chunk has directory", "owasp-top-10.pdf", "dataset/owasp-top-10.pdf", true},
		{"cited without extension", "owasp-top-10", "owasp-top-10.pdf", true},
		{"different files", "owasp-top-10.pdf", "mitre-attack.pdf", false},
		{"empty cited", "", "owasp-top-10.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matchSource(tt.cited, tt.chunkSource)
			if result != tt.expected {
				t.Errorf("matchSource(%q, %q) = %v, want %v", tt.cited, tt.chunkSource, result, tt.expected)
			}
		})
	}
}

func TestCrossCheckCitations(t *testing.T) {
	chunks := []vectorstore.Chunk{
		{Content: "c1", Source: "dataset/owasp-top-10.pdf", Page: 4},
		{Content: "c2", Source: "mitre-attack-philosophy-2020.pdf", Page: 12},
	}

	citations := []Citation{
		{Source: "owasp-top-10.pdf", Page: 4},
		{Source: "owasp-top-10.pdf", Page: 99},
		{Source: "mitre-attack-philosophy-2020.pdf", Page: 12},
		{Source: "invented.pdf", Page: 1},
	}

	checked := CrossCheckCitations(citations, chunks)
	wantGrounded := []bool{true, false, true, false}
	for i, want := range wantGrounded {
		if checked[i].Grounded != want {
			t.Errorf("citation %d (%s, p%d) grounded = %v, want %v",
				i, checked[i].Source, checked[i].Page, checked[i].Grounded, want)
		}
	}
}
