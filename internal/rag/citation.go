package rag

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cyberdocs-rag/internal/vectorstore"
)

// Citation marker forms produced by the model: the English
// "[Source: file, Page N]" and the Thai "[แหล่งที่มา: file, หน้า N]".
var (
	englishCitationPattern = regexp.MustCompile(`\[Source:\s*([^,\]]+?)\s*,\s*Page\s+(\d+)\]`)
	thaiCitationPattern    = regexp.MustCompile(`\[แหล่งที่มา:\s*([^,\]]+?)\s*,\s*หน้า\s+(\d+)\]`)
)

// ExtractCitations parses all citation markers out of generated answer text,
// in order of appearance. An empty result means the answer may be ungrounded;
// that is surfaced as a warning, not an error.
func ExtractCitations(answer string) []Citation {
	type located struct {
		citation Citation
		offset   int
	}

	var found []located
	for _, pattern := range []*regexp.Regexp{englishCitationPattern, thaiCitationPattern} {
		for _, match := range pattern.FindAllStringSubmatchIndex(answer, -1) {
			source := answer[match[2]:match[3]]
			page, err := strconv.Atoi(answer[match[4]:match[5]])
			if err != nil {
				continue
			}
			found = append(found, located{
				citation: Citation{Source: strings.TrimSpace(source), Page: page},
				offset:   match[0],
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].offset < found[j].offset
	})

	citations := make([]Citation, 0, len(found))
	for _, item := range found {
		citations = append(citations, item.citation)
	}
	return citations
}

// CrossCheckCitations marks each citation as grounded when some retrieved
// chunk matches its (source, page) pair. Grounding is a property to check,
// not an invariant the model is forced to honor.
func CrossCheckCitations(citations []Citation, chunks []vectorstore.Chunk) []Citation {
	checked := make([]Citation, len(citations))
	for i, citation := range citations {
		checked[i] = citation
		for _, chunk := range chunks {
			if chunk.Page == citation.Page && matchSource(citation.Source, chunk.Source) {
				checked[i].Grounded = true
				break
			}
		}
	}
	return checked
}

// normalizeSource lowercases a source identifier and strips directories and
// surrounding whitespace, so cited names compare against stored paths.
func normalizeSource(source string) string {
	normalized := strings.TrimSpace(strings.ToLower(source))
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		normalized = normalized[idx+1:]
	}
	return normalized
}

// matchSource reports whether a cited source refers to a chunk's source file.
// Matching is case-insensitive on basenames and tolerates a missing ".pdf"
// extension in the citation.
func matchSource(cited, chunkSource string) bool {
	citedName := normalizeSource(cited)
	chunkName := normalizeSource(chunkSource)
	if citedName == "" || chunkName == "" {
		return false
	}
	if citedName == chunkName {
		return true
	}
	return citedName == strings.TrimSuffix(chunkName, ".pdf") ||
		strings.TrimSuffix(citedName, ".pdf") == chunkName
}
