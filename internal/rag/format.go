package rag

import (
	"fmt"
	"strings"

	"cyberdocs-rag/internal/vectorstore"
)

const (
	// previewRunes is the display budget for each chunk excerpt.
	previewRunes = 120
	// maxPagesPerSource caps how many chunk previews a single file contributes
	// to the sources block.
	maxPagesPerSource = 3
)

// ungroundedWarning is surfaced when the generated answer carries no citation
// markers at all.
const ungroundedWarning = "No citations found in answer. The response may not be well-grounded in sources."

// FormatSources renders the retrieved-sources block: chunks grouped by source
// file in first-seen order, page previews capped per file, followed by a
// deduplicated list of the citations the answer actually used. Pure
// formatting; no side effects.
func FormatSources(results []vectorstore.SearchResult, citations []Citation) string {
	var builder strings.Builder
	builder.WriteString("### Retrieved Sources:\n\n")

	var order []string
	grouped := make(map[string][]vectorstore.Chunk)
	for _, result := range results {
		source := result.Chunk.Source
		if _, ok := grouped[source]; !ok {
			order = append(order, source)
		}
		grouped[source] = append(grouped[source], result.Chunk)
	}

	for _, source := range order {
		chunks := grouped[source]
		builder.WriteString(fmt.Sprintf("**%s**\n", displayName(source)))

		shown := chunks
		if len(shown) > maxPagesPerSource {
			shown = shown[:maxPagesPerSource]
		}
		for _, chunk := range shown {
			builder.WriteString(fmt.Sprintf("  • Page %s: _%s..._\n", pageLabel(chunk.Page), previewText(chunk.Content)))
		}
		if extra := len(chunks) - maxPagesPerSource; extra > 0 {
			builder.WriteString(fmt.Sprintf("  • _...and %d more pages_\n", extra))
		}
		builder.WriteString("\n")
	}

	if len(citations) > 0 {
		builder.WriteString("### Citations in Answer:\n\n")
		for i, citation := range dedupeCitations(citations) {
			builder.WriteString(fmt.Sprintf("%d. **%s** (Page %d)\n", i+1, displayName(citation.Source), citation.Page))
		}
	} else {
		builder.WriteString(fmt.Sprintf("\n**Warning:** %s\n", ungroundedWarning))
	}

	return builder.String()
}

// dedupeCitations keeps the first occurrence of each (source, page) pair.
func dedupeCitations(citations []Citation) []Citation {
	seen := make(map[string]bool, len(citations))
	deduped := make([]Citation, 0, len(citations))
	for _, citation := range citations {
		key := fmt.Sprintf("%s:%d", normalizeSource(citation.Source), citation.Page)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, citation)
	}
	return deduped
}

// displayName strips the dataset prefix and .pdf extension for display.
func displayName(source string) string {
	name := strings.TrimPrefix(source, "dataset/")
	name = strings.TrimSuffix(name, ".pdf")
	if name == "" {
		return "unknown"
	}
	return name
}

// previewText collapses newlines and truncates content to the preview budget.
func previewText(content string) string {
	collapsed := strings.TrimSpace(strings.ReplaceAll(content, "\n", " "))
	runes := []rune(collapsed)
	if len(runes) <= previewRunes {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:previewRunes]))
}
