package rag

import (
	"context"
	"sort"
	"strings"

	"cyberdocs-rag/internal/contextutil"
	"cyberdocs-rag/internal/llm"
	"cyberdocs-rag/internal/vectorstore"
)

const (
	// maxAdaptiveK caps the widened result count on an adaptive re-query.
	maxAdaptiveK = 30
	// boilerplateHeadRunes is how far into a chunk the section markers are
	// looked for.
	boilerplateHeadRunes = 160
	// dottedLeaderThreshold is the number of "...." runs that mark a chunk as
	// a table-of-contents row dump.
	dottedLeaderThreshold = 4
)

// boilerplateMarkers identify non-content pages: tables of contents,
// bibliographies and indexes, in English and Thai.
var boilerplateMarkers = []string{
	"table of contents",
	"bibliography",
	"references",
	"index of",
	"สารบัญ",
	"บรรณานุกรม",
	"เอกสารอ้างอิง",
}

// RetrieveOptions control a single retrieval pass.
type RetrieveOptions struct {
	// AdaptiveK widens the requested count when page filtering drops results
	// below the request.
	AdaptiveK bool
	// FilterPages discards chunks from known non-content pages.
	FilterPages bool
	// ThaiBias merges in a second search restricted to the Thai standards
	// source, for Thailand-specific queries.
	ThaiBias bool
}

// Retriever turns a free-text query into a ranked, deduplicated sequence of
// chunks from the vector store.
type Retriever struct {
	embedder   llm.Embedder
	store      vectorstore.VectorStore
	thaiSource string
}

// NewRetriever creates a new Retriever. thaiSource is the file name of the
// Thai standards document used by the Thai-biased retrieval variant.
func NewRetriever(embedder llm.Embedder, store vectorstore.VectorStore, thaiSource string) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		thaiSource: thaiSource,
	}
}

// Retrieve embeds the query and returns up to k chunks, nearest-first.
// An empty result signals "no relevant content", not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, opts RetrieveOptions) ([]vectorstore.SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	queryVector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, wrapExternal(err, "failed to embed query")
	}

	results, err := r.store.Search(ctx, queryVector, k, nil)
	if err != nil {
		return nil, wrapExternal(err, "failed to search vector store")
	}

	if opts.FilterPages {
		filtered := filterBoilerplate(results)
		dropped := len(results) - len(filtered)

		// Filtering consumed part of the budget; re-query wider and filter
		// again so low-value pages don't shrink the context window.
		if opts.AdaptiveK && dropped > 0 && len(filtered) < k && len(results) == k {
			widenedK := k * 2
			if widenedK > maxAdaptiveK {
				widenedK = maxAdaptiveK
			}
			logger.InfoContext(ctx, "widening retrieval", "k", k, "widened_k", widenedK, "dropped", dropped)

			widened, err := r.store.Search(ctx, queryVector, widenedK, nil)
			if err != nil {
				return nil, wrapExternal(err, "failed to widen vector search")
			}
			filtered = filterBoilerplate(widened)
		}
		results = filtered
	}

	if opts.ThaiBias && r.thaiSource != "" {
		thaiResults, err := r.store.Search(ctx, queryVector, k, map[string]string{"source": r.thaiSource})
		if err != nil {
			return nil, wrapExternal(err, "failed to search Thai source")
		}
		if opts.FilterPages {
			thaiResults = filterBoilerplate(thaiResults)
		}
		results = mergeResults(results, thaiResults)
	}

	if len(results) > k {
		results = results[:k]
	}

	logger.InfoContext(ctx, "retrieval completed", "k", k, "results", len(results))
	return results, nil
}

// mergeResults combines two result sets, deduplicating by chunk ID and
// reordering by score, highest first.
func mergeResults(a, b []vectorstore.SearchResult) []vectorstore.SearchResult {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]vectorstore.SearchResult, 0, len(a)+len(b))
	for _, result := range append(a, b...) {
		if seen[result.Chunk.ID] {
			continue
		}
		seen[result.Chunk.ID] = true
		merged = append(merged, result)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// filterBoilerplate discards chunks that look like non-content pages.
func filterBoilerplate(results []vectorstore.SearchResult) []vectorstore.SearchResult {
	filtered := make([]vectorstore.SearchResult, 0, len(results))
	for _, result := range results {
		if isBoilerplatePage(result.Chunk.Content) {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}

// isBoilerplatePage reports whether chunk content looks like a TOC,
// bibliography or index page rather than body text.
func isBoilerplatePage(content string) bool {
	head := content
	if runes := []rune(head); len(runes) > boilerplateHeadRunes {
		head = string(runes[:boilerplateHeadRunes])
	}
	head = strings.ToLower(head)

	for _, marker := range boilerplateMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}

	// Rows of dotted leaders ("Introduction ........ 3") betray a TOC page
	// even when the heading itself was lost to OCR.
	return strings.Count(content, "....") >= dottedLeaderThreshold
}
