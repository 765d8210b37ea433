package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks cyberdocs-rag/internal/rag Engine

import (
	"context"
	"strings"

	"cyberdocs-rag/internal/contextutil"
	"cyberdocs-rag/internal/llm"
	"cyberdocs-rag/internal/vectorstore"
)

const (
	// defaultK is the chunk count used when the request leaves K unset.
	defaultK = 8
	// maxK bounds user-provided K.
	maxK = 20
)

// Fixed user-facing messages for the two non-error short circuits.
const (
	emptyQuestionMessage = "Please enter a question."
	noResultsMessage     = "No relevant documents found. Try:\n" +
		"- Increasing number of documents (k slider)\n" +
		"- Enabling multilingual retrieval\n" +
		"- Rephrasing your question"
	noSourcesMessage = "No sources retrieved"
)

// Engine answers questions over the indexed corpus with citation-grounded
// retrieval-augmented generation.
type Engine interface {
	// Ask answers a question by retrieving relevant chunks, prompting the
	// model with them, and cross-checking the citations in the answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	retriever *Retriever
	generator llm.Generator
}

// NewEngine creates a new RAG engine.
func NewEngine(retriever *Retriever, generator llm.Generator) Engine {
	return &ragEngine{
		retriever: retriever,
		generator: generator,
	}
}

// Ask runs the full pipeline: classify, retrieve, build prompt, generate,
// extract citations, format sources. Blank questions and empty retrievals
// short-circuit with fixed guidance messages before any provider call that
// would otherwise follow.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return AskResponse{Answer: emptyQuestionMessage}, nil
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	language := req.Language
	if language == "" || language == "auto" {
		language = DetectLanguage(req.Question)
	}

	opts := RetrieveOptions{
		AdaptiveK:   true,
		FilterPages: req.FilterPages,
		ThaiBias:    req.Multilingual && IsThaiRelated(req.Question),
	}

	logger.InfoContext(ctx, "RAG query started",
		"question", req.Question,
		"k", k,
		"language", language,
		"thai_bias", opts.ThaiBias,
		"filter_pages", opts.FilterPages,
	)

	results, err := e.retriever.Retrieve(ctx, req.Question, k, opts)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return AskResponse{}, err
	}

	if len(results) == 0 {
		logger.InfoContext(ctx, "no relevant chunks found", "question", req.Question)
		return AskResponse{
			Answer:     noResultsMessage,
			Sources:    noSourcesMessage,
			References: []Reference{},
			Citations:  []Citation{},
			Language:   language,
		}, nil
	}

	chunks := make([]vectorstore.Chunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, result.Chunk)
	}

	prompt := BuildPrompt(req.Question, chunks, language)
	logger.DebugContext(ctx, "prompt built", "prompt_length", len(prompt), "chunks", len(chunks))

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return AskResponse{}, wrapExternal(err, "failed to generate answer")
	}

	citations := CrossCheckCitations(ExtractCitations(answer), chunks)
	sources := FormatSources(results, citations)

	references := make([]Reference, 0, len(results))
	for _, result := range results {
		references = append(references, Reference{
			Source:  sourceBasename(result.Chunk.Source),
			Page:    result.Chunk.Page,
			Score:   result.Score,
			Preview: previewText(result.Chunk.Content),
		})
	}

	resp := AskResponse{
		Answer:     answer,
		Sources:    sources,
		References: references,
		Citations:  citations,
		Language:   language,
	}
	if len(citations) == 0 {
		resp.Warning = ungroundedWarning
	}

	logger.InfoContext(ctx, "RAG query completed",
		"chunks_used", len(chunks),
		"answer_length", len(answer),
		"citations", len(citations),
	)
	return resp, nil
}
