package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// defaultChunkRunes is the target chunk size. Sized for a 512-token
	// embedding model with headroom for Thai script, which tokenizes densely.
	defaultChunkRunes = 1000
	// defaultOverlapRunes is the overlap carried between adjacent chunks so
	// sentences split at a boundary stay retrievable.
	defaultOverlapRunes = 100
	// minChunkRunes drops fragments too small to embed meaningfully.
	minChunkRunes = 30
)

// TextChunker splits cleaned page text into size-constrained chunks with
// overlap, preferring whitespace boundaries.
type TextChunker struct {
	maxRunes     int
	overlapRunes int
}

// NewTextChunker creates a TextChunker with the default size constraints.
func NewTextChunker() *TextChunker {
	return &TextChunker{
		maxRunes:     defaultChunkRunes,
		overlapRunes: defaultOverlapRunes,
	}
}

// Split splits text into chunks of at most maxRunes runes. Consecutive chunks
// share overlapRunes runes of context. Fragments below the minimum size are
// dropped.
func (c *TextChunker) Split(content string) []string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.maxRunes {
		if len(runes) < minChunkRunes {
			return nil
		}
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.maxRunes
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakAtWhitespace(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(chunk)) >= minChunkRunes {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}
		next := end - c.overlapRunes
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// breakAtWhitespace walks back from end to the nearest whitespace rune so
// chunks do not split words. Falls back to a hard cut when the window has no
// whitespace at all.
func breakAtWhitespace(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

// MarkdownChunker chunks markdown content by heading sections using goldmark
// AST parsing, then applies the text chunker's size constraints to each
// section.
type MarkdownChunker struct {
	parser goldmark.Markdown
	text   *TextChunker
}

// NewMarkdownChunker creates a new MarkdownChunker.
func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		text: NewTextChunker(),
	}
}

// Chunk parses markdown and returns size-constrained chunks. Each heading
// starts a new section, and the heading text is kept at the front of its
// section so retrieval sees the topic.
func (c *MarkdownChunker) Chunk(content []byte) ([]string, error) {
	if len(content) == 0 {
		return nil, nil
	}

	reader := text.NewReader(content)
	doc := c.parser.Parser().Parse(reader)

	var sections []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			flush()
			current.WriteString(nodeText(node, content))
			current.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			current.WriteString(nodeText(n, content))
			current.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				current.Write(line.Value(content))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown AST: %w", err)
	}
	flush()

	var chunks []string
	for _, section := range sections {
		chunks = append(chunks, c.text.Split(section)...)
	}
	return chunks, nil
}

// nodeText extracts the plain text of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if textNode, ok := child.(*ast.Text); ok {
			builder.Write(textNode.Segment.Value(content))
			if textNode.SoftLineBreak() || textNode.HardLineBreak() {
				builder.WriteString(" ")
			}
		}
		return ast.WalkContinue, nil
	})
	return builder.String()
}
