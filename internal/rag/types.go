package rag

// AskRequest represents a RAG query request.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally specifies the desired chunk count. Zero means the default.
	K int `json:"k,omitempty"`
	// Language is the answer language preference: "en", "th", or "auto" (default).
	Language string `json:"language,omitempty"`
	// Multilingual enables the Thai-biased retrieval variant for
	// Thailand-specific questions.
	Multilingual bool `json:"multilingual,omitempty"`
	// FilterPages discards chunks from non-content pages (TOC, bibliography).
	FilterPages bool `json:"filter_pages,omitempty"`
}

// Reference describes a retrieved chunk that was offered to the model as context.
type Reference struct {
	// Source is the document file name (e.g., "owasp-top-10.pdf").
	Source string `json:"source"`
	// Page is the page number within the source, 0 when unknown.
	Page int `json:"page"`
	// Score is the vector similarity score.
	Score float32 `json:"score"`
	// Preview is a truncated excerpt of the chunk content.
	Preview string `json:"preview"`
}

// Citation is a (source, page) pair parsed out of the generated answer text.
// It is not guaranteed to reference a chunk that was actually retrieved;
// Grounded records the result of that cross-check.
type Citation struct {
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Grounded bool   `json:"grounded"`
}

// AskResponse represents the response from a RAG query.
type AskResponse struct {
	// Answer is the generated answer, or a fixed guidance message when the
	// question was blank or retrieval found nothing.
	Answer string `json:"answer"`
	// Sources is the formatted sources-and-citations block for display.
	Sources string `json:"sources"`
	// References are the chunks retrieved for the answer.
	References []Reference `json:"references"`
	// Citations are the citation markers extracted from the answer.
	Citations []Citation `json:"citations"`
	// Language is the detected question language ("en" or "th").
	Language string `json:"language,omitempty"`
	// Warning is set when the answer contains no citations and may be ungrounded.
	Warning string `json:"warning,omitempty"`
}
