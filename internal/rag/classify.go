package rag

import "strings"

// thaiRatioThreshold is the fraction of Thai-block runes above which a query
// is classified as Thai.
const thaiRatioThreshold = 0.3

// thaiTopicKeywords flag a Latin-script query as Thailand-specific.
var thaiTopicKeywords = []string{
	"thailand",
	"thai",
	"ratchakitcha",
	"royal gazette",
	"etda",
	"ndid",
	"pdpa",
}

// DetectLanguage classifies a query as "th" or "en" based on the fraction of
// runes inside the Thai Unicode block (U+0E00–U+0E7F). Pure and deterministic.
func DetectLanguage(query string) string {
	var thai, total int
	for _, r := range query {
		total++
		if isThaiRune(r) {
			thai++
		}
	}
	if total == 0 {
		return "en"
	}
	if float64(thai) > float64(total)*thaiRatioThreshold {
		return "th"
	}
	return "en"
}

// IsThaiRelated reports whether a query is Thailand-specific, either by
// script or by mention of Thai regulatory terms. Used to bias retrieval
// toward the Thai standards corpus.
func IsThaiRelated(query string) bool {
	for _, r := range query {
		if isThaiRune(r) {
			return true
		}
	}

	lower := strings.ToLower(query)
	for _, keyword := range thaiTopicKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isThaiRune(r rune) bool {
	return r >= 0x0E00 && r <= 0x0E7F
}
