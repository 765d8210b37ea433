package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// CleanupRule is a single regex substitution applied to extracted text.
// Rules run in declaration order.
type CleanupRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// Replacement is a literal string substitution, used for known OCR misreads.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// cleanupConfig is the on-disk format for cleanup rule overrides.
type cleanupConfig struct {
	Rules        []CleanupRule `yaml:"rules"`
	Replacements []Replacement `yaml:"replacements"`
}

// defaultRules target the OCR text of Royal Gazette publications: source
// tags, page headers and footers, and the gazette masthead line.
var defaultRules = []CleanupRule{
	{Name: "source tags", Pattern: `\[[^\]]*\]`, Replace: ""},
	{Name: "page references", Pattern: `หน้า\s+[๐-๙0-9]+`, Replace: ""},
	{Name: "gazette masthead", Pattern: `(?s)เล่ม\s+[๐-๙0-9]+.*?ราชกิจจานุเบกษา.*?[\r\n]+`, Replace: ""},
	{Name: "centered page numbers", Pattern: `-\s*[\w\p{Thai}]+\s*-`, Replace: ""},
}

// defaultReplacements fix recurring OCR misreads in the Thai standards
// corpus. "we." is a misread of "พ.ศ."; the broken year forms are misreads
// of the Buddhist-era years 2562 and 2565.
var defaultReplacements = []Replacement{
	{From: "we.", To: "พ.ศ."},
	{From: "๒๕๒๐๒", To: "๒๕๖๒"},
	{From: "๒๕๒๐๕", To: "๒๕๖๕"},
}

// thaiDigits maps Thai numerals to their Arabic equivalents.
var thaiDigits = map[rune]rune{
	'๐': '0', '๑': '1', '๒': '2', '๓': '3', '๔': '4',
	'๕': '5', '๖': '6', '๗': '7', '๘': '8', '๙': '9',
}

type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

// Cleaner normalizes extracted page text before chunking. Thai government
// OCR output gets the full rule set; other text only gets whitespace
// normalization.
type Cleaner struct {
	rules        []compiledRule
	replacements []Replacement
}

// NewCleaner creates a Cleaner with the built-in rule set.
func NewCleaner() *Cleaner {
	cleaner, err := newCleaner(defaultRules, defaultReplacements)
	if err != nil {
		// Built-in patterns are compile-time constants; this cannot happen
		// unless one of them is edited into invalidity.
		panic(err)
	}
	return cleaner
}

// LoadCleaner reads a YAML rules file and returns a Cleaner using those rules.
// An empty path returns the built-in rule set.
func LoadCleaner(path string) (*Cleaner, error) {
	if path == "" {
		return NewCleaner(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cleanup rules %s: %w", path, err)
	}

	var cfg cleanupConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse cleanup rules %s: %w", path, err)
	}

	rules := cfg.Rules
	if rules == nil {
		rules = defaultRules
	}
	replacements := cfg.Replacements
	if replacements == nil {
		replacements = defaultReplacements
	}

	return newCleaner(rules, replacements)
}

func newCleaner(rules []CleanupRule, replacements []Replacement) (*Cleaner, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid cleanup rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{re: re, replace: rule.Replace})
	}
	return &Cleaner{rules: compiled, replacements: replacements}, nil
}

// Clean normalizes extracted text. The OCR rule set only applies to text
// containing Thai script; everything else gets whitespace normalization.
func (c *Cleaner) Clean(text string) string {
	if !containsThai(text) {
		return normalizeWhitespace(text)
	}

	for _, rule := range c.rules {
		text = rule.re.ReplaceAllString(text, rule.replace)
	}
	for _, replacement := range c.replacements {
		text = strings.ReplaceAll(text, replacement.From, replacement.To)
	}
	text = translateThaiDigits(text)

	return normalizeWhitespace(text)
}

// translateThaiDigits converts Thai numerals to Arabic digits so page and
// year references match across queries.
func translateThaiDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if arabic, ok := thaiDigits[r]; ok {
			return arabic
		}
		return r
	}, text)
}

func containsThai(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Thai, r) {
			return true
		}
	}
	return false
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
