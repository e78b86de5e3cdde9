package clause

import (
	"regexp"
)

// Clause is one segmented unit of contract text, carrying both the raw form
// (used by semantic and placeholder gates) and the matching-normalized form
// (used by exact and lexical gates).
type Clause struct {
	ID       int
	Text     string
	NormText string
}

var paragraphRe = regexp.MustCompile(`\n\s*\n+`)

// Segment splits contract text into clauses: paragraphs first (blank-line
// separated), then sentence-like units within each paragraph.  A unit ends at
// '.' or ';' only when the next non-space character starts a new sentence
// (uppercase letter, digit, or opening parenthesis), so abbreviations and
// decimal section numbers do not split.  Units longer than maxLen are
// truncated; maxLen <= 0 disables truncation.  IDs are assigned sequentially
// from 1 in document order.
func Segment(text string, maxLen int) []Clause {
	var clauses []Clause
	id := 1

	for _, para := range paragraphRe.Split(text, -1) {
		para = NormalizeWhitespace(para)
		if para == "" {
			continue
		}
		for _, unit := range splitSentences(para) {
			s := NormalizeWhitespace(unit)
			if s == "" {
				continue
			}
			if maxLen > 0 && len(s) > maxLen {
				s = s[:maxLen]
			}
			clauses = append(clauses, Clause{
				ID:       id,
				Text:     s,
				NormText: NormalizeForMatching(s),
			})
			id++
		}
	}
	return clauses
}

// splitSentences breaks a paragraph after '.' or ';' followed by whitespace
// and a sentence-opening character, and after ": " boundaries.
func splitSentences(para string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(para)-1; i++ {
		c := para[i]
		if c != '.' && c != ';' && c != ':' {
			continue
		}
		j := i + 1
		for j < len(para) && (para[j] == ' ' || para[j] == '\t') {
			j++
		}
		if j == i+1 || j >= len(para) {
			continue // no whitespace after the terminator
		}
		next := para[j]
		boundary := false
		switch c {
		case '.', ';':
			boundary = (next >= 'A' && next <= 'Z') || (next >= '0' && next <= '9') || next == '('
		case ':':
			boundary = true
		}
		if boundary {
			parts = append(parts, para[start:i+1])
			start = j
			i = j - 1
		}
	}
	parts = append(parts, para[start:])
	return parts
}
