// Package clause holds the text primitives shared by template loading and
// classification: whitespace/matching normalization, placeholder
// canonicalisation, exception-token detection, and clause segmentation.
// Everything here is pure and deterministic; no I/O, no model calls.
package clause

import (
	"regexp"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Exception tokens
// ─────────────────────────────────────────────────────────────────────────────

// ExceptionTokens are the conditional markers whose presence in a contract
// clause (when the paired template lacks them) signals an added condition.
// Matching is plain lowercase substring containment, so "however," keeps its
// trailing comma to avoid firing on "however" used as a plain connective.
var ExceptionTokens = []string{
	"except", "unless", "provided that",
	"subject to", "however,", "save that",
	"notwithstanding", "only if",
}

// ContainsExceptionTokens reports whether text carries an exception token the
// template does not.  When templateHasException is true the template itself
// is conditional and clause-side tokens are not a deviation.
func ContainsExceptionTokens(text string, templateHasException bool) bool {
	if templateHasException {
		return false
	}
	lower := strings.ToLower(NormalizeWhitespace(text))
	for _, tok := range ExceptionTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Normalization
// ─────────────────────────────────────────────────────────────────────────────

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	nonWordRe      = regexp.MustCompile(`[^\w\s%$-]`)
	bareNumberRe   = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	sectionRefRe   = regexp.MustCompile(`\b\d+(\.\d+)+\b`)
	numPercentRe   = regexp.MustCompile(`(?i)(\d+)\s*percent`)
	wordPercentRe  = regexp.MustCompile(`(?i)\b([a-z][a-z\s-]*)\s+percent\b`)
	comparePunctRe = regexp.MustCompile("[!\"#$&'()*+,\\-./:;<=>?@\\[\\\\\\]^_`{|}~]")
)

// NormalizeWhitespace collapses runs of whitespace to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeForMatching lowercases, strips punctuation, and canonicalises
// numbers so that lexical comparison ignores formatting noise.  Dotted
// section references (e.g. "3.1") become SECTION before punctuation is
// removed, remaining bare numbers become NUM; the percent sign survives so
// rate language stays distinguishable.
func NormalizeForMatching(s string) string {
	s = strings.ToLower(NormalizeWhitespace(s))
	s = sectionRefRe.ReplaceAllString(s, "SECTION")
	s = nonWordRe.ReplaceAllString(s, " ")
	s = replaceBareNumbers(s)
	return NormalizeWhitespace(s)
}

// replaceBareNumbers substitutes NUM for numbers not followed by a percent
// sign.  Go's regexp has no lookahead, so the percent guard is done by
// inspecting the byte after each match.
func replaceBareNumbers(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range bareNumberRe.FindAllStringIndex(s, -1) {
		if loc[1] < len(s) && s[loc[1]] == '%' {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString("NUM")
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// NormalizeForCompare applies placeholder canonicalisation, strips all
// punctuation except the percent sign, and lowercases.  Used by the
// placeholder-substitution gate, where two texts should collide iff they
// differ only in substituted values.
func NormalizeForCompare(s string) string {
	s = ApplyPlaceholders(s)
	s = comparePunctRe.ReplaceAllString(s, "")
	return strings.ToLower(NormalizeWhitespace(s))
}
