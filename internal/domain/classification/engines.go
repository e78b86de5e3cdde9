package classification

import (
	"context"
	"math"
)

// SemanticScorer produces an embedding-cosine similarity in [-1, 1] for a
// pair of texts.  Implementations call an external encoder; an error marks
// the engine unavailable for this comparison and the cascade records the
// semantic stages as skipped rather than defaulting a score.
type SemanticScorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// EntailmentScorer produces the probability in [0, 1] that the premise
// entails the hypothesis, via an external cross-encoder.
type EntailmentScorer interface {
	EntailmentProbability(ctx context.Context, premise, hypothesis string) (float64, error)
}

// LexicalRatio computes normalized indel similarity between two strings in
// [0, 1]: the proportion of characters participating in a longest common
// subsequence.  Equivalent to the classic fuzzy "ratio" metric.  Two empty
// strings are identical by convention.
func LexicalRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0.0
	}
	lcs := lcsLength(ra, rb)
	return float64(2*lcs) / float64(la+lb)
}

// lcsLength computes the longest-common-subsequence length with a two-row DP
// over the shorter string.
func lcsLength(a, b []rune) int {
	if len(b) > len(a) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Cosine computes cosine similarity between two equal-length vectors.
// Returns 0 for mismatched lengths or zero-magnitude inputs.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
