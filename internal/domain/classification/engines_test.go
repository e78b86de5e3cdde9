package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalRatio(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 1.0, LexicalRatio("provider shall submit claims", "provider shall submit claims"))
		assert.Equal(t, 1.0, LexicalRatio("", ""))
	})

	t.Run("empty_vs_nonempty", func(t *testing.T) {
		assert.Equal(t, 0.0, LexicalRatio("", "abc"))
		assert.Equal(t, 0.0, LexicalRatio("abc", ""))
	})

	t.Run("known_value", func(t *testing.T) {
		// LCS("abcd","bcde") = "bcd", ratio = 2*3/8.
		assert.InDelta(t, 0.75, LexicalRatio("abcd", "bcde"), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "timely filing of claims", "filing claims in a timely manner"
		assert.InDelta(t, LexicalRatio(a, b), LexicalRatio(b, a), 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "zzzz"},
			{"provider", "member"},
			{"one hundred twenty days", "ninety days"},
		}
		for _, p := range pairs {
			r := LexicalRatio(p[0], p[1])
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	})
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}
