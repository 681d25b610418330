package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordOverlap(t *testing.T) {
	sim := NewWordOverlap()

	t.Run("identical up to case and whitespace", func(t *testing.T) {
		assert.Equal(t, 1.0, sim.Score("Use small commits", "use SMALL commits"))
		assert.Equal(t, 1.0, sim.Score("  spaced   out  ", "spaced out"))
	})

	t.Run("partial overlap uses max denominator", func(t *testing.T) {
		// {use, small, commits} vs {use, small, commits, always}:
		// 3 shared over max(3, 4).
		score := sim.Score("use small commits", "use small commits always")
		assert.InDelta(t, 0.75, score, 1e-9)
	})

	t.Run("disjoint content scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, sim.Score("alpha beta", "gamma delta"))
		assert.Equal(t, 0.0, sim.Score("", "gamma delta"))
	})

	t.Run("punctuation does not count as words", func(t *testing.T) {
		assert.Equal(t, 1.0, sim.Score("commit, then push!", "commit then push"))
	})
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "use small commits", normalizeContent("  Use\tSMALL\n commits "))
	// NFKC folds the full-width form before comparison.
	assert.Equal(t, "abc", normalizeContent("ａｂｃ"))
}
