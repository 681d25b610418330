package skills

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Similarity scores how alike two skill contents are, in [0, 1].
// It is a pluggable strategy so a higher-fidelity measure (embedding
// distance, for instance) can replace the word-overlap heuristic without
// touching the pipeline.
type Similarity interface {
	Score(a, b string) float64
}

// WordOverlap is the default similarity strategy: exact normalized match or
// word-set overlap ratio |A∩B| / max(|A|, |B|).
type WordOverlap struct{}

// NewWordOverlap creates the default similarity strategy.
func NewWordOverlap() *WordOverlap {
	return &WordOverlap{}
}

// Score compares two contents. Identical normalized text scores 1.0.
func (w *WordOverlap) Score(a, b string) float64 {
	na, nb := normalizeContent(a), normalizeContent(b)
	if na == nb {
		return 1.0
	}

	ta, tb := tokenize(na), tokenize(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range ta {
		if tb[token] {
			intersection++
		}
	}

	max := len(ta)
	if len(tb) > max {
		max = len(tb)
	}

	return float64(intersection) / float64(max)
}

// normalizeContent converts text to a canonical form for comparison:
// NFKC normalization, lowercasing, and whitespace collapsing.
func normalizeContent(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)

	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		} else {
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return b.String()
}

// tokenize splits text into word tokens.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)

	var word strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else if word.Len() > 0 {
			tokens[word.String()] = true
			word.Reset()
		}
	}
	if word.Len() > 0 {
		tokens[word.String()] = true
	}

	return tokens
}
