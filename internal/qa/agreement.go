// Package qa scores the agreement between answers predicted against the
// source and against the summary for the same generated questions.
package qa

import (
	"strings"
	"unicode"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// articles dropped during answer normalization.
var articles = map[string]struct{}{"a": {}, "an": {}, "the": {}}

// normalize lowercases an answer, strips punctuation and articles, and
// returns its tokens. An unanswerable prediction normalizes to no tokens.
func normalize(answer string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(answer) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// punctuation becomes a separator
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if _, skip := articles[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// tokenF1 computes the F1 of the multiset token overlap between two
// normalized answers. Two empty answers agree perfectly; one empty answer
// against a non-empty one scores zero.
func tokenF1(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	counts := make(map[string]int, len(a))
	for _, tok := range a {
		counts[tok]++
	}

	overlap := 0
	for _, tok := range b {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}
	if overlap == 0 {
		return 0.0
	}

	precision := float64(overlap) / float64(len(b))
	recall := float64(overlap) / float64(len(a))
	return 2 * precision * recall / (precision + recall)
}

// Agreement compares two parallel answer sequences for the same questions,
// question by question, and returns the mean per-question token F1 in
// [0, 1]. Higher means more consistent. Empty input scores 0.0.
//
// The per-question comparison is normalized token F1; exact-match scoring
// was deliberately not used because extractive answerers frequently differ
// in span boundaries without disagreeing in substance.
func Agreement(sourceAnswers, summaryAnswers []model.QA) float64 {
	n := len(sourceAnswers)
	if len(summaryAnswers) < n {
		n = len(summaryAnswers)
	}
	if n == 0 {
		return 0.0
	}

	total := 0.0
	for i := 0; i < n; i++ {
		total += tokenF1(normalize(sourceAnswers[i].Prediction), normalize(summaryAnswers[i].Prediction))
	}
	return total / float64(n)
}
