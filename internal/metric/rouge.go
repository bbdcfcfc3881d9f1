// Package metric implements the lexical-overlap and embedding-similarity
// scorers used by the scoring pipeline.
package metric

import (
	"strings"
	"unicode"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// english stopwords dropped before n-gram matching.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "he": {}, "her": {}, "his": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "nor": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "she": {}, "so": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "were": {}, "will": {}, "with": {},
}

// Rouge computes ROUGE-1, ROUGE-2 and ROUGE-L F1 of a summary against
// segmented source sentences. With multiple references the per-reference
// maximum is reported.
type Rouge struct {
	dropStopwords bool
}

// NewRouge creates a ROUGE calculator with stopword filtering enabled.
func NewRouge() *Rouge {
	return &Rouge{dropStopwords: true}
}

func (r *Rouge) tokenize(text string) []string {
	var b strings.Builder
	for _, ru := range strings.ToLower(text) {
		if unicode.IsLetter(ru) || unicode.IsDigit(ru) {
			b.WriteRune(ru)
		} else {
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if r.dropStopwords {
			if _, skip := stopwords[tok]; skip {
				continue
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

func overlapF1(cand, ref map[string]int, candTotal, refTotal int) float64 {
	if candTotal == 0 || refTotal == 0 {
		return 0.0
	}
	overlap := 0
	for gram, c := range cand {
		if rc, ok := ref[gram]; ok {
			if rc < c {
				overlap += rc
			} else {
				overlap += c
			}
		}
	}
	if overlap == 0 {
		return 0.0
	}
	precision := float64(overlap) / float64(candTotal)
	recall := float64(overlap) / float64(refTotal)
	return 2 * precision * recall / (precision + recall)
}

func total(counts map[string]int) int {
	t := 0
	for _, c := range counts {
		t += c
	}
	return t
}

// N computes the ROUGE-N F1 of summary against the source sentences,
// taking the maximum over references.
func (r *Rouge) N(summary string, sources []model.Sentence, n int) float64 {
	cand := r.tokenize(summary)
	candGrams := ngrams(cand, n)
	candTotal := total(candGrams)

	best := 0.0
	for _, src := range sources {
		refGrams := ngrams(r.tokenize(src.Text), n)
		if f1 := overlapF1(candGrams, refGrams, candTotal, total(refGrams)); f1 > best {
			best = f1
		}
	}
	return best
}

// L computes the ROUGE-L F1 (longest common subsequence based) of summary
// against the source sentences, taking the maximum over references.
func (r *Rouge) L(summary string, sources []model.Sentence) float64 {
	cand := r.tokenize(summary)
	if len(cand) == 0 {
		return 0.0
	}

	best := 0.0
	for _, src := range sources {
		ref := r.tokenize(src.Text)
		if len(ref) == 0 {
			continue
		}
		lcs := lcsLength(cand, ref)
		if lcs == 0 {
			continue
		}
		precision := float64(lcs) / float64(len(cand))
		recall := float64(lcs) / float64(len(ref))
		f1 := 2 * precision * recall / (precision + recall)
		if f1 > best {
			best = f1
		}
	}
	return best
}

// lcsLength computes the longest-common-subsequence length with a rolling
// single-row table.
func lcsLength(a, b []string) int {
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

// Scores computes ROUGE-1, ROUGE-2 and ROUGE-L in one call.
func (r *Rouge) Scores(summary string, sources []model.Sentence) model.RougeScore {
	return model.RougeScore{
		Rouge1: r.N(summary, sources, 1),
		Rouge2: r.N(summary, sources, 2),
		RougeL: r.L(summary, sources),
	}
}
