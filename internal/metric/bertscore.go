package metric

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// Embedder turns a batch of text snippets into dense vectors. Implemented
// by the nlp adapters.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// BERTScorer computes embedding-based precision/recall/F1 between summary
// lines and source sentences using greedy token matching: every candidate
// token is matched to its most similar reference token and vice versa.
type BERTScorer struct {
	embedder Embedder
}

// NewBERTScorer creates a scorer backed by the given embedder.
func NewBERTScorer(embedder Embedder) *BERTScorer {
	return &BERTScorer{embedder: embedder}
}

func wordTokens(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ScoreLines scores each candidate line against the pooled source tokens
// and returns parallel per-line precision, recall and F1 slices. Callers
// that reach the scorer with a single candidate line are expected to pad
// the batch and drop the padding scores afterwards; see the pipeline.
func (s *BERTScorer) ScoreLines(ctx context.Context, candidates []string, sources []model.Sentence) (precision, recall, f1 []float64, err error) {
	var refTokens []string
	for _, src := range sources {
		refTokens = append(refTokens, wordTokens(src.Text)...)
	}

	refVecs, err := s.embedTokens(ctx, refTokens)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("embed source tokens: %w", err)
	}

	precision = make([]float64, len(candidates))
	recall = make([]float64, len(candidates))
	f1 = make([]float64, len(candidates))

	for i, cand := range candidates {
		candTokens := wordTokens(cand)
		candVecs, err := s.embedTokens(ctx, candTokens)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("embed candidate tokens: %w", err)
		}

		precision[i], recall[i], f1[i] = greedyMatch(candVecs, refVecs)
	}
	return precision, recall, f1, nil
}

func (s *BERTScorer) embedTokens(ctx context.Context, tokens []string) ([][]float32, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	return s.embedder.Embed(ctx, tokens)
}

// greedyMatch matches every candidate vector to its best reference vector
// (precision) and every reference vector to its best candidate vector
// (recall), then combines them harmonically.
func greedyMatch(cand, ref [][]float32) (precision, recall, f1 float64) {
	if len(cand) == 0 || len(ref) == 0 {
		return 0, 0, 0
	}

	for _, cv := range cand {
		best := 0.0
		for _, rv := range ref {
			if sim := cosine(cv, rv); sim > best {
				best = sim
			}
		}
		precision += best
	}
	precision /= float64(len(cand))

	for _, rv := range ref {
		best := 0.0
		for _, cv := range cand {
			if sim := cosine(rv, cv); sim > best {
				best = sim
			}
		}
		recall += best
	}
	recall /= float64(len(ref))

	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}
