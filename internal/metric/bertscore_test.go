package metric

import (
	"context"
	"math"
	"testing"
)

// fakeEmbedder returns a fixed vector per known token and an orthogonal
// fallback for everything else.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 0, 1}
		}
	}
	return out, nil
}

func TestBERTScorer_IdenticalTokens(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"paris":   {1, 0, 0, 0},
		"capital": {0, 1, 0, 0},
		"france":  {0, 0, 1, 0},
	}}
	scorer := NewBERTScorer(emb)

	p, r, f1, err := scorer.ScoreLines(context.Background(),
		[]string{"Paris capital France"},
		sentences("Paris capital France"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, vals := range map[string][]float64{"precision": p, "recall": r, "f1": f1} {
		if len(vals) != 1 {
			t.Fatalf("%s: expected one score per candidate line, got %d", name, len(vals))
		}
		if math.Abs(vals[0]-1.0) > 1e-6 {
			t.Errorf("%s: expected 1.0 for identical token sets, got %v", name, vals[0])
		}
	}
}

func TestBERTScorer_PrecisionRecallAsymmetry(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"paris":   {1, 0, 0, 0},
		"capital": {0, 1, 0, 0},
		"france":  {0, 0, 1, 0},
		"rome":    {0.1, 0, 0, 0.9},
	}}
	scorer := NewBERTScorer(emb)

	// Candidate covers part of a larger source: precision should exceed
	// recall because every candidate token has a perfect match but some
	// source tokens do not.
	p, r, _, err := scorer.ScoreLines(context.Background(),
		[]string{"Paris capital"},
		sentences("Paris capital France Rome"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p[0] <= r[0] {
		t.Errorf("expected precision (%v) > recall (%v)", p[0], r[0])
	}
}

func TestBERTScorer_PerLineScores(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"paris": {1, 0, 0, 0},
	}}
	scorer := NewBERTScorer(emb)

	// Two candidate lines, as in the padded single-summary case: the caller
	// is responsible for dropping the padding line's scores.
	p, r, f1, err := scorer.ScoreLines(context.Background(),
		[]string{"Paris", "dummy"},
		sentences("Paris"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 2 || len(r) != 2 || len(f1) != 2 {
		t.Fatalf("expected 2 scores per component, got %d/%d/%d", len(p), len(r), len(f1))
	}
	if math.Abs(f1[0]-1.0) > 1e-6 {
		t.Errorf("expected real line to score 1.0, got %v", f1[0])
	}
}

func TestBERTScorer_EmptyCandidate(t *testing.T) {
	scorer := NewBERTScorer(&fakeEmbedder{})

	p, r, f1, err := scorer.ScoreLines(context.Background(), []string{""}, sentences("Paris"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p[0] != 0 || r[0] != 0 || f1[0] != 0 {
		t.Errorf("expected zero scores for empty candidate, got %v/%v/%v", p[0], r[0], f1[0])
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected 1.0, got %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0.0 {
		t.Errorf("expected 0.0 for orthogonal vectors, got %v", got)
	}
	if got := cosine([]float32{0, 0}, []float32{1, 0}); got != 0.0 {
		t.Errorf("expected 0.0 for zero vector, got %v", got)
	}
}
