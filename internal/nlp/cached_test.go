package nlp

import (
	"context"
	"testing"
	"time"

	"github.com/aic-factcheck/factsumm/internal/cache"
)

// countingEmbedder records how many texts it actually embeds.
type countingEmbedder struct {
	embedded int
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.embedded += len(texts)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func TestCachedEmbedderSkipsKnownTexts(t *testing.T) {
	inner := &countingEmbedder{}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	embedder := NewCachedEmbedder(inner, store, "test-model", time.Minute)

	ctx := context.Background()

	first, err := embedder.Embed(ctx, []string{"paris", "france"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.embedded != 2 {
		t.Fatalf("expected 2 embeddings on a cold cache, got %d", inner.embedded)
	}

	second, err := embedder.Embed(ctx, []string{"paris", "france", "seine"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.embedded != 3 {
		t.Errorf("expected only the new text to be embedded, total %d", inner.embedded)
	}

	for i := range first {
		if len(second[i]) != len(first[i]) || second[i][0] != first[i][0] {
			t.Errorf("cached vector %d differs from the original", i)
		}
	}
}

func TestCachedEmbedderPreservesOrder(t *testing.T) {
	inner := &countingEmbedder{}
	store := cache.NewMemoryCache(time.Minute, time.Minute)
	embedder := NewCachedEmbedder(inner, store, "test-model", time.Minute)

	ctx := context.Background()

	// Warm one of the three texts.
	if _, err := embedder.Embed(ctx, []string{"bb"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	vecs, err := embedder.Embed(ctx, []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Errorf("vector %d: got length %f, want %f", i, vecs[i][0], want)
		}
	}
}
