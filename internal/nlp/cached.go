package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aic-factcheck/factsumm/internal/cache"
)

// CachedEmbedder caches embedding vectors per input text. Embedding calls
// dominate the cost of repeated scoring runs, and vectors for a given
// adapter name are stable, so misses are fetched and stored individually.
type CachedEmbedder struct {
	inner Embedder
	cache cache.Cache
	name  string
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner with a cache. The adapter name is part of
// every key so different embedding models never share entries.
func NewCachedEmbedder(inner Embedder, c cache.Cache, name string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c, name: name, ttl: ttl}
}

// Embed returns cached vectors where available and delegates the rest to
// the wrapped embedder in one batch.
func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if data, ok := e.cache.Get(e.key(text)); ok {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := e.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(vecs))
	}

	for j, vec := range vecs {
		out[missingIdx[j]] = vec
		if data, err := json.Marshal(vec); err == nil {
			_ = e.cache.Set(e.key(missing[j]), data, e.ttl)
		}
	}
	return out, nil
}

func (e *CachedEmbedder) key(text string) string {
	return cache.Key("embed:" + e.name + ":" + text)
}
