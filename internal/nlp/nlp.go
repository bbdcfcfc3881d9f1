// Package nlp defines the external extraction capabilities the scoring
// pipeline consumes, and the adapters that implement them: local prose
// models, OpenAI-backed models and remote inference servers. Adapters are
// stateless after construction and safe for concurrent use.
package nlp

import (
	"context"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// Segmenter splits raw text into trimmed, ordered sentences.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]model.Sentence, error)
}

// EntityTagger extracts named-entity mentions per sentence. The returned
// slice is parallel to the input: one mention list per sentence, possibly
// empty.
type EntityTagger interface {
	Tag(ctx context.Context, sentences []model.Sentence) ([][]model.Entity, error)
}

// RelationExtractor classifies the relation between the two marked entity
// spans of each candidate and returns the resulting triples. Duplicate
// triples may be returned; callers deduplicate via set semantics.
type RelationExtractor interface {
	Extract(ctx context.Context, candidates []model.Candidate) ([]model.Triple, error)
}

// QuestionGenerator produces questions grounded in the given sentences and
// their entity mentions, one ordered list for the whole document.
type QuestionGenerator interface {
	Generate(ctx context.Context, sentences []model.Sentence, entities [][]model.Entity) ([]string, error)
}

// QuestionAnswerer answers each question against the full context text and
// returns predictions in question order.
type QuestionAnswerer interface {
	Answer(ctx context.Context, contextText string, questions []string) ([]model.QA, error)
}

// TripleExtractor extracts open-domain (subject, relation, object) triples
// directly from raw text, without entity conditioning.
type TripleExtractor interface {
	Triples(ctx context.Context, text string) ([]model.Triple, error)
}

// Embedder turns a batch of text snippets into dense vectors, one vector
// per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
