package nlp

import (
	"context"
	"fmt"
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// ProseSegmenter segments text with the prose sentence tokenizer.
type ProseSegmenter struct{}

// NewProseSegmenter creates a prose-backed segmenter.
func NewProseSegmenter() *ProseSegmenter {
	return &ProseSegmenter{}
}

// Segment splits text into trimmed, 1-indexed sentences.
func (s *ProseSegmenter) Segment(ctx context.Context, text string) ([]model.Sentence, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false))
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	var sentences []model.Sentence
	for _, sent := range doc.Sentences() {
		trimmed := strings.TrimSpace(sent.Text)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, model.Sentence{
			Position: len(sentences) + 1,
			Text:     trimmed,
		})
	}
	return sentences, nil
}

// ProseTagger extracts named entities with the prose NER model.
type ProseTagger struct{}

// NewProseTagger creates a prose-backed entity tagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag returns one mention list per input sentence. Offsets are recovered
// by locating each mention text in its sentence, scanning left to right so
// repeated mentions map to consecutive occurrences.
func (t *ProseTagger) Tag(ctx context.Context, sentences []model.Sentence) ([][]model.Entity, error) {
	out := make([][]model.Entity, len(sentences))
	for i, sent := range sentences {
		doc, err := prose.NewDocument(sent.Text, prose.WithSegmentation(false))
		if err != nil {
			return nil, fmt.Errorf("tag sentence %d: %w", sent.Position, err)
		}

		var mentions []model.Entity
		cursor := 0
		for _, ent := range doc.Entities() {
			start := strings.Index(sent.Text[cursor:], ent.Text)
			if start < 0 {
				// restart from the beginning for out-of-order matches
				start = strings.Index(sent.Text, ent.Text)
				if start < 0 {
					continue
				}
			} else {
				start += cursor
			}
			end := start + len(ent.Text)
			cursor = end

			mentions = append(mentions, model.Entity{
				Text:  ent.Text,
				Label: ent.Label,
				Start: start,
				End:   end,
			})
		}
		out[i] = mentions
	}
	return out, nil
}
