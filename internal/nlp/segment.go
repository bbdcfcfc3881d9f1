package nlp

import (
	"context"
	"strings"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// RuleSegmenter splits text on sentence terminators. It is the dependency
// free fallback for inputs the statistical segmenter is not needed for.
type RuleSegmenter struct{}

// NewRuleSegmenter creates a rule-based segmenter.
func NewRuleSegmenter() *RuleSegmenter {
	return &RuleSegmenter{}
}

// Segment splits on '.', '!' and '?' followed by whitespace or end of
// input. Terminators inside abbreviations glued to the next word are left
// alone.
func (s *RuleSegmenter) Segment(ctx context.Context, text string) ([]model.Sentence, error) {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []model.Sentence
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, model.Sentence{
				Position: len(sentences) + 1,
				Text:     sentence,
			})
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences, nil
}
