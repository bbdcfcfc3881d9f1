// Package fact turns entity mentions into relation-extraction candidates
// and compares the resulting triple sets between a source and its summary.
package fact

import "github.com/aic-factcheck/factsumm/internal/model"

// BuildCandidates expands per-sentence entity mentions into ordered pairs
// for relation extraction. A sentence with k mentions yields k*(k-1)
// candidates; sentences with fewer than two mentions yield none. Mentions
// are only ever paired within their own sentence, and each candidate
// carries the full sentence text so the extractor can use surrounding
// tokens, not just the spans.
//
// Sentences and entity lists are parallel slices; extra elements on either
// side are ignored.
func BuildCandidates(sentences []model.Sentence, entities [][]model.Entity) [][]model.Candidate {
	n := len(sentences)
	if len(entities) < n {
		n = len(entities)
	}

	out := make([][]model.Candidate, n)
	for i := 0; i < n; i++ {
		ents := entities[i]
		var perms []model.Candidate
		for a := range ents {
			for b := range ents {
				if a == b {
					continue
				}
				perms = append(perms, model.Candidate{
					Text: sentences[i].Text,
					Head: model.Span{Start: ents[a].Start, End: ents[a].End},
					Tail: model.Span{Start: ents[b].Start, End: ents[b].End},
				})
			}
		}
		out[i] = perms
	}
	return out
}

// Flatten concatenates per-sentence candidate lists in order.
func Flatten(candidates [][]model.Candidate) []model.Candidate {
	var all []model.Candidate
	for _, perms := range candidates {
		all = append(all, perms...)
	}
	return all
}
