package fact

import (
	"sort"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// TripleSet is a deduplicated set of fact triples. Membership uses exact
// string equality on all three fields; no normalization is applied.
type TripleSet map[model.Triple]struct{}

// NewTripleSet builds a set from the given triples, dropping duplicates.
func NewTripleSet(triples ...model.Triple) TripleSet {
	s := make(TripleSet, len(triples))
	for _, t := range triples {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts a triple.
func (s TripleSet) Add(t model.Triple) {
	s[t] = struct{}{}
}

// Has reports whether the set contains t.
func (s TripleSet) Has(t model.Triple) bool {
	_, ok := s[t]
	return ok
}

// Len returns the number of distinct triples.
func (s TripleSet) Len() int {
	return len(s)
}

// Intersect returns the triples present in both sets.
func (s TripleSet) Intersect(o TripleSet) TripleSet {
	out := make(TripleSet)
	for t := range s {
		if o.Has(t) {
			out.Add(t)
		}
	}
	return out
}

// Diff returns the triples present in s but not in o.
func (s TripleSet) Diff(o TripleSet) TripleSet {
	out := make(TripleSet)
	for t := range s {
		if !o.Has(t) {
			out.Add(t)
		}
	}
	return out
}

// List returns the triples in deterministic (head, relation, tail) order.
func (s TripleSet) List() []model.Triple {
	out := make([]model.Triple, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Head != b.Head {
			return a.Head < b.Head
		}
		if a.Relation != b.Relation {
			return a.Relation < b.Relation
		}
		return a.Tail < b.Tail
	})
	return out
}

type prefix struct {
	head     string
	relation string
}

func prefixes(s TripleSet) map[prefix]struct{} {
	out := make(map[prefix]struct{}, len(s))
	for t := range s {
		out[prefix{t.Head, t.Relation}] = struct{}{}
	}
	return out
}

// FilterComparable retains only triples whose (head, relation) prefix
// appears on the other side. The filter is symmetric: a triple with no
// counterpart prefix is discarded from both sets, so downstream
// intersection and difference are computed only over comparable triples.
// Tails are deliberately ignored here, since extractors may phrase the
// object differently.
func FilterComparable(source, summary TripleSet) (TripleSet, TripleSet) {
	sourcePrefixes := prefixes(source)
	summaryPrefixes := prefixes(summary)

	filteredSource := make(TripleSet)
	for t := range source {
		if _, ok := summaryPrefixes[prefix{t.Head, t.Relation}]; ok {
			filteredSource.Add(t)
		}
	}

	filteredSummary := make(TripleSet)
	for t := range summary {
		if _, ok := sourcePrefixes[prefix{t.Head, t.Relation}]; ok {
			filteredSummary.Add(t)
		}
	}

	return filteredSource, filteredSummary
}

// Score applies the comparability filter and returns the fraction of
// comparable summary triples corroborated by the source. The ratio is not
// symmetric. When the filtered summary side is empty the score defaults to
// exactly 0.0: that default is a division guard rather than a measurement
// of zero consistency.
func Score(source, summary TripleSet) float64 {
	filteredSource, filteredSummary := FilterComparable(source, summary)
	if filteredSummary.Len() == 0 {
		return 0.0
	}
	common := filteredSummary.Intersect(filteredSource)
	return float64(common.Len()) / float64(filteredSummary.Len())
}
