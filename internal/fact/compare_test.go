package fact

import (
	"testing"

	"github.com/aic-factcheck/factsumm/internal/model"
)

func triple(h, r, tl string) model.Triple {
	return model.Triple{Head: h, Relation: r, Tail: tl}
}

func setsEqual(a, b TripleSet) bool {
	if a.Len() != b.Len() {
		return false
	}
	for t := range a {
		if !b.Has(t) {
			return false
		}
	}
	return true
}

func TestFilterComparable_KeepsSharedPrefixes(t *testing.T) {
	source := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "population", "2 million"),
	)
	summary := NewTripleSet(
		triple("Paris", "capital_of", "France"),
	)

	fs, fm := FilterComparable(source, summary)

	if !fs.Has(triple("Paris", "capital_of", "France")) {
		t.Error("source triple with shared prefix should survive the filter")
	}
	if fs.Has(triple("Paris", "population", "2 million")) {
		t.Error("source triple without a summary-side prefix should be discarded")
	}
	if fm.Len() != 1 {
		t.Errorf("expected 1 filtered summary triple, got %d", fm.Len())
	}
}

func TestFilterComparable_TailMayDiffer(t *testing.T) {
	// Extractors may phrase the object differently; the filter only
	// requires the (head, relation) prefix to match.
	source := NewTripleSet(triple("Paris", "capital_of", "France"))
	summary := NewTripleSet(triple("Paris", "capital_of", "the French Republic"))

	fs, fm := FilterComparable(source, summary)
	if fs.Len() != 1 || fm.Len() != 1 {
		t.Errorf("expected both sides retained, got %d source and %d summary", fs.Len(), fm.Len())
	}
}

func TestFilterComparable_Symmetric(t *testing.T) {
	a := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Seine", "flows_through", "Paris"),
		triple("Louvre", "located_in", "Paris"),
	)
	b := NewTripleSet(
		triple("Paris", "capital_of", "Germany"),
		triple("Louvre", "located_in", "Paris"),
		triple("Rhine", "flows_through", "Germany"),
	)

	fa1, fb1 := FilterComparable(a, b)
	fb2, fa2 := FilterComparable(b, a)

	if !setsEqual(fa1, fa2) || !setsEqual(fb1, fb2) {
		t.Error("filter(A,B) must equal swap(filter(B,A))")
	}
}

func TestScore_EmptySummarySideIsZero(t *testing.T) {
	source := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "population", "2 million"),
	)

	if got := Score(source, NewTripleSet()); got != 0.0 {
		t.Errorf("expected exactly 0.0 for empty summary side, got %v", got)
	}

	// No shared prefixes at all: the filtered summary side ends up empty,
	// so the guard applies regardless of the source content.
	summary := NewTripleSet(triple("Berlin", "capital_of", "Germany"))
	if got := Score(source, summary); got != 0.0 {
		t.Errorf("expected exactly 0.0 when nothing is comparable, got %v", got)
	}
}

func TestScore_SubsetIsOne(t *testing.T) {
	source := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "population", "2 million"),
	)
	summary := NewTripleSet(triple("Paris", "capital_of", "France"))

	if got := Score(source, summary); got != 1.0 {
		t.Errorf("expected 1.0 when summary facts are a subset of source facts, got %v", got)
	}
}

func TestScore_Ratio(t *testing.T) {
	source := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "population", "2 million"),
	)
	summary := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "population", "3 million"), // comparable but contradicted
	)

	if got := Score(source, summary); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestScore_IncomparableTripleNotCountedAsContradiction(t *testing.T) {
	// A summary triple with no (head, relation) counterpart in the source
	// is filtered out entirely: it neither counts as a contradiction nor
	// appears in the denominator.
	source := NewTripleSet(triple("Paris", "capital_of", "France"))
	summary := NewTripleSet(
		triple("Paris", "capital_of", "France"),
		triple("Paris", "twinned_with", "Rome"),
	)

	if got := Score(source, summary); got != 1.0 {
		t.Errorf("expected 1.0 after discarding the incomparable triple, got %v", got)
	}
}

func TestTripleSet_SetSemantics(t *testing.T) {
	s := NewTripleSet(
		triple("a", "b", "c"),
		triple("a", "b", "c"),
		triple("x", "y", "z"),
	)
	if s.Len() != 2 {
		t.Errorf("expected duplicates collapsed to 2 triples, got %d", s.Len())
	}

	list := s.List()
	if len(list) != 2 || list[0] != triple("a", "b", "c") || list[1] != triple("x", "y", "z") {
		t.Errorf("expected deterministic sorted order, got %v", list)
	}
}

func TestTripleSet_IntersectDiff(t *testing.T) {
	a := NewTripleSet(triple("a", "b", "c"), triple("d", "e", "f"))
	b := NewTripleSet(triple("a", "b", "c"), triple("g", "h", "i"))

	if got := a.Intersect(b); got.Len() != 1 || !got.Has(triple("a", "b", "c")) {
		t.Errorf("unexpected intersection: %v", got.List())
	}
	if got := a.Diff(b); got.Len() != 1 || !got.Has(triple("d", "e", "f")) {
		t.Errorf("unexpected difference: %v", got.List())
	}
}
