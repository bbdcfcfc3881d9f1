package metric

import (
	"testing"

	"github.com/aic-factcheck/factsumm/internal/model"
)

func sentences(texts ...string) []model.Sentence {
	out := make([]model.Sentence, len(texts))
	for i, text := range texts {
		out[i] = model.Sentence{Position: i + 1, Text: text}
	}
	return out
}

func TestRouge_IdenticalText(t *testing.T) {
	r := NewRouge()
	text := "Paris holds two million residents"

	if got := r.N(text, sentences(text), 1); got != 1.0 {
		t.Errorf("expected ROUGE-1 of 1.0 for identical text, got %v", got)
	}
	if got := r.N(text, sentences(text), 2); got != 1.0 {
		t.Errorf("expected ROUGE-2 of 1.0 for identical text, got %v", got)
	}
	if got := r.L(text, sentences(text)); got != 1.0 {
		t.Errorf("expected ROUGE-L of 1.0 for identical text, got %v", got)
	}
}

func TestRouge_NoOverlap(t *testing.T) {
	r := NewRouge()

	refs := sentences("quantum computers factor integers")
	if got := r.N("weather sunny today", refs, 1); got != 0.0 {
		t.Errorf("expected 0.0 for disjoint vocabularies, got %v", got)
	}
	if got := r.L("weather sunny today", refs); got != 0.0 {
		t.Errorf("expected ROUGE-L of 0.0 for disjoint vocabularies, got %v", got)
	}
}

func TestRouge_MaxOverReferences(t *testing.T) {
	r := NewRouge()

	refs := sentences(
		"completely unrelated sentence about astronomy",
		"Paris holds two million residents",
	)
	// The second reference matches perfectly; multi-reference ROUGE takes
	// the best reference, not a dilution over all of them.
	if got := r.N("Paris holds two million residents", refs, 1); got != 1.0 {
		t.Errorf("expected best-reference score of 1.0, got %v", got)
	}
}

func TestRouge_StopwordsIgnored(t *testing.T) {
	r := NewRouge()

	refs := sentences("capital city")
	if got := r.N("the capital of city", refs, 1); got != 1.0 {
		t.Errorf("expected stopwords to be dropped before matching, got %v", got)
	}
}

func TestRouge_EmptyInputs(t *testing.T) {
	r := NewRouge()

	if got := r.N("", sentences("something"), 1); got != 0.0 {
		t.Errorf("expected 0.0 for empty summary, got %v", got)
	}
	if got := r.N("something", nil, 1); got != 0.0 {
		t.Errorf("expected 0.0 for no references, got %v", got)
	}
	if got := r.L("", nil); got != 0.0 {
		t.Errorf("expected ROUGE-L of 0.0 for empty inputs, got %v", got)
	}
}

func TestLCSLength(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, 3},
		{[]string{"a", "b", "c"}, []string{"a", "x", "c"}, 2},
		{[]string{"a", "b"}, []string{"c", "d"}, 0},
		{[]string{"a", "c", "b", "d"}, []string{"a", "b", "c", "d"}, 3},
	}
	for _, tt := range tests {
		if got := lcsLength(tt.a, tt.b); got != tt.want {
			t.Errorf("lcsLength(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
