package nlp

import (
	"context"
	"testing"
)

func TestRuleSegmenterSplitsSentences(t *testing.T) {
	seg := NewRuleSegmenter()

	sentences, err := seg.Segment(context.Background(), "Paris is the capital of France. It lies on the Seine! Is it large?")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	want := []string{
		"Paris is the capital of France.",
		"It lies on the Seine!",
		"Is it large?",
	}
	if len(sentences) != len(want) {
		t.Fatalf("expected %d sentences, got %d", len(want), len(sentences))
	}
	for i, sentence := range sentences {
		if sentence.Text != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, sentence.Text, want[i])
		}
		if sentence.Position != i+1 {
			t.Errorf("sentence %d: position %d, want %d", i, sentence.Position, i+1)
		}
	}
}

func TestRuleSegmenterKeepsGluedTerminators(t *testing.T) {
	seg := NewRuleSegmenter()

	sentences, err := seg.Segment(context.Background(), "Version 2.5 shipped today. It works.")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[0].Text != "Version 2.5 shipped today." {
		t.Errorf("unexpected first sentence: %q", sentences[0].Text)
	}
}

func TestRuleSegmenterHandlesNewlinesAndEmpty(t *testing.T) {
	seg := NewRuleSegmenter()

	sentences, err := seg.Segment(context.Background(), "First line.\nSecond line.")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(sentences) != 2 {
		t.Errorf("expected 2 sentences, got %d", len(sentences))
	}

	empty, err := seg.Segment(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no sentences for blank input, got %d", len(empty))
	}
}

func TestRuleSegmenterTrailingTextWithoutTerminator(t *testing.T) {
	seg := NewRuleSegmenter()

	sentences, err := seg.Segment(context.Background(), "Complete sentence. Trailing fragment")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	if sentences[1].Text != "Trailing fragment" {
		t.Errorf("unexpected trailing sentence: %q", sentences[1].Text)
	}
}
