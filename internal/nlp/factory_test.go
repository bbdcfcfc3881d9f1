package nlp

import (
	"strings"
	"testing"

	"github.com/aic-factcheck/factsumm/internal/model"
)

func TestLoadSegmenterNames(t *testing.T) {
	cfg := model.DefaultConfig()

	if _, err := LoadSegmenter("prose", "cpu", cfg); err != nil {
		t.Errorf("prose segmenter should load: %v", err)
	}
	if _, err := LoadSegmenter("rule", "cpu", cfg); err != nil {
		t.Errorf("rule segmenter should load: %v", err)
	}
	if _, err := LoadSegmenter("http://localhost:8080", "cuda", cfg); err != nil {
		t.Errorf("server segmenter should load: %v", err)
	}
	if _, err := LoadSegmenter("bogus", "cpu", cfg); err == nil {
		t.Error("unknown segmenter name should fail")
	}
}

func TestLoadEntityTaggerNames(t *testing.T) {
	cfg := model.DefaultConfig()

	if _, err := LoadEntityTagger("prose", "cpu", cfg); err != nil {
		t.Errorf("prose tagger should load: %v", err)
	}
	if _, err := LoadEntityTagger("rule", "cpu", cfg); err == nil {
		t.Error("rule is not a tagger")
	}
}

func TestLoadOpenAIAdaptersRequireKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.OpenAI.APIKey = ""

	if _, err := LoadRelationExtractor("openai/gpt-4o-mini", "cpu", cfg); err == nil {
		t.Error("openai relation extractor should fail without an API key")
	}
	if _, err := LoadEmbedder("openai/text-embedding-3-small", "cpu", cfg); err == nil {
		t.Error("openai embedder should fail without an API key")
	}
}

func TestLoadOpenAIAdaptersWithKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.OpenAI.APIKey = "test-key"

	if _, err := LoadRelationExtractor("openai/gpt-4o-mini", "cpu", cfg); err != nil {
		t.Errorf("openai relation extractor should load: %v", err)
	}
	if _, err := LoadQuestionGenerator("openai/gpt-4o-mini", "cpu", cfg); err != nil {
		t.Errorf("openai question generator should load: %v", err)
	}
	if _, err := LoadQuestionAnswerer("openai/gpt-4o-mini", "cpu", cfg); err != nil {
		t.Errorf("openai question answerer should load: %v", err)
	}
	if _, err := LoadTripleExtractor("openai/gpt-4o-mini", cfg); err != nil {
		t.Errorf("openai triple extractor should load: %v", err)
	}
	if _, err := LoadEmbedder("openai/text-embedding-3-small", "cpu", cfg); err != nil {
		t.Errorf("openai embedder should load: %v", err)
	}
}

func TestLoadErrorsNameSupportedForms(t *testing.T) {
	cfg := model.DefaultConfig()

	_, err := LoadRelationExtractor("bogus", "cpu", cfg)
	if err == nil {
		t.Fatal("unknown RE adapter should fail")
	}
	if !strings.Contains(err.Error(), "openai/<model>") {
		t.Errorf("error should name the supported forms, got %q", err.Error())
	}
}
