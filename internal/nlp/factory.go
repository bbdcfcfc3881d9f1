package nlp

import (
	"fmt"
	"strings"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// Adapter names resolve in three forms:
//
//	"prose"            local prose model (segmenter, tagger)
//	"rule"             rule-based segmenter
//	"openai/<model>"   OpenAI-backed adapter using the named model
//	"http(s)://host"   remote inference server
//
// The device hint is honored where the backend supports it: it is
// forwarded to inference servers and ignored by local and OpenAI-backed
// adapters.

func openaiModel(name string) string {
	return strings.TrimPrefix(name, "openai/")
}

func isServer(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// LoadSegmenter resolves a segmenter by name.
func LoadSegmenter(name string, device string, cfg *model.Config) (Segmenter, error) {
	switch {
	case name == "prose":
		return NewProseSegmenter(), nil
	case name == "rule":
		return NewRuleSegmenter(), nil
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q (supported: prose, rule, http URL)", name)
	}
}

// LoadEntityTagger resolves an entity tagger by name.
func LoadEntityTagger(name string, device string, cfg *model.Config) (EntityTagger, error) {
	switch {
	case name == "prose":
		return NewProseTagger(), nil
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown NER adapter %q (supported: prose, http URL)", name)
	}
}

// LoadRelationExtractor resolves a relation extractor by name.
func LoadRelationExtractor(name string, device string, cfg *model.Config) (RelationExtractor, error) {
	switch {
	case strings.HasPrefix(name, "openai/"):
		return NewLLMRelationExtractor(openaiModel(name), cfg.OpenAI)
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown RE adapter %q (supported: openai/<model>, http URL)", name)
	}
}

// LoadQuestionGenerator resolves a question generator by name.
func LoadQuestionGenerator(name string, device string, cfg *model.Config) (QuestionGenerator, error) {
	switch {
	case strings.HasPrefix(name, "openai/"):
		return NewLLMQuestionGenerator(openaiModel(name), cfg.OpenAI)
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown QG adapter %q (supported: openai/<model>, http URL)", name)
	}
}

// LoadQuestionAnswerer resolves a question answerer by name.
func LoadQuestionAnswerer(name string, device string, cfg *model.Config) (QuestionAnswerer, error) {
	switch {
	case strings.HasPrefix(name, "openai/"):
		return NewLLMQuestionAnswerer(openaiModel(name), cfg.OpenAI)
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown QA adapter %q (supported: openai/<model>, http URL)", name)
	}
}

// LoadTripleExtractor resolves an open-triple extractor by name. The open
// extractor is device independent by contract, so no device hint is taken.
func LoadTripleExtractor(name string, cfg *model.Config) (TripleExtractor, error) {
	switch {
	case strings.HasPrefix(name, "openai/"):
		return NewLLMTripleExtractor(openaiModel(name), cfg.OpenAI)
	case isServer(name):
		return NewServerClient(name, "", cfg), nil
	default:
		return nil, fmt.Errorf("unknown OpenIE adapter %q (supported: openai/<model>, http URL)", name)
	}
}

// LoadEmbedder resolves an embedder by name.
func LoadEmbedder(name string, device string, cfg *model.Config) (Embedder, error) {
	switch {
	case strings.HasPrefix(name, "openai/"):
		return NewOpenAIEmbedder(openaiModel(name), cfg.OpenAI)
	case isServer(name):
		return NewServerClient(name, device, cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedder %q (supported: openai/<model>, http URL)", name)
	}
}
