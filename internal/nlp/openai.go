package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// openaiClient wraps the shared OpenAI plumbing for all LLM-backed
// adapters: client construction, timeouts and JSON-mode chat calls.
type openaiClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func newOpenAIClient(modelName string, cfg model.OpenAIConfig) (*openaiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &openaiClient{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     modelName,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// chatJSON sends one chat request and unmarshals the reply into out.
// Replies wrapped in markdown code fences are unwrapped first.
func (c *openaiClient) chatJSON(ctx context.Context, system, user string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0, // extraction must be deterministic
	})
	if err != nil {
		return fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), out); err != nil {
		return fmt.Errorf("unmarshal model reply: %w", err)
	}
	return nil
}

type jsonTriple struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}

func toTriples(raw []jsonTriple) []model.Triple {
	out := make([]model.Triple, 0, len(raw))
	for _, t := range raw {
		if t.Head == "" || t.Relation == "" || t.Tail == "" {
			continue
		}
		out = append(out, model.Triple{Head: t.Head, Relation: t.Relation, Tail: t.Tail})
	}
	return out
}

// LLMRelationExtractor classifies entity-pair relations with a chat model.
type LLMRelationExtractor struct {
	c *openaiClient
}

// NewLLMRelationExtractor creates an OpenAI-backed relation extractor.
func NewLLMRelationExtractor(modelName string, cfg model.OpenAIConfig) (*LLMRelationExtractor, error) {
	c, err := newOpenAIClient(modelName, cfg)
	if err != nil {
		return nil, err
	}
	return &LLMRelationExtractor{c: c}, nil
}

const relSystem = `You extract relations between two marked entity spans in a sentence.
Given a sentence and the head and tail spans, reply with a JSON array of
objects {"head": ..., "relation": ..., "tail": ...}. Use the exact span
texts for head and tail and a short snake_case relation label. Reply with
[] when no relation holds. Output JSON only.`

// Extract classifies every candidate pair. Candidates whose spans fall
// outside the context text are skipped.
func (e *LLMRelationExtractor) Extract(ctx context.Context, candidates []model.Candidate) ([]model.Triple, error) {
	var triples []model.Triple
	for _, cand := range candidates {
		if cand.Head.End > len(cand.Text) || cand.Tail.End > len(cand.Text) {
			continue
		}
		head := cand.Text[cand.Head.Start:cand.Head.End]
		tail := cand.Text[cand.Tail.Start:cand.Tail.End]

		user := fmt.Sprintf("Sentence: %s\nHead span: %q\nTail span: %q", cand.Text, head, tail)

		var raw []jsonTriple
		if err := e.c.chatJSON(ctx, relSystem, user, &raw); err != nil {
			return nil, fmt.Errorf("relation extraction: %w", err)
		}
		triples = append(triples, toTriples(raw)...)
	}
	return triples, nil
}

// LLMQuestionGenerator generates entity-grounded questions with a chat
// model.
type LLMQuestionGenerator struct {
	c *openaiClient
}

// NewLLMQuestionGenerator creates an OpenAI-backed question generator.
func NewLLMQuestionGenerator(modelName string, cfg model.OpenAIConfig) (*LLMQuestionGenerator, error) {
	c, err := newOpenAIClient(modelName, cfg)
	if err != nil {
		return nil, err
	}
	return &LLMQuestionGenerator{c: c}, nil
}

const qgSystem = `You write reading-comprehension questions. Given a sentence and an
answer span from it, reply with a JSON array containing exactly one
question string whose answer is that span. Output JSON only.`

// Generate produces one question per (sentence, entity) pair, in document
// order. Sentences without entities contribute no questions.
func (g *LLMQuestionGenerator) Generate(ctx context.Context, sentences []model.Sentence, entities [][]model.Entity) ([]string, error) {
	n := len(sentences)
	if len(entities) < n {
		n = len(entities)
	}

	var questions []string
	for i := 0; i < n; i++ {
		for _, ent := range entities[i] {
			user := fmt.Sprintf("Sentence: %s\nAnswer span: %q", sentences[i].Text, ent.Text)

			var raw []string
			if err := g.c.chatJSON(ctx, qgSystem, user, &raw); err != nil {
				return nil, fmt.Errorf("question generation: %w", err)
			}
			for _, q := range raw {
				if q = strings.TrimSpace(q); q != "" {
					questions = append(questions, q)
				}
			}
		}
	}
	return questions, nil
}

// LLMQuestionAnswerer answers questions extractively with a chat model.
type LLMQuestionAnswerer struct {
	c *openaiClient
}

// NewLLMQuestionAnswerer creates an OpenAI-backed question answerer.
func NewLLMQuestionAnswerer(modelName string, cfg model.OpenAIConfig) (*LLMQuestionAnswerer, error) {
	c, err := newOpenAIClient(modelName, cfg)
	if err != nil {
		return nil, err
	}
	return &LLMQuestionAnswerer{c: c}, nil
}

const qaSystem = `You answer questions using only the given context. Reply with a JSON
array of short answer strings, one per question, in question order. Use
"" for questions the context cannot answer. Output JSON only.`

// Answer answers every question against the full context text and returns
// predictions in question order.
func (a *LLMQuestionAnswerer) Answer(ctx context.Context, contextText string, questions []string) ([]model.QA, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestions:\n")
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}

	var raw []string
	if err := a.c.chatJSON(ctx, qaSystem, sb.String(), &raw); err != nil {
		return nil, fmt.Errorf("question answering: %w", err)
	}

	out := make([]model.QA, len(questions))
	for i, q := range questions {
		prediction := ""
		if i < len(raw) {
			prediction = strings.TrimSpace(raw[i])
		}
		out[i] = model.QA{Question: q, Prediction: prediction}
	}
	return out, nil
}

// LLMTripleExtractor extracts open-domain triples with a chat model.
type LLMTripleExtractor struct {
	c *openaiClient
}

// NewLLMTripleExtractor creates an OpenAI-backed open-triple extractor.
func NewLLMTripleExtractor(modelName string, cfg model.OpenAIConfig) (*LLMTripleExtractor, error) {
	c, err := newOpenAIClient(modelName, cfg)
	if err != nil {
		return nil, err
	}
	return &LLMTripleExtractor{c: c}, nil
}

const openieSystem = `You perform open information extraction. Given a text, reply with a
JSON array of objects {"head": subject, "relation": relation, "tail":
object} covering the factual statements in the text. Output JSON only.`

// Triples extracts (subject, relation, object) triples from raw text.
func (e *LLMTripleExtractor) Triples(ctx context.Context, text string) ([]model.Triple, error) {
	var raw []jsonTriple
	if err := e.c.chatJSON(ctx, openieSystem, text, &raw); err != nil {
		return nil, fmt.Errorf("open triple extraction: %w", err)
	}
	return toTriples(raw), nil
}

// OpenAIEmbedder embeds snippets with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(modelName string, cfg model.OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if modelName == "" {
		modelName = string(openai.SmallEmbedding3)
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   openai.EmbeddingModel(modelName),
		timeout: timeout,
	}, nil
}

// Embed returns one vector per input text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
