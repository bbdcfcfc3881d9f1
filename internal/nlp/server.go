package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aic-factcheck/factsumm/internal/model"
	"github.com/aic-factcheck/factsumm/internal/util"
	"github.com/aic-factcheck/factsumm/internal/worker"
)

// ServerClient talks to a remote inference server hosting the extraction
// models. The server speaks a small JSON protocol with one endpoint per
// capability; the device hint is forwarded with every request so the
// server can place the model on the right accelerator.
//
// One client implements every capability interface, so a single hosted
// deployment can back any subset of the adapters.
type ServerClient struct {
	baseURL    string
	device     string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// NewServerClient creates a client for the inference server at baseURL.
func NewServerClient(baseURL, device string, cfg *model.Config) *ServerClient {
	timeout := cfg.HTTP.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &ServerClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		device:  device,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
		},
		limiter: worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
	}
}

type serverError struct {
	Error string `json:"error"`
}

// post sends one JSON request and decodes the JSON reply into out.
func (c *ServerClient) post(ctx context.Context, endpoint string, payload, out interface{}) error {
	url := c.baseURL + endpoint

	if err := c.limiter.Wait(ctx, url); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr serverError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Segment implements Segmenter.
func (c *ServerClient) Segment(ctx context.Context, text string) ([]model.Sentence, error) {
	req := struct {
		Text   string `json:"text"`
		Device string `json:"device,omitempty"`
	}{Text: text, Device: c.device}

	var resp struct {
		Sentences []model.Sentence `json:"sentences"`
	}
	if err := c.post(ctx, "/v1/segment", req, &resp); err != nil {
		return nil, err
	}
	return resp.Sentences, nil
}

// Tag implements EntityTagger.
func (c *ServerClient) Tag(ctx context.Context, sentences []model.Sentence) ([][]model.Entity, error) {
	req := struct {
		Sentences []model.Sentence `json:"sentences"`
		Device    string           `json:"device,omitempty"`
	}{Sentences: sentences, Device: c.device}

	var resp struct {
		Entities [][]model.Entity `json:"entities"`
	}
	if err := c.post(ctx, "/v1/entities", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Entities) != len(sentences) {
		return nil, fmt.Errorf("expected %d entity lists, got %d", len(sentences), len(resp.Entities))
	}
	return resp.Entities, nil
}

// Extract implements RelationExtractor.
func (c *ServerClient) Extract(ctx context.Context, candidates []model.Candidate) ([]model.Triple, error) {
	req := struct {
		Candidates []model.Candidate `json:"candidates"`
		Device     string            `json:"device,omitempty"`
	}{Candidates: candidates, Device: c.device}

	var resp struct {
		Triples []model.Triple `json:"triples"`
	}
	if err := c.post(ctx, "/v1/relations", req, &resp); err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

// Generate implements QuestionGenerator.
func (c *ServerClient) Generate(ctx context.Context, sentences []model.Sentence, entities [][]model.Entity) ([]string, error) {
	req := struct {
		Sentences []model.Sentence `json:"sentences"`
		Entities  [][]model.Entity `json:"entities"`
		Device    string           `json:"device,omitempty"`
	}{Sentences: sentences, Entities: entities, Device: c.device}

	var resp struct {
		Questions []string `json:"questions"`
	}
	if err := c.post(ctx, "/v1/questions", req, &resp); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// Answer implements QuestionAnswerer.
func (c *ServerClient) Answer(ctx context.Context, contextText string, questions []string) ([]model.QA, error) {
	req := struct {
		Context   string   `json:"context"`
		Questions []string `json:"questions"`
		Device    string   `json:"device,omitempty"`
	}{Context: contextText, Questions: questions, Device: c.device}

	var resp struct {
		Answers []model.QA `json:"answers"`
	}
	if err := c.post(ctx, "/v1/answers", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Answers) != len(questions) {
		return nil, fmt.Errorf("expected %d answers, got %d", len(questions), len(resp.Answers))
	}
	return resp.Answers, nil
}

// Triples implements TripleExtractor.
func (c *ServerClient) Triples(ctx context.Context, text string) ([]model.Triple, error) {
	req := struct {
		Text   string `json:"text"`
		Device string `json:"device,omitempty"`
	}{Text: text, Device: c.device}

	var resp struct {
		Triples []model.Triple `json:"triples"`
	}
	if err := c.post(ctx, "/v1/triples", req, &resp); err != nil {
		return nil, err
	}
	return resp.Triples, nil
}

// Embed implements Embedder.
func (c *ServerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := struct {
		Texts  []string `json:"texts"`
		Device string   `json:"device,omitempty"`
	}{Texts: texts, Device: c.device}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := c.post(ctx, "/v1/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}
