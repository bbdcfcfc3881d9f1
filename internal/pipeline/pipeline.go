// Package pipeline sequences the extraction adapters into a factual
// consistency score for (source, summary) pairs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aic-factcheck/factsumm/internal/cache"
	"github.com/aic-factcheck/factsumm/internal/fact"
	"github.com/aic-factcheck/factsumm/internal/metric"
	"github.com/aic-factcheck/factsumm/internal/model"
	"github.com/aic-factcheck/factsumm/internal/nlp"
	"github.com/aic-factcheck/factsumm/internal/qa"
)

// ErrLengthMismatch is returned when batch sources and summaries differ in
// length. It is raised before any adapter is invoked.
var ErrLengthMismatch = errors.New("sources and summaries must have the same number of elements")

// Pipeline scores summaries against their sources. The segmenter and the
// ROUGE calculator are constructed eagerly; the model-backed adapters are
// materialized on first use, once per pipeline, with the configured device
// hint, and reused read-only afterwards. One-time loading makes a pipeline
// safe for concurrent ScorePair calls.
type Pipeline struct {
	cfg       *model.Config
	segmenter nlp.Segmenter
	rouge     *metric.Rouge
	store     cache.Cache

	nerOnce sync.Once
	ner     nlp.EntityTagger
	nerErr  error

	relOnce sync.Once
	rel     nlp.RelationExtractor
	relErr  error

	qgOnce sync.Once
	qg     nlp.QuestionGenerator
	qgErr  error

	qaOnce sync.Once
	qa     nlp.QuestionAnswerer
	qaErr  error

	ieOnce sync.Once
	ie     nlp.TripleExtractor
	ieErr  error

	embedOnce sync.Once
	scorer    *metric.BERTScorer
	embedErr  error
}

// New creates a pipeline from configuration.
func New(cfg *model.Config) (*Pipeline, error) {
	segmenter, err := nlp.LoadSegmenter(cfg.Adapters.Segmenter, cfg.Adapters.Device, cfg)
	if err != nil {
		return nil, fmt.Errorf("load segmenter: %w", err)
	}

	return &Pipeline{
		cfg:       cfg,
		segmenter: segmenter,
		rouge:     metric.NewRouge(),
		store:     NewStore(cfg),
	}, nil
}

// NewStore builds the cache configured for this run: nil when caching is
// disabled, memory only without a directory, memory plus disk otherwise.
func NewStore(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Dir == "" {
		return cache.NewMemoryCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryTTL)
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

func (p *Pipeline) ensureNER() (nlp.EntityTagger, error) {
	p.nerOnce.Do(func() {
		p.ner, p.nerErr = nlp.LoadEntityTagger(p.cfg.Adapters.NER, p.cfg.Adapters.Device, p.cfg)
	})
	return p.ner, p.nerErr
}

func (p *Pipeline) ensureRel() (nlp.RelationExtractor, error) {
	p.relOnce.Do(func() {
		p.rel, p.relErr = nlp.LoadRelationExtractor(p.cfg.Adapters.Rel, p.cfg.Adapters.Device, p.cfg)
	})
	return p.rel, p.relErr
}

func (p *Pipeline) ensureQG() (nlp.QuestionGenerator, error) {
	p.qgOnce.Do(func() {
		p.qg, p.qgErr = nlp.LoadQuestionGenerator(p.cfg.Adapters.QG, p.cfg.Adapters.Device, p.cfg)
	})
	return p.qg, p.qgErr
}

func (p *Pipeline) ensureQA() (nlp.QuestionAnswerer, error) {
	p.qaOnce.Do(func() {
		p.qa, p.qaErr = nlp.LoadQuestionAnswerer(p.cfg.Adapters.QA, p.cfg.Adapters.Device, p.cfg)
	})
	return p.qa, p.qaErr
}

func (p *Pipeline) ensureIE() (nlp.TripleExtractor, error) {
	p.ieOnce.Do(func() {
		p.ie, p.ieErr = nlp.LoadTripleExtractor(p.cfg.Adapters.OpenIE, p.cfg)
	})
	return p.ie, p.ieErr
}

func (p *Pipeline) ensureBERTScorer() (*metric.BERTScorer, error) {
	p.embedOnce.Do(func() {
		embedder, err := nlp.LoadEmbedder(p.cfg.Adapters.Embedder, p.cfg.Adapters.Device, p.cfg)
		if err != nil {
			p.embedErr = err
			return
		}
		if p.store != nil {
			embedder = nlp.NewCachedEmbedder(embedder, p.store, p.cfg.Adapters.Embedder, p.cfg.Cache.MemoryTTL)
		}
		p.scorer = metric.NewBERTScorer(embedder)
	})
	return p.scorer, p.embedErr
}

// ScoreURL fetches the source document from a URL and scores the summary
// against its visible text. The result's subject is derived from the URL.
func (p *Pipeline) ScoreURL(ctx context.Context, rawURL, summary string) (*model.Result, error) {
	fetcher := NewFetcher(p.cfg, p.store)

	fetched, err := fetcher.FetchText(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	if fetched.Text == "" {
		return nil, fmt.Errorf("no visible text at %s", fetched.FinalURL)
	}

	result, err := p.ScorePair(ctx, fetched.Text, summary)
	if err != nil {
		return nil, err
	}
	result.Subject = fetched.Subject
	return result, nil
}

// pairState carries segmentation and entity results forward so the QA step
// reuses what the fact step already extracted.
type pairState struct {
	sourceLines  []model.Sentence
	summaryLines []model.Sentence
	sourceEnts   [][]model.Entity
	summaryEnts  [][]model.Entity
}

// Score scores every (source, summary) pair and returns the component-wise
// mean of all pair metrics together with the per-pair results. A length
// mismatch fails with ErrLengthMismatch before any adapter is touched.
func (p *Pipeline) Score(ctx context.Context, sources, summaries []string) (*model.BatchResult, error) {
	if len(sources) != len(summaries) {
		return nil, fmt.Errorf("%w: %d sources, %d summaries", ErrLengthMismatch, len(sources), len(summaries))
	}

	results := make([]*model.Result, len(sources))
	metrics := make([]model.Metrics, len(sources))
	for i := range sources {
		result, err := p.ScorePair(ctx, sources[i], summaries[i])
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		results[i] = result
		metrics[i] = result.Metrics
	}

	return &model.BatchResult{
		Pairs:    results,
		Averaged: model.Average(metrics),
	}, nil
}

// ScorePair scores one pair: entity-conditioned facts, QA agreement
// (reusing the fact step's entities), open triples, lexical overlap and
// embedding similarity, in that order. Diagnostics are collected into the
// result's trace when verbose output is configured; they never influence
// the scores.
func (p *Pipeline) ScorePair(ctx context.Context, source, summary string) (*model.Result, error) {
	var trace *model.Trace
	if p.cfg.Output.Verbose {
		trace = &model.Trace{}
	}

	state := &pairState{}

	factScore, err := p.extractFacts(ctx, source, summary, state, trace)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	qaScore, err := p.answerAgreement(ctx, source, summary, state, trace)
	if err != nil {
		return nil, fmt.Errorf("extract QAs: %w", err)
	}

	tripleScore, err := p.openTriples(ctx, source, summary, trace)
	if err != nil {
		return nil, fmt.Errorf("extract triples: %w", err)
	}

	rouge := p.rouge.Scores(summary, state.sourceLines)
	trace.Record(model.EventScore, "", "ROUGE", map[string]interface{}{
		"rouge_1": rouge.Rouge1, "rouge_2": rouge.Rouge2, "rouge_l": rouge.RougeL,
	})

	bert, err := p.embeddingScore(ctx, summary, state)
	if err != nil {
		return nil, fmt.Errorf("embedding score: %w", err)
	}
	trace.Record(model.EventScore, "", "BERTScore", map[string]interface{}{
		"precision": bert.Precision, "recall": bert.Recall, "f1": bert.F1,
	})

	return &model.Result{
		ScoredAt: time.Now().UTC(),
		Metrics: model.Metrics{
			FactScore:   factScore,
			QAScore:     qaScore,
			TripleScore: tripleScore,
			Rouge:       rouge,
			BERTScore:   bert,
		},
		Trace: trace,
	}, nil
}

// extractFacts runs the entity-conditioned flow: segment both sides, tag
// entities, expand candidates, extract relation triples and score the
// comparable sets. Segmentation and entities are stored on state for the
// QA step.
func (p *Pipeline) extractFacts(ctx context.Context, source, summary string, state *pairState, trace *model.Trace) (float64, error) {
	ner, err := p.ensureNER()
	if err != nil {
		return 0, fmt.Errorf("load NER adapter: %w", err)
	}
	rel, err := p.ensureRel()
	if err != nil {
		return 0, fmt.Errorf("load RE adapter: %w", err)
	}

	if state.sourceLines, err = p.segmenter.Segment(ctx, source); err != nil {
		return 0, fmt.Errorf("segment source: %w", err)
	}
	if state.summaryLines, err = p.segmenter.Segment(ctx, summary); err != nil {
		return 0, fmt.Errorf("segment summary: %w", err)
	}

	if state.sourceEnts, err = ner.Tag(ctx, state.sourceLines); err != nil {
		return 0, fmt.Errorf("tag source: %w", err)
	}
	if state.summaryEnts, err = ner.Tag(ctx, state.summaryLines); err != nil {
		return 0, fmt.Errorf("tag summary: %w", err)
	}

	sourceFacts, err := p.relationTriples(ctx, rel, state.sourceLines, state.sourceEnts)
	if err != nil {
		return 0, fmt.Errorf("source relations: %w", err)
	}
	summaryFacts, err := p.relationTriples(ctx, rel, state.summaryLines, state.summaryEnts)
	if err != nil {
		return 0, fmt.Errorf("summary relations: %w", err)
	}

	filteredSource, filteredSummary := fact.FilterComparable(sourceFacts, summaryFacts)
	common := filteredSummary.Intersect(filteredSource)
	diff := filteredSummary.Diff(filteredSource)

	recordEntities(trace, "source", state.sourceEnts)
	recordEntities(trace, "summary", state.summaryEnts)
	recordTriples(trace, model.EventFacts, "source", filteredSource)
	recordTriples(trace, model.EventFacts, "summary", filteredSummary)
	recordTriples(trace, model.EventFacts, "common", common)
	recordTriples(trace, model.EventFacts, "diff", diff)

	score := fact.Score(sourceFacts, summaryFacts)
	trace.Record(model.EventScore, "", "fact score", map[string]interface{}{"fact_score": score})
	return score, nil
}

// relationTriples expands per-sentence candidates and collects the
// extractor's output as a deduplicated set.
func (p *Pipeline) relationTriples(ctx context.Context, rel nlp.RelationExtractor, lines []model.Sentence, entities [][]model.Entity) (fact.TripleSet, error) {
	candidates := fact.Flatten(fact.BuildCandidates(lines, entities))
	if len(candidates) == 0 {
		return fact.NewTripleSet(), nil
	}

	triples, err := rel.Extract(ctx, candidates)
	if err != nil {
		return nil, err
	}
	return fact.NewTripleSet(triples...), nil
}

// answerAgreement generates questions from the summary only, answers them
// against both full texts and scores the answer agreement. Entities from
// the fact step are reused; the guard only matters for callers driving the
// step in isolation.
func (p *Pipeline) answerAgreement(ctx context.Context, source, summary string, state *pairState, trace *model.Trace) (float64, error) {
	qg, err := p.ensureQG()
	if err != nil {
		return 0, fmt.Errorf("load QG adapter: %w", err)
	}
	answerer, err := p.ensureQA()
	if err != nil {
		return 0, fmt.Errorf("load QA adapter: %w", err)
	}

	if state.summaryLines == nil {
		if state.summaryLines, err = p.segmenter.Segment(ctx, summary); err != nil {
			return 0, fmt.Errorf("segment summary: %w", err)
		}
	}
	if state.summaryEnts == nil {
		ner, err := p.ensureNER()
		if err != nil {
			return 0, fmt.Errorf("load NER adapter: %w", err)
		}
		if state.summaryEnts, err = ner.Tag(ctx, state.summaryLines); err != nil {
			return 0, fmt.Errorf("tag summary: %w", err)
		}
	}

	questions, err := qg.Generate(ctx, state.summaryLines, state.summaryEnts)
	if err != nil {
		return 0, fmt.Errorf("generate questions: %w", err)
	}

	sourceAnswers, err := answerer.Answer(ctx, source, questions)
	if err != nil {
		return 0, fmt.Errorf("answer against source: %w", err)
	}
	summaryAnswers, err := answerer.Answer(ctx, summary, questions)
	if err != nil {
		return 0, fmt.Errorf("answer against summary: %w", err)
	}

	recordAnswers(trace, "source", sourceAnswers)
	recordAnswers(trace, "summary", summaryAnswers)

	score := qa.Agreement(sourceAnswers, summaryAnswers)
	trace.Record(model.EventScore, "", "QA agreement score", map[string]interface{}{"qa_score": score})
	return score, nil
}

// openTriples runs open-domain extraction on both raw texts and scores the
// comparable sets exactly like the entity-conditioned flow.
func (p *Pipeline) openTriples(ctx context.Context, source, summary string, trace *model.Trace) (float64, error) {
	ie, err := p.ensureIE()
	if err != nil {
		return 0, fmt.Errorf("load OpenIE adapter: %w", err)
	}

	sourceRaw, err := ie.Triples(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("source triples: %w", err)
	}
	summaryRaw, err := ie.Triples(ctx, summary)
	if err != nil {
		return 0, fmt.Errorf("summary triples: %w", err)
	}

	sourceTriples := fact.NewTripleSet(sourceRaw...)
	summaryTriples := fact.NewTripleSet(summaryRaw...)

	filteredSource, filteredSummary := fact.FilterComparable(sourceTriples, summaryTriples)
	recordTriples(trace, model.EventTriples, "source", filteredSource)
	recordTriples(trace, model.EventTriples, "summary", filteredSummary)

	score := fact.Score(sourceTriples, summaryTriples)
	trace.Record(model.EventScore, "", "triple score", map[string]interface{}{"triple_score": score})
	return score, nil
}

// embeddingScore computes the BERTScore-style metrics. The summary side is
// padded with a throwaway placeholder line because a batch of one line
// degenerates in the underlying matrix scoring; the placeholder's scores
// are dropped again before averaging.
func (p *Pipeline) embeddingScore(ctx context.Context, summary string, state *pairState) (model.BERTScore, error) {
	scorer, err := p.ensureBERTScorer()
	if err != nil {
		return model.BERTScore{}, fmt.Errorf("load embedder: %w", err)
	}

	summaryLines := []string{summary, "dummy"}

	precision, recall, f1, err := scorer.ScoreLines(ctx, summaryLines, state.sourceLines)
	if err != nil {
		return model.BERTScore{}, err
	}

	return model.BERTScore{
		Precision: meanWithoutLast(precision),
		Recall:    meanWithoutLast(recall),
		F1:        meanWithoutLast(f1),
	}, nil
}

// meanWithoutLast drops the padding line's score and averages the rest.
func meanWithoutLast(scores []float64) float64 {
	if len(scores) <= 1 {
		return 0.0
	}
	kept := scores[:len(scores)-1]
	total := 0.0
	for _, s := range kept {
		total += s
	}
	return total / float64(len(kept))
}

func recordEntities(trace *model.Trace, side string, entities [][]model.Entity) {
	if trace == nil {
		return
	}
	lines := make(map[string]interface{}, len(entities))
	for i, ents := range entities {
		pairs := make([][2]string, 0, len(ents))
		for _, ent := range ents {
			pairs = append(pairs, [2]string{ent.Text, ent.Label})
		}
		lines[fmt.Sprintf("%d", i+1)] = pairs
	}
	trace.Record(model.EventEntities, side, fmt.Sprintf("%s entities", side), lines)
}

func recordTriples(trace *model.Trace, typ model.EventType, side string, set fact.TripleSet) {
	if trace == nil {
		return
	}
	trace.Record(typ, side, fmt.Sprintf("%s %s", side, typ), map[string]interface{}{
		"triples": set.List(),
	})
}

func recordAnswers(trace *model.Trace, side string, answers []model.QA) {
	if trace == nil {
		return
	}
	trace.Record(model.EventAnswers, side, fmt.Sprintf("answers based on %s (questions generated from summary)", side), map[string]interface{}{
		"answers": answers,
	})
}
