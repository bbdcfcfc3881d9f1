package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// Pair is one (source, summary) input to score.
type Pair struct {
	Source  string `json:"source"`
	Summary string `json:"summary"`
}

// PairScorer scores a single pair. Implemented by the pipeline.
type PairScorer interface {
	ScorePair(ctx context.Context, source, summary string) (*model.Result, error)
}

// PairJob scores one pair on the pool.
type PairJob struct {
	Index  int
	Pair   Pair
	Scorer PairScorer
}

// Execute runs the scoring job.
func (j *PairJob) Execute(ctx context.Context) Result {
	result, err := j.Scorer.ScorePair(ctx, j.Pair.Source, j.Pair.Summary)
	return &PairResult{Index: j.Index, Pair: j.Pair, Result: result, Err: err}
}

// PairResult is the outcome of scoring one pair.
type PairResult struct {
	Index  int
	Pair   Pair
	Result *model.Result
	Err    error
}

// GetError returns the scoring error, if any.
func (r *PairResult) GetError() error {
	return r.Err
}

// BatchProcessor scores many pairs concurrently. Pairs share no mutable
// state beyond the pipeline's lazily loaded adapters, which are guarded by
// one-time initialization, so concurrent scoring is safe.
type BatchProcessor struct {
	scorer      PairScorer
	concurrency int
}

// NewBatchProcessor creates a processor with the given worker count.
func NewBatchProcessor(scorer PairScorer, concurrency int) *BatchProcessor {
	return &BatchProcessor{scorer: scorer, concurrency: concurrency}
}

// ProcessPairs scores every pair and returns results in input order.
// Results are collected concurrently with submission; the pool's channels
// are bounded, so draining must not wait for the last Submit. Canceling
// ctx stops in-flight scoring; results for unfinished pairs are dropped.
func (b *BatchProcessor) ProcessPairs(ctx context.Context, pairs []Pair) []*PairResult {
	if len(pairs) == 0 {
		return []*PairResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	collected := make(chan []*PairResult)
	go func() {
		var results []*PairResult
		for result := range pool.Results() {
			results = append(results, result.(*PairResult))
		}
		collected <- results
	}()

	for i, pair := range pairs {
		pool.Submit(&PairJob{Index: i, Pair: pair, Scorer: b.scorer})
	}
	pool.Wait()

	pairResults := <-collected
	sort.Slice(pairResults, func(i, j int) bool {
		return pairResults[i].Index < pairResults[j].Index
	})
	return pairResults
}

// ProcessFile reads pairs from a file and scores them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*PairResult, error) {
	pairs, err := ReadPairsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	return b.ProcessPairs(ctx, pairs), nil
}

// ReadPairsFromFile reads (source, summary) pairs from a file. Each
// non-empty, non-comment line is either a JSON object with "source" and
// "summary" fields or a tab-separated source/summary pair.
func ReadPairsFromFile(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var pairs []Pair

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pair, err := parsePairLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return pairs, nil
}

func parsePairLine(line string) (Pair, error) {
	if strings.HasPrefix(line, "{") {
		var pair Pair
		if err := json.Unmarshal([]byte(line), &pair); err != nil {
			return Pair{}, fmt.Errorf("parse JSON pair: %w", err)
		}
		if pair.Source == "" || pair.Summary == "" {
			return Pair{}, fmt.Errorf("JSON pair needs non-empty source and summary")
		}
		return pair, nil
	}

	fields := strings.SplitN(line, "\t", 2)
	if len(fields) != 2 {
		return Pair{}, fmt.Errorf("expected JSON object or tab-separated source/summary")
	}
	return Pair{Source: fields[0], Summary: fields[1]}, nil
}
