package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/aic-factcheck/factsumm/internal/model"
	"github.com/aic-factcheck/factsumm/internal/pipeline"
	"github.com/aic-factcheck/factsumm/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchJSON    string
	batchMD      string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score multiple (source, summary) pairs from a file in parallel",
	Long: `Batch scores many pairs concurrently:
- Read pairs from the input file, one per line
- Each line is either tab-separated source and summary, or a JSON object
  with "source" and "summary" fields; # lines are comments
- Pairs are scored in parallel with a configurable worker count
- Per-pair results and the averaged metrics are reported together

Example:
  factsumm batch pairs.tsv
  factsumm batch pairs.jsonl --concurrency 8 --output-dir ./reports
  factsumm batch pairs.tsv --json results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write per-pair JSON reports into this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "output JSON path for the full batch result")
	batchCmd.Flags().StringVar(&batchMD, "md", "", "output Markdown path for the batch report")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of documents and embeddings")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&device, "device", "", "device hint for remote inference adapters (cpu, cuda)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.IncludeFooter = !noFooter
	if device != "" {
		cfg.Adapters.Device = device
	}
	cfg.Concurrency.Workers = concurrency
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintln(os.Stderr)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	var scored []*model.Result
	var metrics []model.Metrics
	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "pair %d failed: %v\n", result.Index+1, result.Err)
			continue
		}

		scored = append(scored, result.Result)
		metrics = append(metrics, result.Result.Metrics)

		if outputDir != "" {
			path := filepath.Join(outputDir, fmt.Sprintf("pair-%04d.json", result.Index+1))
			if err := renderer.RenderJSON(result.Result, path); err != nil {
				fmt.Fprintf(os.Stderr, "pair %d: write JSON: %v\n", result.Index+1, err)
			}
		}
	}

	if len(scored) == 0 {
		return fmt.Errorf("no pairs scored successfully (%d failures)", failures)
	}

	batch := &model.BatchResult{
		Pairs:    scored,
		Averaged: model.Average(metrics),
	}

	if batchJSON != "" {
		if err := renderer.RenderJSON(batch, batchJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if batchMD != "" {
		if err := renderer.RenderBatchMarkdown(batch, batchMD); err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\nScored %d pairs, %d failures\n", len(scored), failures)
	renderer.RenderSummary(batch.Averaged)
	return nil
}
