package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aic-factcheck/factsumm/internal/model"
	"github.com/aic-factcheck/factsumm/internal/pipeline"
)

var (
	sourceURL string
	outJSON   string
	outMD     string
	timeout   time.Duration
	userAgent string
	maxBytes  int64
	noCache   bool
	noFooter  bool
	device    string

	segmenterName string
	nerName       string
	relName       string
	qgName        string
	qaName        string
	openieName    string
	embedderName  string
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <source> <summary>",
	Short: "Score a summary against its source document",
	Long: `Score runs the full consistency check for one (source, summary) pair:
- Extract named entities and relation triples from both texts
- Compare comparable triples for agreement
- Generate questions from the summary and answer them against both texts
- Compute ROUGE and embedding-similarity scores

Arguments are literal text, or file paths prefixed with @. With
--source-url the source is fetched from the web instead and only the
summary argument is given.

Example:
  factsumm score "Paris is the capital of France." "Paris is France's capital."
  factsumm score @article.txt @summary.txt --json result.json
  factsumm score --source-url https://en.wikipedia.org/wiki/Paris @summary.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&sourceURL, "source-url", "", "fetch the source document from this URL")
	scoreCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	scoreCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scoreCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall scoring timeout")
	scoreCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override for URL sources")
	scoreCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read for URL sources")
	scoreCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of documents and embeddings")
	scoreCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	scoreCmd.Flags().StringVar(&device, "device", "", "device hint for remote inference adapters (cpu, cuda)")

	scoreCmd.Flags().StringVar(&segmenterName, "segmenter", "", "segmenter adapter (prose, rule, http URL)")
	scoreCmd.Flags().StringVar(&nerName, "ner", "", "NER adapter (prose, http URL)")
	scoreCmd.Flags().StringVar(&relName, "rel", "", "relation extraction adapter (openai/<model>, http URL)")
	scoreCmd.Flags().StringVar(&qgName, "qg", "", "question generation adapter (openai/<model>, http URL)")
	scoreCmd.Flags().StringVar(&qaName, "qa", "", "question answering adapter (openai/<model>, http URL)")
	scoreCmd.Flags().StringVar(&openieName, "openie", "", "open triple extraction adapter (openai/<model>, http URL)")
	scoreCmd.Flags().StringVar(&embedderName, "embedder", "", "embedding adapter (openai/<model>, http URL)")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScoreFlags(cfg)
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	var source, summary string
	if sourceURL != "" {
		if len(args) != 1 {
			return fmt.Errorf("with --source-url, pass only the summary argument")
		}
		if summary, err = readArg(args[0]); err != nil {
			return err
		}
	} else {
		if len(args) != 2 {
			return fmt.Errorf("pass the source and the summary, or use --source-url")
		}
		if source, err = readArg(args[0]); err != nil {
			return err
		}
		if summary, err = readArg(args[1]); err != nil {
			return err
		}
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	var result *model.Result
	if sourceURL != "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "Fetching source: %s\n", sourceURL)
		}
		result, err = p.ScoreURL(ctx, sourceURL, summary)
	} else {
		result, err = p.ScorePair(ctx, source, summary)
	}
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Wrote Markdown: %s\n", outMD)
		}
	}

	renderer.RenderSummary(result.Metrics)
	return nil
}

// applyScoreFlags overlays non-empty flag values on the loaded config.
func applyScoreFlags(cfg *model.Config) {
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	cfg.Output.IncludeFooter = !noFooter
	if device != "" {
		cfg.Adapters.Device = device
	}

	if segmenterName != "" {
		cfg.Adapters.Segmenter = segmenterName
	}
	if nerName != "" {
		cfg.Adapters.NER = nerName
	}
	if relName != "" {
		cfg.Adapters.Rel = relName
	}
	if qgName != "" {
		cfg.Adapters.QG = qgName
	}
	if qaName != "" {
		cfg.Adapters.QA = qaName
	}
	if openieName != "" {
		cfg.Adapters.OpenIE = openieName
	}
	if embedderName != "" {
		cfg.Adapters.Embedder = embedderName
	}
}

// readArg resolves a positional argument: @path reads the file, anything
// else is literal text.
func readArg(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}

	path := strings.TrimPrefix(arg, "@")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return text, nil
}
