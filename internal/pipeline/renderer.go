package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aic-factcheck/factsumm/internal/model"
)

// Renderer writes scoring results as JSON files, Markdown reports and a
// short stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result as indented JSON to path.
func (r *Renderer) RenderJSON(result interface{}, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes a Markdown report for one pair to path.
func (r *Renderer) RenderMarkdown(result *model.Result, path string) error {
	var buf strings.Builder

	title := "Factual Consistency Report"
	if result.Subject != "" {
		title = fmt.Sprintf("Factual Consistency Report: %s", result.Subject)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "Scored at: %s\n\n", result.ScoredAt.Format("2006-01-02 15:04:05 UTC"))

	buf.WriteString(metricsTable(result.Metrics))

	if result.Trace != nil && len(result.Trace.Events) > 0 {
		buf.WriteString("\n## Diagnostics\n\n")
		for _, event := range result.Trace.Events {
			fmt.Fprintf(&buf, "- **%s**", event.Type)
			if event.Side != "" {
				fmt.Fprintf(&buf, " (%s)", event.Side)
			}
			fmt.Fprintf(&buf, ": %s\n", event.Description)
		}
	}

	if r.includeFooter {
		buf.WriteString("\n---\n\nGenerated by factsumm\n")
	}

	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderBatchMarkdown writes a Markdown report for a batch to path.
func (r *Renderer) RenderBatchMarkdown(batch *model.BatchResult, path string) error {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# Factual Consistency Report: %d pairs\n\n", len(batch.Pairs))
	buf.WriteString("## Averaged\n\n")
	buf.WriteString(metricsTable(batch.Averaged))

	buf.WriteString("\n## Per pair\n\n")
	buf.WriteString("| # | Fact | QA | Triple | ROUGE-L | BERTScore F1 |\n")
	buf.WriteString("|---|------|----|--------|---------|---------------|\n")
	for i, pair := range batch.Pairs {
		m := pair.Metrics
		fmt.Fprintf(&buf, "| %d | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			i+1, m.FactScore, m.QAScore, m.TripleScore, m.Rouge.RougeL, m.BERTScore.F1)
	}

	if r.includeFooter {
		buf.WriteString("\n---\n\nGenerated by factsumm\n")
	}

	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints a short metric summary to stdout.
func (r *Renderer) RenderSummary(m model.Metrics) {
	fmt.Println()
	fmt.Println("Factual consistency:")
	fmt.Printf("  fact score:     %.4f\n", m.FactScore)
	fmt.Printf("  QA score:       %.4f\n", m.QAScore)
	fmt.Printf("  triple score:   %.4f\n", m.TripleScore)
	fmt.Printf("  ROUGE-1/2/L:    %.4f / %.4f / %.4f\n", m.Rouge.Rouge1, m.Rouge.Rouge2, m.Rouge.RougeL)
	fmt.Printf("  BERTScore P/R/F1: %.4f / %.4f / %.4f\n", m.BERTScore.Precision, m.BERTScore.Recall, m.BERTScore.F1)
}

func metricsTable(m model.Metrics) string {
	var buf strings.Builder
	buf.WriteString("| Metric | Score |\n")
	buf.WriteString("|--------|-------|\n")
	fmt.Fprintf(&buf, "| Fact score | %.4f |\n", m.FactScore)
	fmt.Fprintf(&buf, "| QA score | %.4f |\n", m.QAScore)
	fmt.Fprintf(&buf, "| Triple score | %.4f |\n", m.TripleScore)
	fmt.Fprintf(&buf, "| ROUGE-1 | %.4f |\n", m.Rouge.Rouge1)
	fmt.Fprintf(&buf, "| ROUGE-2 | %.4f |\n", m.Rouge.Rouge2)
	fmt.Fprintf(&buf, "| ROUGE-L | %.4f |\n", m.Rouge.RougeL)
	fmt.Fprintf(&buf, "| BERTScore precision | %.4f |\n", m.BERTScore.Precision)
	fmt.Fprintf(&buf, "| BERTScore recall | %.4f |\n", m.BERTScore.Recall)
	fmt.Fprintf(&buf, "| BERTScore F1 | %.4f |\n", m.BERTScore.F1)
	return buf.String()
}
