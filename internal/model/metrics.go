package model

import "time"

// RougeScore bundles the three lexical-overlap components.
type RougeScore struct {
	Rouge1 float64 `json:"rouge_1"`
	Rouge2 float64 `json:"rouge_2"`
	RougeL float64 `json:"rouge_l"`
}

// BERTScore bundles the embedding-similarity components.
type BERTScore struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Metrics is the scored bundle for one (source, summary) pair, or the
// arithmetic mean of several pairs after batch averaging.
//
// FactScore and TripleScore default to exactly 0.0 whenever the comparable
// summary-side triple set is empty. That zero is a division guard, not a
// measurement of zero consistency.
type Metrics struct {
	FactScore   float64    `json:"fact_score"`
	QAScore     float64    `json:"qa_score"`
	TripleScore float64    `json:"triple_score"`
	Rouge       RougeScore `json:"rouge"`
	BERTScore   BERTScore  `json:"bert_score"`
}

// Average returns the component-wise arithmetic mean of the given metrics.
// Every pair contributes equally regardless of text length or entity count.
// Averaging an empty slice yields the zero value.
func Average(ms []Metrics) Metrics {
	if len(ms) == 0 {
		return Metrics{}
	}

	var sum Metrics
	for _, m := range ms {
		sum.FactScore += m.FactScore
		sum.QAScore += m.QAScore
		sum.TripleScore += m.TripleScore
		sum.Rouge.Rouge1 += m.Rouge.Rouge1
		sum.Rouge.Rouge2 += m.Rouge.Rouge2
		sum.Rouge.RougeL += m.Rouge.RougeL
		sum.BERTScore.Precision += m.BERTScore.Precision
		sum.BERTScore.Recall += m.BERTScore.Recall
		sum.BERTScore.F1 += m.BERTScore.F1
	}

	n := float64(len(ms))
	sum.FactScore /= n
	sum.QAScore /= n
	sum.TripleScore /= n
	sum.Rouge.Rouge1 /= n
	sum.Rouge.Rouge2 /= n
	sum.Rouge.RougeL /= n
	sum.BERTScore.Precision /= n
	sum.BERTScore.Recall /= n
	sum.BERTScore.F1 /= n
	return sum
}

// Result is the per-pair report: the metric bundle plus the optional
// diagnostic trace collected while scoring.
type Result struct {
	Subject  string    `json:"subject,omitempty"`
	ScoredAt time.Time `json:"scored_at"`
	Metrics  Metrics   `json:"metrics"`
	Trace    *Trace    `json:"trace,omitempty"`
}

// BatchResult bundles per-pair results with their component-wise mean.
type BatchResult struct {
	Pairs    []*Result `json:"pairs"`
	Averaged Metrics   `json:"averaged"`
}
