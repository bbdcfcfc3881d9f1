package model

// Sentence is one segmented line of a document. Position is 1-based and
// local to the document the sentence was cut from.
type Sentence struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Entity is a named-entity mention inside a single sentence. Offsets are
// byte offsets relative to the owning sentence text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Span marks a half-open [Start, End) byte range within a sentence.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Candidate is an ordered pair of entity mentions drawn from the same
// sentence, offered to the relation extractor together with the full
// sentence text. (A,B) and (B,A) are distinct candidates because relation
// extraction is direction-sensitive.
type Candidate struct {
	Text string `json:"text"`
	Head Span   `json:"head"`
	Tail Span   `json:"tail"`
}

// Triple is a (head, relation, tail) fact. Equality is exact string
// equality on all three fields, so Triple works directly as a map key.
type Triple struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}

// QA pairs a question generated from the summary with the answer predicted
// against one specific context (the source or the summary).
type QA struct {
	Question   string `json:"question"`
	Prediction string `json:"prediction"`
}
