package model

// EventType classifies a diagnostic event emitted while scoring a pair.
type EventType string

const (
	EventEntities EventType = "entities" // per-sentence entity mentions for one side
	EventFacts    EventType = "facts"    // entity-conditioned triples for one side
	EventTriples  EventType = "triples"  // open-domain triples for one side
	EventAnswers  EventType = "answers"  // QA predictions against one side
	EventScore    EventType = "score"    // a single scalar metric
)

// Event is one diagnostic record. Events describe intermediate extraction
// state transparently; they never feed back into scoring.
type Event struct {
	Type        EventType              `json:"type"`
	Side        string                 `json:"side,omitempty"` // "source", "summary", "common", "diff"
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Trace collects diagnostic events for one scored pair. A nil *Trace
// silently drops events, so pipeline steps can record unconditionally.
type Trace struct {
	Events []Event `json:"events"`
}

// Record appends an event. Safe to call on a nil trace.
func (t *Trace) Record(typ EventType, side, description string, data map[string]interface{}) {
	if t == nil {
		return
	}
	t.Events = append(t.Events, Event{
		Type:        typ,
		Side:        side,
		Description: description,
		Data:        data,
	})
}
