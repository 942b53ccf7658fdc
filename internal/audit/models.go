// Package audit records who imported what. Every preview and merge emits one
// event; events fan out to a store and optionally to Kafka for downstream
// compliance tooling.
package audit

import "time"

// Action names the pipeline operation an event describes.
type Action string

const (
	ActionPreviewed Action = "import.previewed"
	ActionMerged    Action = "import.merged"
	ActionRejected  Action = "import.rejected"
)

// Event is emitted from the import pipeline to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	RequestID      string    `json:"request_id,omitempty"`
	Actor          string    `json:"actor,omitempty"`
	Action         Action    `json:"action"`
	ActivityID     string    `json:"activity_id,omitempty"`
	IATIIdentifier string    `json:"iati_identifier,omitempty"`
	Fields         []string  `json:"fields,omitempty"`
	Detail         string    `json:"detail,omitempty"`
}
