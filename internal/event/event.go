// Package event defines the typed vocabulary of messages the agent backend
// pushes over its event channel, and total decoders for each kind's payload.
package event

import "encoding/json"

// Kind identifies an event type on the push channel. The set is closed from
// the interpreter's point of view: unknown kinds are retained but ignored.
type Kind string

const (
	KindTaskPhaseUpdate   Kind = "task-phase-update"
	KindCallStatus        Kind = "call-status"
	KindCallSummary       Kind = "call-summary"
	KindTranscriptLine    Kind = "transcript-line"
	KindToolInvocation    Kind = "tool-invocation"
	KindEntityExtracted   Kind = "entity-extracted"
	KindGraphUpdated      Kind = "graph-updated"
	KindVoiceAnalysis     Kind = "voice-analysis"
	KindPerformanceReport Kind = "performance-report"
	KindPIIAlert          Kind = "pii-alert"
	KindBillAnalyzed      Kind = "bill-analyzed"
	KindDetection         Kind = "detection"
)

// Known reports whether k is part of the closed enumeration.
func Known(k Kind) bool {
	switch k {
	case KindTaskPhaseUpdate, KindCallStatus, KindCallSummary,
		KindTranscriptLine, KindToolInvocation, KindEntityExtracted,
		KindGraphUpdated, KindVoiceAnalysis, KindPerformanceReport,
		KindPIIAlert, KindBillAnalyzed, KindDetection:
		return true
	}
	return false
}

// Event is one immutable message from the push channel. Payload is the raw
// kind-specific JSON object; arrival order is the order of record and no
// event carries a sequence number.
type Event struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// New builds an Event from an already-encoded payload.
func New(kind Kind, payload json.RawMessage) Event {
	return Event{Kind: kind, Payload: payload}
}
