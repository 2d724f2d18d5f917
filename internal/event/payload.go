package event

import "encoding/json"

// Per-kind payload shapes. Every field is optional on the wire; decoders are
// total in the sense that absent fields simply stay zero-valued. A decoder
// returns ok=false only when the payload is not a well-formed object of the
// expected shape, and callers treat that the same as an empty payload.

// ConfirmedAction is an action the user approved during a consult call.
type ConfirmedAction struct {
	Service        string  `json:"service"`
	Action         string  `json:"action"`
	Reason         string  `json:"reason"`
	MonthlySavings float64 `json:"monthly_savings"`
}

// PhaseUpdate is the payload of a task-phase-update event. A single update
// may carry a phase, a confirmed action, a raw task list, or any mix.
type PhaseUpdate struct {
	TaskID          string           `json:"task_id"`
	CallID          string           `json:"call_id"`
	Phase           string           `json:"phase"`
	Message         string           `json:"message"`
	Reset           bool             `json:"reset"`
	ConfirmedAction *ConfirmedAction `json:"confirmed_action"`
	ConfirmedCount  int              `json:"confirmed_count"`
	Tasks           json.RawMessage  `json:"tasks"`
}

// CallStatus tracks call-state transitions (ringing, in_progress, ended).
type CallStatus struct {
	CallID          string  `json:"call_id"`
	Status          string  `json:"status"`
	Company         string  `json:"company"`
	PhoneNumber     string  `json:"phone_number"`
	Message         string  `json:"message"`
	Outcome         string  `json:"outcome"`
	DurationSeconds float64 `json:"duration_seconds"`
	CallType        string  `json:"call_type"`
}

// CallSummary is the agent's first-person narrative of a completed call.
type CallSummary struct {
	TaskID    string   `json:"task_id"`
	CallID    string   `json:"call_id"`
	Narrative string   `json:"narrative"`
	KeyPoints []string `json:"key_points"`
}

// ToolInvocation records the agent invoking one of its tools mid-call.
type ToolInvocation struct {
	CallID    string            `json:"call_id"`
	Tool      string            `json:"tool"`
	Arguments map[string]string `json:"arguments"`
}

// EntityExtracted is a structured value pulled from the live transcript.
// SubEntities carries vendor-specific secondary extractions keyed by type.
type EntityExtracted struct {
	CallID      string              `json:"call_id"`
	EntityType  string              `json:"entity_type"`
	Value       string              `json:"value"`
	Context     string              `json:"context"`
	SubEntities map[string][]string `json:"entities"`
}

// GraphDetails describes a graph mutation's financial outcome.
type GraphDetails struct {
	OldRate        *float64 `json:"old_rate"`
	NewRate        *float64 `json:"new_rate"`
	Confirmation   string   `json:"confirmation"`
	MonthlySavings *float64 `json:"monthly_savings"`
	AnnualSavings  *float64 `json:"annual_savings"`
	Status         string   `json:"status"`
}

// GraphUpdated signals that the relationship graph changed upstream. The
// authoritative shape is fetched separately; this payload only summarizes.
type GraphUpdated struct {
	Action  string       `json:"action"`
	Service string       `json:"service"`
	Details GraphDetails `json:"details"`
}

// VoiceAnalysis is a voice-sentiment report for one call.
type VoiceAnalysis struct {
	CallID         string   `json:"call_id"`
	Emotion        string   `json:"emotion"`
	StressLevel    float64  `json:"stress_level"`
	CertaintyScore float64  `json:"certainty_score"`
	KeyInsights    []string `json:"key_insights"`
	Signals        []string `json:"behavioral_signals"`
	Recommendation string   `json:"negotiation_recommendation"`
}

// Grade is a letter grade with its underlying score.
type Grade struct {
	Grade string  `json:"grade"`
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

// AgentPerformance is the post-call performance breakdown.
type AgentPerformance struct {
	Professionalism Grade  `json:"professionalism"`
	Privacy         Grade  `json:"privacy"`
	SummaryNote     string `json:"summary_note"`
}

// PerformanceReport is the payload of a performance-report event.
type PerformanceReport struct {
	CallID      string           `json:"call_id"`
	Source      string           `json:"source"`
	Performance AgentPerformance `json:"agent_performance"`
}

// PIIAlert reports sensitive items detected and redacted on a call.
type PIIAlert struct {
	CallID string   `json:"call_id"`
	Count  int      `json:"count"`
	Items  []string `json:"items"`
}

// BillAnalyzed is the result of analyzing a bill image.
type BillAnalyzed struct {
	Provider    string   `json:"provider_name"`
	TotalAmount string   `json:"total_amount"`
	PriceChange string   `json:"price_change"`
	HiddenFees  []string `json:"hidden_fees"`
	Summary     string   `json:"summary"`
}

// TranscriptLine is one finalized line of call transcript.
type TranscriptLine struct {
	CallID string `json:"call_id"`
	Role   string `json:"role"`
	Text   string `json:"text"`
}

func decode[T any](raw json.RawMessage) (T, bool) {
	var v T
	if len(raw) == 0 {
		return v, true
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// DecodePhaseUpdate decodes a task-phase-update payload.
func DecodePhaseUpdate(e Event) (PhaseUpdate, bool) { return decode[PhaseUpdate](e.Payload) }

// DecodeCallStatus decodes a call-status payload.
func DecodeCallStatus(e Event) (CallStatus, bool) { return decode[CallStatus](e.Payload) }

// DecodeCallSummary decodes a call-summary payload.
func DecodeCallSummary(e Event) (CallSummary, bool) { return decode[CallSummary](e.Payload) }

// DecodeToolInvocation decodes a tool-invocation payload.
func DecodeToolInvocation(e Event) (ToolInvocation, bool) { return decode[ToolInvocation](e.Payload) }

// DecodeEntityExtracted decodes an entity-extracted payload.
func DecodeEntityExtracted(e Event) (EntityExtracted, bool) {
	return decode[EntityExtracted](e.Payload)
}

// DecodeGraphUpdated decodes a graph-updated payload.
func DecodeGraphUpdated(e Event) (GraphUpdated, bool) { return decode[GraphUpdated](e.Payload) }

// DecodeVoiceAnalysis decodes a voice-analysis payload.
func DecodeVoiceAnalysis(e Event) (VoiceAnalysis, bool) { return decode[VoiceAnalysis](e.Payload) }

// DecodePerformanceReport decodes a performance-report payload.
func DecodePerformanceReport(e Event) (PerformanceReport, bool) {
	return decode[PerformanceReport](e.Payload)
}

// DecodePIIAlert decodes a pii-alert payload.
func DecodePIIAlert(e Event) (PIIAlert, bool) { return decode[PIIAlert](e.Payload) }

// DecodeBillAnalyzed decodes a bill-analyzed payload.
func DecodeBillAnalyzed(e Event) (BillAnalyzed, bool) { return decode[BillAnalyzed](e.Payload) }

// DecodeTranscriptLine decodes a transcript-line payload.
func DecodeTranscriptLine(e Event) (TranscriptLine, bool) {
	return decode[TranscriptLine](e.Payload)
}

// IsReset reports whether e is the reset control signal: a task-phase-update
// whose payload marks reset = true.
func IsReset(e Event) bool {
	if e.Kind != KindTaskPhaseUpdate {
		return false
	}
	pu, ok := DecodePhaseUpdate(e)
	return ok && pu.Reset
}
