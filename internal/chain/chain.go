// Package chain derives the reasoning-chain timeline from the event history.
//
// Derive is a pure function over the full ordered history: it is recomputed
// wholesale after every mutation, carries no incremental state, and therefore
// cannot drift from the buffer it reads. Each event is matched against a
// fixed-order list of total rules; every applicable rule fires, so one event
// may contribute several contiguous steps.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opsdeck/opsdeck/internal/event"
)

// Category classifies a step for icon/color selection. It carries no other
// semantics.
type Category string

const (
	CategoryDetection Category = "detection"
	CategoryResearch  Category = "research"
	CategoryTool      Category = "tool"
	CategoryCall      Category = "call"
	CategoryEntity    Category = "entity"
	CategoryGraph     Category = "graph"
	CategoryVoice     Category = "voice"
	CategorySummary   Category = "summary"
	CategoryStrategy  Category = "strategy"
)

// Step is one derived, renderable entry in the reasoning-chain timeline.
type Step struct {
	Category  Category `json:"category"`
	Label     string   `json:"label"`
	Detail    string   `json:"detail,omitempty"`
	Source    string   `json:"source,omitempty"`
	Highlight bool     `json:"highlight,omitempty"`
	Extras    []string `json:"extras,omitempty"`
}

// rule inspects one event and returns the steps it contributes, possibly
// none. Rules never fail: missing payload fields simply produce no steps.
type rule func(e event.Event) []Step

// rules fire in this exact order for every event. For task-phase-update the
// phase-based rules are listed before the confirmed-action rule, which pins
// the relative step order when a single update carries both.
var rules = []rule{
	phaseResearch,
	phaseResearchComplete,
	phaseDispatch,
	confirmedAction,
	toolInvocation,
	callStatus,
	voiceAnalysis,
	entityExtracted,
	graphUpdated,
	billAnalyzed,
	callSummary,
	performanceReport,
	piiAlert,
}

// Derive maps the full event history to the ordered step sequence with a
// single left-to-right scan. Steps from one event are contiguous and steps
// from later events never precede steps from earlier ones.
func Derive(events []event.Event) []Step {
	var steps []Step
	for _, e := range events {
		for _, r := range rules {
			steps = append(steps, r(e)...)
		}
	}
	return steps
}

// ── task-phase-update rules ──────────────────────────────────

func phaseResearch(e event.Event) []Step {
	pu, ok := phaseUpdate(e)
	if !ok || pu.Phase != "research" {
		return nil
	}
	detail := pu.Message
	if detail == "" {
		detail = "Gathering competitor rates and account context"
	}
	return []Step{{
		Category: CategoryResearch,
		Label:    "Research Phase",
		Detail:   detail,
		Source:   "research engine",
	}}
}

func phaseResearchComplete(e event.Event) []Step {
	pu, ok := phaseUpdate(e)
	if !ok || pu.Phase != "research_complete" {
		return nil
	}
	detail := pu.Message
	if detail == "" {
		detail = "Competitor rates and retention strategies gathered"
	}
	return []Step{{
		Category: CategoryStrategy,
		Label:    "Strategy Formed",
		Detail:   detail,
		Source:   "research engine",
	}}
}

func phaseDispatch(e event.Event) []Step {
	pu, ok := phaseUpdate(e)
	if !ok || pu.Phase != "dispatch" {
		return nil
	}
	detail := pu.Message
	if detail == "" && pu.ConfirmedCount > 0 {
		detail = fmt.Sprintf("%d confirmed action(s) queued", pu.ConfirmedCount)
	}
	return []Step{{
		Category: CategoryCall,
		Label:    "Dispatching Service Calls",
		Detail:   detail,
		Source:   "task orchestrator",
	}}
}

func confirmedAction(e event.Event) []Step {
	pu, ok := phaseUpdate(e)
	if !ok || pu.ConfirmedAction == nil {
		return nil
	}
	ca := pu.ConfirmedAction
	var extras []string
	if ca.MonthlySavings > 0 {
		extras = append(extras, fmt.Sprintf("saves $%.0f/mo", ca.MonthlySavings))
	}
	return []Step{{
		Category:  CategorySummary,
		Label:     fmt.Sprintf("Confirmed: %s %s", humanize(ca.Action), ca.Service),
		Detail:    ca.Reason,
		Source:    "user consult",
		Highlight: true,
		Extras:    extras,
	}}
}

func phaseUpdate(e event.Event) (event.PhaseUpdate, bool) {
	if e.Kind != event.KindTaskPhaseUpdate {
		return event.PhaseUpdate{}, false
	}
	return event.DecodePhaseUpdate(e)
}

// ── other event kinds ────────────────────────────────────────

func toolInvocation(e event.Event) []Step {
	if e.Kind != event.KindToolInvocation {
		return nil
	}
	ti, ok := event.DecodeToolInvocation(e)
	if !ok || ti.Tool == "" {
		return nil
	}
	meta, known := toolTable[ti.Tool]
	if !known {
		// Unknown tool from a newer producer: degrade, don't reject.
		meta = toolMeta{Label: ti.Tool, Detail: "Agent invoked a tool", Source: "agent"}
	}
	return []Step{{
		Category: CategoryTool,
		Label:    meta.Label,
		Detail:   meta.Detail,
		Source:   meta.Source,
	}}
}

func callStatus(e event.Event) []Step {
	if e.Kind != event.KindCallStatus {
		return nil
	}
	cs, ok := event.DecodeCallStatus(e)
	if !ok {
		return nil
	}
	switch cs.Status {
	case "ringing":
		detail := cs.Company
		if cs.PhoneNumber != "" {
			detail = strings.TrimSpace(detail + " " + cs.PhoneNumber)
		}
		return []Step{{
			Category: CategoryCall,
			Label:    "Dialing",
			Detail:   detail,
			Source:   "telephony",
		}}
	case "in_progress":
		detail := cs.Message
		if detail == "" {
			detail = "Call connected"
		}
		return []Step{{
			Category: CategoryCall,
			Label:    "Call In Progress",
			Detail:   detail,
			Source:   "telephony",
		}}
	case "ended":
		detail := cs.Message
		if detail == "" && cs.DurationSeconds > 0 {
			detail = fmt.Sprintf("Duration %.0fs", cs.DurationSeconds)
		}
		return []Step{{
			Category:  CategorySummary,
			Label:     "Call Ended",
			Detail:    detail,
			Source:    "telephony",
			Highlight: cs.Outcome == "success",
		}}
	}
	return nil
}

func voiceAnalysis(e event.Event) []Step {
	if e.Kind != event.KindVoiceAnalysis {
		return nil
	}
	va, ok := event.DecodeVoiceAnalysis(e)
	if !ok || len(va.KeyInsights) == 0 {
		return nil
	}
	extras := va.KeyInsights[1:]
	if len(extras) > 2 {
		extras = extras[:2]
	}
	return []Step{{
		Category: CategoryVoice,
		Label:    fmt.Sprintf("Voice Analysis: %s", va.Emotion),
		Detail:   va.KeyInsights[0],
		Source:   "voice analyzer",
		Extras:   append([]string(nil), extras...),
	}}
}

func entityExtracted(e event.Event) []Step {
	if e.Kind != event.KindEntityExtracted {
		return nil
	}
	ee, ok := event.DecodeEntityExtracted(e)
	if !ok || ee.EntityType == "" {
		return nil
	}
	// Map iteration order is random; sort the keys so the derived step is
	// identical across recomputation.
	var extras []string
	types := make([]string, 0, len(ee.SubEntities))
	for typ := range ee.SubEntities {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		for _, v := range ee.SubEntities[typ] {
			extras = append(extras, fmt.Sprintf("%s: %s", humanize(typ), v))
		}
	}
	return []Step{{
		Category: CategoryEntity,
		Label:    humanize(ee.EntityType),
		Detail:   ee.Value,
		Source:   "entity extractor",
		Extras:   extras,
	}}
}

func graphUpdated(e event.Event) []Step {
	if e.Kind != event.KindGraphUpdated {
		return nil
	}
	gu, ok := event.DecodeGraphUpdated(e)
	if !ok {
		return nil
	}
	d := gu.Details
	hasSavings := d.MonthlySavings != nil
	detail := strings.TrimSpace(humanize(gu.Action) + " " + gu.Service)
	if hasSavings {
		detail = fmt.Sprintf("Saving $%.0f/mo", *d.MonthlySavings)
		if d.AnnualSavings != nil {
			detail += fmt.Sprintf(" ($%.0f/yr)", *d.AnnualSavings)
		}
	}
	return []Step{{
		Category:  CategoryGraph,
		Label:     "Knowledge Graph Updated",
		Detail:    detail,
		Source:    "knowledge graph",
		Highlight: hasSavings,
	}}
}

func billAnalyzed(e event.Event) []Step {
	if e.Kind != event.KindBillAnalyzed {
		return nil
	}
	ba, ok := event.DecodeBillAnalyzed(e)
	if !ok {
		return nil
	}
	provider := ba.Provider
	if provider == "" {
		provider = "Unknown Provider"
	}
	var parts []string
	if ba.TotalAmount != "" {
		parts = append(parts, "Total "+ba.TotalAmount)
	}
	if ba.PriceChange != "" {
		parts = append(parts, "change "+ba.PriceChange)
	}
	return []Step{{
		Category: CategoryDetection,
		Label:    fmt.Sprintf("Bill Analyzed: %s", provider),
		Detail:   strings.Join(parts, ", "),
		Source:   "bill vision",
	}}
}

func callSummary(e event.Event) []Step {
	if e.Kind != event.KindCallSummary {
		return nil
	}
	cs, ok := event.DecodeCallSummary(e)
	if !ok {
		return nil
	}
	return []Step{{
		Category:  CategorySummary,
		Label:     "Call Summary",
		Detail:    cs.Narrative,
		Source:    "agent",
		Highlight: true,
		Extras:    append([]string(nil), cs.KeyPoints...),
	}}
}

func performanceReport(e event.Event) []Step {
	if e.Kind != event.KindPerformanceReport {
		return nil
	}
	pr, ok := event.DecodePerformanceReport(e)
	if !ok || pr.Performance.Professionalism.Grade == "" {
		return nil
	}
	p := pr.Performance
	label := fmt.Sprintf("Agent Performance: %s", p.Professionalism.Grade)
	if p.Privacy.Grade != "" {
		label = fmt.Sprintf("Agent Performance: %s / privacy %s",
			p.Professionalism.Grade, p.Privacy.Grade)
	}
	return []Step{{
		Category: CategoryVoice,
		Label:    label,
		Detail:   p.SummaryNote,
		Source:   "voice analyzer",
	}}
}

func piiAlert(e event.Event) []Step {
	if e.Kind != event.KindPIIAlert {
		return nil
	}
	pa, ok := event.DecodePIIAlert(e)
	if !ok || pa.Count == 0 {
		return nil
	}
	noun := "items"
	if pa.Count == 1 {
		noun = "item"
	}
	return []Step{{
		Category: CategoryDetection,
		Label:    fmt.Sprintf("PII Redacted: %d %s", pa.Count, noun),
		Detail:   "Sensitive data detected on the call and automatically redacted",
		Source:   "voice analyzer",
	}}
}

// humanize replaces separators in identifier-style values with spaces, e.g.
// "confirmation_number" -> "confirmation number".
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, "-", " ")
}
