// Package aggregate computes cheap rollups over the event history for the
// stats strip: counts by kind and per-category presence flags.
package aggregate

import (
	"github.com/opsdeck/opsdeck/internal/chain"
	"github.com/opsdeck/opsdeck/internal/event"
)

// Stats is the rollup consumed by the stats strip and live indicators.
type Stats struct {
	TotalEvents int                     `json:"total_events"`
	ByKind      map[event.Kind]int      `json:"by_kind"`
	Categories  map[chain.Category]bool `json:"categories"`
	Connected   bool                    `json:"connected"`
}

// Summarize scans the history and derived steps once each. Like the chain
// deriver it is recomputed wholesale on every input change.
func Summarize(events []event.Event, steps []chain.Step, connected bool) Stats {
	s := Stats{
		TotalEvents: len(events),
		ByKind:      make(map[event.Kind]int),
		Categories:  make(map[chain.Category]bool),
		Connected:   connected,
	}
	for _, e := range events {
		s.ByKind[e.Kind]++
	}
	for _, st := range steps {
		s.Categories[st.Category] = true
	}
	return s
}
