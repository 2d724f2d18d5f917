// Package stream owns the push-transport boundary: the SSE client that reads
// the agent backend's event channel and the bounded history buffer every
// derived view reads from.
package stream

import (
	"sync"

	"github.com/opsdeck/opsdeck/internal/event"
)

// DefaultLimit is the retention bound of the event history. Old events are
// discarded FIFO past this bound so derived views stay responsive during
// long sessions; the durable audit log lives elsewhere.
const DefaultLimit = 150

// Buffer holds the authoritative ordered event history for the session.
// Ingest is atomic with respect to Snapshot: a reader never observes a
// partially applied mutation.
type Buffer struct {
	mu        sync.Mutex
	events    []event.Event
	limit     int
	connected bool
	onChange  func(event.Event)
}

// NewBuffer creates a buffer retaining at most limit events. A non-positive
// limit falls back to DefaultLimit.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Buffer{limit: limit}
}

// OnChange registers a callback invoked after every successful ingest
// (including resets), outside the buffer lock. Only one callback is held.
func (b *Buffer) OnChange(fn func(event.Event)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Ingest appends e to history, or clears the history entirely when e is the
// reset control signal. This is the single special case in the ingest path.
func (b *Buffer) Ingest(e event.Event) {
	b.mu.Lock()
	if event.IsReset(e) {
		b.events = nil
	} else {
		b.events = append(b.events, e)
		if len(b.events) > b.limit {
			b.events = b.events[len(b.events)-b.limit:]
		}
	}
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(e)
	}
}

// Snapshot returns a copy of the current history. Callers may not mutate
// shared state through it; Event payloads are treated as immutable.
func (b *Buffer) Snapshot() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the current history length.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// SetConnected flips the transport connectivity flag. Connectivity loss does
// NOT clear history: only an explicit reset event does, which is how an
// intentional restart is told apart from missed events.
func (b *Buffer) SetConnected(up bool) {
	b.mu.Lock()
	b.connected = up
	b.mu.Unlock()
}

// Connected reports whether the transport is currently connected.
func (b *Buffer) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}
