package stream

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/opsdeck/opsdeck/internal/event"
)

func transcript(text string) event.Event {
	payload, _ := json.Marshal(map[string]string{"text": text})
	return event.New(event.KindTranscriptLine, payload)
}

func resetEvent() event.Event {
	return event.New(event.KindTaskPhaseUpdate, json.RawMessage(`{"reset":true}`))
}

func TestBuffer_FIFOTrim(t *testing.T) {
	b := NewBuffer(150)
	for i := 0; i < 151; i++ {
		b.Ingest(transcript(fmt.Sprintf("line %d", i)))
	}
	if b.Len() != 150 {
		t.Fatalf("len = %d, want 150", b.Len())
	}
	snap := b.Snapshot()
	var first struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(snap[0].Payload, &first); err != nil {
		t.Fatal(err)
	}
	// The oldest event (line 0) must be the one discarded.
	if first.Text != "line 1" {
		t.Errorf("oldest retained = %q, want %q", first.Text, "line 1")
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer(150)
	b.Ingest(transcript("a"))
	b.Ingest(transcript("b"))
	b.Ingest(resetEvent())
	if b.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", b.Len())
	}
	// Reset on an empty buffer is a no-op, not an error.
	b.Ingest(resetEvent())
	if b.Len() != 0 {
		t.Fatalf("len after idempotent reset = %d, want 0", b.Len())
	}
}

func TestBuffer_PhaseUpdateWithoutResetIsAppended(t *testing.T) {
	b := NewBuffer(150)
	b.Ingest(event.New(event.KindTaskPhaseUpdate, json.RawMessage(`{"phase":"research"}`)))
	b.Ingest(event.New(event.KindTaskPhaseUpdate, json.RawMessage(`{"reset":false}`)))
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBuffer_DisconnectDoesNotClear(t *testing.T) {
	b := NewBuffer(150)
	b.Ingest(transcript("a"))
	b.SetConnected(true)
	b.SetConnected(false)
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1: disconnect must not clear history", b.Len())
	}
	if b.Connected() {
		t.Errorf("connected = true, want false")
	}
}

func TestBuffer_SnapshotIsCopy(t *testing.T) {
	b := NewBuffer(150)
	b.Ingest(transcript("a"))
	snap := b.Snapshot()
	snap[0] = transcript("mutated")
	var got struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b.Snapshot()[0].Payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Text != "a" {
		t.Errorf("buffer contents changed through snapshot")
	}
}

func TestBuffer_OnChangeSeesResets(t *testing.T) {
	b := NewBuffer(150)
	var seen []event.Kind
	b.OnChange(func(e event.Event) { seen = append(seen, e.Kind) })
	b.Ingest(transcript("a"))
	b.Ingest(resetEvent())
	if len(seen) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(seen))
	}
	if seen[1] != event.KindTaskPhaseUpdate {
		t.Errorf("seen[1] = %q", seen[1])
	}
}
