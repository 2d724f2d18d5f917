package scenario

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opsdeck/opsdeck/internal/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleYAML = `name: sample
description: A minimal scenario.
steps:
  - kind: call-status
    payload:
      call_id: "{{call_id}}"
      status: ringing
  - delay_ms: 10
    kind: entity-extracted
    payload:
      entity_type: confirmation_number
      value: "{{confirmation}}"
`

func TestParse_Valid(t *testing.T) {
	s, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "sample" {
		t.Errorf("name = %q", s.Name)
	}
	if len(s.Steps) != 2 {
		t.Fatalf("len(steps) = %d, want 2", len(s.Steps))
	}
	if s.Steps[1].DelayMS != 10 || s.Steps[1].Kind != "entity-extracted" {
		t.Errorf("step = %+v", s.Steps[1])
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"missing name", "steps:\n  - kind: call-status\n"},
		{"no steps", "name: empty\n"},
		{"step without kind", "name: bad\nsteps:\n  - delay_ms: 5\n"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.in)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestRegistry_LoadDirAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-scenario files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("no"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Get("sample"); !ok {
		t.Fatal("sample not loaded")
	}
	if len(r.List()) != 1 {
		t.Errorf("len(list) = %d, want 1", len(r.List()))
	}

	// Renaming the scenario inside the file replaces the old entry.
	renamed := strings.Replace(sampleYAML, "name: sample", "name: renamed", 1)
	if err := os.WriteFile(path, []byte(renamed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Get("sample"); ok {
		t.Error("stale entry survived rename")
	}
	if _, ok := r.Get("renamed"); !ok {
		t.Error("renamed entry missing")
	}

	r.RemoveFile(path)
	if len(r.List()) != 0 {
		t.Errorf("len(list) = %d after remove, want 0", len(r.List()))
	}
}

func TestRunner_PlaysStepsWithSubstitution(t *testing.T) {
	r := NewRegistry()
	s, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	r.byName[s.Name] = s

	var mu sync.Mutex
	var got []event.Event
	done := make(chan struct{})
	ingest := func(e event.Event) {
		mu.Lock()
		got = append(got, e)
		if len(got) == 2 {
			close(done)
		}
		mu.Unlock()
	}

	runner := NewRunner(r, ingest, testLogger())
	if err := runner.Start(context.Background(), "sample"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0].Kind != event.KindCallStatus {
		t.Errorf("kind = %q", got[0].Kind)
	}
	payload := string(got[0].Payload)
	if strings.Contains(payload, "{{call_id}}") {
		t.Errorf("call_id token not substituted: %s", payload)
	}
	if !strings.Contains(payload, `"call_id":"call_`) {
		t.Errorf("payload = %s", payload)
	}
	second := string(got[1].Payload)
	if !strings.Contains(second, `"value":"CNF-`) {
		t.Errorf("confirmation not substituted: %s", second)
	}
}

func TestRunner_UnknownScenario(t *testing.T) {
	runner := NewRunner(NewRegistry(), func(event.Event) {}, testLogger())
	if err := runner.Start(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchDone := make(chan struct{})
	go func() {
		_ = Watch(ctx, r, dir, testLogger())
		close(watchDone)
	}()

	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "sample.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if _, ok := r.Get("sample"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scenario never loaded by watcher")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(3 * time.Second)
	for {
		if _, ok := r.Get("sample"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scenario never removed by watcher")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-watchDone
}
