// Package testutil provides shared test helpers for setting up databases and events.
package testutil

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/event"
)

// TestDB creates a temporary SQLite call log that is automatically cleaned up.
func TestDB(t *testing.T) *calllog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "opsdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := calllog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Ev builds an event with the payload marshalled from a map.
func Ev(t *testing.T, kind event.Kind, payload map[string]any) event.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return event.New(kind, raw)
}

// RawEv builds an event from a raw JSON payload string.
func RawEv(kind event.Kind, payload string) event.Event {
	return event.New(kind, json.RawMessage(payload))
}
