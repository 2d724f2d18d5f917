package graphview

import (
	"encoding/json"
	"testing"
)

func TestNodeRef_BareString(t *testing.T) {
	var l Link
	if err := json.Unmarshal([]byte(`{"source":"u1","target":"s1","type":"SUBSCRIBES_TO"}`), &l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Source != "u1" || l.Target != "s1" {
		t.Errorf("link = %+v", l)
	}
}

func TestNodeRef_ObjectForm(t *testing.T) {
	var l Link
	if err := json.Unmarshal([]byte(`{"source":{"id":"u1"},"target":{"id":"s1"},"type":"SUBSCRIBES_TO"}`), &l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Source != "u1" || l.Target != "s1" {
		t.Errorf("link = %+v", l)
	}
}

func TestNodeRef_MixedForms(t *testing.T) {
	var snap Snapshot
	data := `{
		"nodes": [{"id":"u1","label":"Person","name":"Neel"}],
		"links": [{"source":"u1","target":{"id":"u1"},"type":"SELF"}]
	}`
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Links[0].Source != snap.Links[0].Target {
		t.Errorf("normalized refs differ: %q vs %q", snap.Links[0].Source, snap.Links[0].Target)
	}
}
