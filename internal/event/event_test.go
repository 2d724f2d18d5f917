package event

import (
	"encoding/json"
	"testing"
)

func TestKnown(t *testing.T) {
	if !Known(KindTaskPhaseUpdate) || !Known(KindDetection) {
		t.Error("known kinds reported unknown")
	}
	if Known(Kind("future-kind")) {
		t.Error("unknown kind reported known")
	}
}

func TestIsReset(t *testing.T) {
	cases := []struct {
		name string
		e    Event
		want bool
	}{
		{"reset true", New(KindTaskPhaseUpdate, json.RawMessage(`{"reset":true}`)), true},
		{"reset false", New(KindTaskPhaseUpdate, json.RawMessage(`{"reset":false}`)), false},
		{"no reset field", New(KindTaskPhaseUpdate, json.RawMessage(`{"phase":"research"}`)), false},
		{"wrong kind", New(KindCallStatus, json.RawMessage(`{"reset":true}`)), false},
		{"empty payload", New(KindTaskPhaseUpdate, nil), false},
	}
	for _, tc := range cases {
		if got := IsReset(tc.e); got != tc.want {
			t.Errorf("%s: IsReset = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDecode_MissingFieldsAreZero(t *testing.T) {
	cs, ok := DecodeCallStatus(New(KindCallStatus, json.RawMessage(`{"status":"ended"}`)))
	if !ok {
		t.Fatal("decode failed")
	}
	if cs.Status != "ended" || cs.Outcome != "" || cs.DurationSeconds != 0 {
		t.Errorf("cs = %+v", cs)
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	if _, ok := DecodeCallStatus(New(KindCallStatus, json.RawMessage(`not json`))); ok {
		t.Error("malformed payload decoded ok")
	}
	// A wrong shape (array where object expected) is also rejected, not fatal.
	if _, ok := DecodePhaseUpdate(New(KindTaskPhaseUpdate, json.RawMessage(`[1,2]`))); ok {
		t.Error("array payload decoded ok")
	}
}

func TestDecode_EmptyPayloadIsOK(t *testing.T) {
	pu, ok := DecodePhaseUpdate(New(KindTaskPhaseUpdate, nil))
	if !ok {
		t.Fatal("empty payload should decode to zero value")
	}
	if pu.Phase != "" || pu.Reset {
		t.Errorf("pu = %+v", pu)
	}
}
