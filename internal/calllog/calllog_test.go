package calllog_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/event"
	"github.com/opsdeck/opsdeck/internal/testutil"
)

func TestRecordCallEnded_Upsert(t *testing.T) {
	db := testutil.TestDB(t)

	if err := db.RecordCallEnded("call_1", "Comcast", "success", 47); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A later write with empty fields must not blank out the stored ones.
	if err := db.RecordCallEnded("call_1", "", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls, err := db.RecentCalls(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	c := calls[0]
	if c.Company != "Comcast" || c.Outcome != "success" || c.DurationSeconds != 47 {
		t.Errorf("call = %+v", c)
	}
}

func TestRecordNarrativeAndConfirmation_OutOfOrder(t *testing.T) {
	db := testutil.TestDB(t)

	// Summary and confirmation may land before the ended status.
	if err := db.RecordNarrative("call_2", "Negotiated the rate down."); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordConfirmation("call_2", "CNF-2026-8847"); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordCallEnded("call_2", "Comcast", "success", 47); err != nil {
		t.Fatal(err)
	}

	calls, err := db.RecentCalls(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	c := calls[0]
	if c.Narrative != "Negotiated the rate down." {
		t.Errorf("narrative = %q", c.Narrative)
	}
	if c.Confirmation != "CNF-2026-8847" {
		t.Errorf("confirmation = %q", c.Confirmation)
	}
	if c.Company != "Comcast" {
		t.Errorf("company = %q", c.Company)
	}
}

func TestRecordBillScan(t *testing.T) {
	db := testutil.TestDB(t)

	if err := db.RecordBillScan("Comcast", "$85.00", "+54%"); err != nil {
		t.Fatal(err)
	}
	bills, err := db.RecentBills(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 1 {
		t.Fatalf("len(bills) = %d, want 1", len(bills))
	}
	if bills[0].Provider != "Comcast" || bills[0].PriceChange != "+54%" {
		t.Errorf("bill = %+v", bills[0])
	}
}

func TestRecorder_DurableSubset(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := calllog.NewRecorder(db, logger)

	rec.Record(testutil.RawEv(event.KindTranscriptLine, `{"text":"not durable"}`))
	rec.Record(testutil.RawEv(event.KindCallStatus, `{"call_id":"call_3","status":"ringing"}`))
	rec.Record(testutil.RawEv(event.KindCallStatus,
		`{"call_id":"call_3","status":"ended","company":"FitLife Gym","outcome":"success","duration_seconds":32}`))
	rec.Record(testutil.RawEv(event.KindEntityExtracted,
		`{"call_id":"call_3","entity_type":"confirmation_number","value":"CNF-2026-AB12"}`))
	rec.Record(testutil.RawEv(event.KindEntityExtracted,
		`{"call_id":"call_3","entity_type":"price","value":"$45"}`))
	rec.Record(testutil.RawEv(event.KindCallSummary,
		`{"call_id":"call_3","narrative":"Cancelled the membership."}`))
	rec.Record(testutil.RawEv(event.KindBillAnalyzed,
		`{"provider_name":"FitLife Gym","total_amount":"$45.00","price_change":"+0%"}`))

	calls, err := db.RecentCalls(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1 (only the ended call persists)", len(calls))
	}
	c := calls[0]
	if c.Outcome != "success" || c.Narrative != "Cancelled the membership." || c.Confirmation != "CNF-2026-AB12" {
		t.Errorf("call = %+v", c)
	}

	bills, err := db.RecentBills(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 1 {
		t.Fatalf("len(bills) = %d, want 1", len(bills))
	}
}
