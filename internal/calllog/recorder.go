package calllog

import (
	"log/slog"

	"github.com/opsdeck/opsdeck/internal/event"
)

// Recorder taps the ingest path and persists the durable subset of the
// stream: terminal call states, narrative summaries, and bill scans. Every
// write is best-effort; a store failure is logged and never blocks ingest.
type Recorder struct {
	db     *DB
	logger *slog.Logger
}

// NewRecorder creates a recorder over db.
func NewRecorder(db *DB, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record persists whatever durable fact e carries, if any.
func (r *Recorder) Record(e event.Event) {
	var err error
	switch e.Kind {
	case event.KindCallStatus:
		cs, ok := event.DecodeCallStatus(e)
		if !ok || cs.Status != "ended" {
			return
		}
		err = r.db.RecordCallEnded(cs.CallID, cs.Company, cs.Outcome, cs.DurationSeconds)

	case event.KindCallSummary:
		cs, ok := event.DecodeCallSummary(e)
		if !ok {
			return
		}
		err = r.db.RecordNarrative(cs.CallID, cs.Narrative)

	case event.KindEntityExtracted:
		ee, ok := event.DecodeEntityExtracted(e)
		if !ok || ee.EntityType != "confirmation_number" {
			return
		}
		err = r.db.RecordConfirmation(ee.CallID, ee.Value)

	case event.KindBillAnalyzed:
		ba, ok := event.DecodeBillAnalyzed(e)
		if !ok {
			return
		}
		err = r.db.RecordBillScan(ba.Provider, ba.TotalAmount, ba.PriceChange)

	default:
		return
	}

	if err != nil {
		r.logger.Warn("calllog: record failed", slog.String("error", err.Error()))
	}
}
