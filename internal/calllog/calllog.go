// Package calllog provides the SQLite-backed durable record of completed
// calls and analyzed bills. The in-memory event history is bounded and
// resettable; this log is the part that survives both.
package calllog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS call_logs (
	call_id          TEXT PRIMARY KEY,
	company          TEXT NOT NULL DEFAULT '',
	outcome          TEXT NOT NULL DEFAULT '',
	narrative        TEXT NOT NULL DEFAULT '',
	confirmation     TEXT NOT NULL DEFAULT '',
	duration_seconds REAL NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bill_scans (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	provider     TEXT NOT NULL DEFAULT '',
	total_amount TEXT NOT NULL DEFAULT '',
	price_change TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_call_logs_created ON call_logs(created_at);
`

// DB wraps a sql.DB with call-log operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("calllog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("calllog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("calllog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CallRow is one row of the call log.
type CallRow struct {
	CallID          string    `json:"call_id"`
	Company         string    `json:"company"`
	Outcome         string    `json:"outcome"`
	Narrative       string    `json:"narrative"`
	Confirmation    string    `json:"confirmation"`
	DurationSeconds float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

// BillRow is one recorded bill scan.
type BillRow struct {
	Provider    string    `json:"provider"`
	TotalAmount string    `json:"total_amount"`
	PriceChange string    `json:"price_change"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordCallEnded upserts the terminal state of a call. Later fields win so
// a summary arriving after the ended status fills in what it knows.
func (db *DB) RecordCallEnded(callID, company, outcome string, duration float64) error {
	if callID == "" {
		return nil
	}
	_, err := db.conn.Exec(`
		INSERT INTO call_logs (call_id, company, outcome, duration_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(call_id) DO UPDATE SET
			company          = CASE WHEN excluded.company  != '' THEN excluded.company  ELSE call_logs.company  END,
			outcome          = CASE WHEN excluded.outcome  != '' THEN excluded.outcome  ELSE call_logs.outcome  END,
			duration_seconds = CASE WHEN excluded.duration_seconds > 0 THEN excluded.duration_seconds ELSE call_logs.duration_seconds END
	`, callID, company, outcome, duration)
	if err != nil {
		return fmt.Errorf("calllog: record call ended: %w", err)
	}
	return nil
}

// RecordNarrative attaches the agent's narrative summary to a call.
func (db *DB) RecordNarrative(callID, narrative string) error {
	if callID == "" || narrative == "" {
		return nil
	}
	_, err := db.conn.Exec(`
		INSERT INTO call_logs (call_id, narrative) VALUES (?, ?)
		ON CONFLICT(call_id) DO UPDATE SET narrative = excluded.narrative
	`, callID, narrative)
	if err != nil {
		return fmt.Errorf("calllog: record narrative: %w", err)
	}
	return nil
}

// RecordConfirmation attaches an extracted confirmation number to a call.
func (db *DB) RecordConfirmation(callID, confirmation string) error {
	if callID == "" || confirmation == "" {
		return nil
	}
	_, err := db.conn.Exec(`
		INSERT INTO call_logs (call_id, confirmation) VALUES (?, ?)
		ON CONFLICT(call_id) DO UPDATE SET confirmation = excluded.confirmation
	`, callID, confirmation)
	if err != nil {
		return fmt.Errorf("calllog: record confirmation: %w", err)
	}
	return nil
}

// RecordBillScan appends one analyzed bill.
func (db *DB) RecordBillScan(provider, total, change string) error {
	_, err := db.conn.Exec(`
		INSERT INTO bill_scans (provider, total_amount, price_change) VALUES (?, ?, ?)
	`, provider, total, change)
	if err != nil {
		return fmt.Errorf("calllog: record bill scan: %w", err)
	}
	return nil
}

// RecentCalls returns up to limit call rows, most recent first.
func (db *DB) RecentCalls(limit int) ([]CallRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT call_id, company, outcome, narrative, confirmation, duration_seconds, created_at
		FROM call_logs ORDER BY created_at DESC, call_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("calllog: recent calls: %w", err)
	}
	defer rows.Close()

	var out []CallRow
	for rows.Next() {
		var r CallRow
		if err := rows.Scan(&r.CallID, &r.Company, &r.Outcome, &r.Narrative,
			&r.Confirmation, &r.DurationSeconds, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentBills returns up to limit bill scans, most recent first.
func (db *DB) RecentBills(limit int) ([]BillRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT provider, total_amount, price_change, created_at
		FROM bill_scans ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("calllog: recent bills: %w", err)
	}
	defer rows.Close()

	var out []BillRow
	for rows.Next() {
		var r BillRow
		if err := rows.Scan(&r.Provider, &r.TotalAmount, &r.PriceChange, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
