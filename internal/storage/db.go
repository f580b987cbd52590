package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Timestamps are fixed-width UTC text so MAX() and ORDER BY sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// SetClock replaces the timestamp source.
func (d *DB) SetClock(now func() time.Time) {
	d.now = now
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS learned_mappings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  invoice_pattern TEXT NOT NULL,
  invoice_pattern_clean TEXT NOT NULL,
  supplier_pattern TEXT,
  master_item_code TEXT NOT NULL,
  master_item_name TEXT NOT NULL,
  confidence REAL NOT NULL,
  times_seen INTEGER NOT NULL DEFAULT 1,
  times_confirmed INTEGER NOT NULL DEFAULT 1,
  learned_date TEXT NOT NULL,
  last_confirmed TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invoice_pattern ON learned_mappings(invoice_pattern_clean, supplier_pattern);

CREATE TABLE IF NOT EXISTS correction_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  invoice_no TEXT,
  line_no TEXT,
  invoice_item_name TEXT NOT NULL,
  supplier_name TEXT,
  suggested_item_code TEXT,
  suggested_item_name TEXT,
  suggested_score REAL,
  corrected_item_code TEXT NOT NULL,
  corrected_item_name TEXT NOT NULL,
  correction_date TEXT NOT NULL,
  correction_reason TEXT
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  invoiceFile TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertRun(runID, invoiceFile string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (runId, invoiceFile, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, runID, invoiceFile, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) CountRuns() (int, error) {
	var n int
	err := d.conn.Get(&n, `SELECT COUNT(*) FROM runs`)
	return n, err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.Get(&value, `SELECT value FROM metadata WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) stamp() string {
	return d.now().UTC().Format(timeLayout)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}
