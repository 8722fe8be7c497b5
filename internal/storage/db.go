package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"startupmap/internal"
)

// Metadata keys written by dataset imports.
const (
	MetaLastImport = "dataset.last_import"
	MetaSource     = "dataset.source"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS raw_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  position INTEGER NOT NULL UNIQUE,
  source TEXT NOT NULL,
  raw_json TEXT NOT NULL,
  importedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  source TEXT NOT NULL,
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

// ReplaceRawRecords swaps the stored dataset for records in one transaction.
// Records keep their input order through the position column; nil entries are
// stored as JSON null so the normalizer still sees them.
func (d *DB) ReplaceRawRecords(source string, records []internal.RawRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM raw_records`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO raw_records (position, source, raw_json) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		blob, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
		if _, err := stmt.Exec(i, source, string(blob)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRawRecords() ([]internal.RawRecord, error) {
	rows, err := d.conn.Query(`SELECT position, raw_json FROM raw_records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.RawRecord{}
	for rows.Next() {
		var position int
		var blob string
		if err := rows.Scan(&position, &blob); err != nil {
			return nil, err
		}
		var record internal.RawRecord
		if err := json.Unmarshal([]byte(blob), &record); err != nil {
			record = nil
		}
		out = append(out, record)
	}

	return out, rows.Err()
}

func (d *DB) CountRawRecords() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM raw_records`).Scan(&n)
	return n, err
}

func (d *DB) InsertRun(traceID, source string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, source, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, source, string(timingsJSON), string(countsJSON))
	return err
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, source, timingsJson, countsJson, createdAt
FROM runs
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var r internal.RunRow
		var timingsJSON, countsJSON string
		if err := rows.Scan(&r.ID, &r.TraceID, &r.Source, &timingsJSON, &countsJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(timingsJSON), &r.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &r.Counts)
		out = append(out, r)
	}

	return out, rows.Err()
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
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
