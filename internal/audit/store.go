// Package audit persists observability records to a local SQLite database
// so mutation history survives restarts and can be inspected from the CLI.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/codexdeck/codexdeck/internal/observe"
)

// Store is a SQLite-backed observe.Sink.
type Store struct {
	db *sql.DB

	stmtInsert *sql.Stmt
}

// NewStore opens (or creates) the audit database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	s.stmtInsert, err = db.Prepare(`
		INSERT INTO audit_records (id, timestamp, source, label, payload)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_records (
			id        TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			source    TEXT NOT NULL,
			label     TEXT NOT NULL,
			payload   TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_records(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Record implements observe.Sink. Persistence failures are logged, not
// propagated; audit must never fail the mutation it describes.
func (s *Store) Record(rec observe.Record) {
	payload := ""
	if rec.Payload != nil {
		data, err := json.Marshal(rec.Payload)
		if err != nil {
			log.Warn().Err(err).Str("label", rec.Label).Msg("failed to marshal audit payload")
		} else {
			payload = string(data)
		}
	}

	_, err := s.stmtInsert.Exec(
		rec.ID,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		string(rec.Source),
		rec.Label,
		payload,
	)
	if err != nil {
		log.Warn().Err(err).Str("label", rec.Label).Msg("failed to persist audit record")
	}
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]observe.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, source, label, payload
		FROM audit_records
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []observe.Record
	for rows.Next() {
		var rec observe.Record
		var ts, source, payload string
		if err := rows.Scan(&rec.ID, &ts, &source, &rec.Label, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Source = observe.Source(source)
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.Timestamp = parsed
		}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
				log.Warn().Err(err).Str("id", rec.ID).Msg("failed to decode audit payload")
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.stmtInsert != nil {
		s.stmtInsert.Close()
	}
	return s.db.Close()
}
