package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	completed_at TEXT NOT NULL,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL,
	payload TEXT NOT NULL
)`

// SQLiteSink stores each record as a row holding the JSON document.
type SQLiteSink struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

func NewSQLiteSink(ctx context.Context, path string, logger *zap.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createRecordsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating records table: %w", err)
	}

	return &SQLiteSink{db: db, path: path, logger: logger}, nil
}

func (s *SQLiteSink) Append(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, completed_at, full_name, email, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CompletedAt.UTC().Format(time.RFC3339Nano), rec.FullName, rec.Email, string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	s.logger.Info("screening record saved", zap.String("path", s.path), zap.String("record_id", rec.ID))
	return nil
}

// Load returns records in completion order. Rows whose payload cannot be decoded are skipped.
func (s *SQLiteSink) Load(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM records ORDER BY completed_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		rec, ok := decodeJSONRecord(json.RawMessage(payload))
		if !ok {
			s.logger.Warn("skipping unreadable stored record", zap.String("record_id", id))
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
