package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/intake/internal/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS import_batches (
	id           TEXT PRIMARY KEY,
	data_type    TEXT NOT NULL,
	file_name    TEXT NOT NULL UNIQUE,
	record_count INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS import_records (
	batch_id   TEXT NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	record_key TEXT NOT NULL,
	payload    TEXT NOT NULL,
	PRIMARY KEY (batch_id, position)
);

CREATE INDEX IF NOT EXISTS idx_import_batches_type ON import_batches(data_type, created_at);
`

// SQLite stores batches in an embedded database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	s := &SQLite{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the batch tables if they do not exist.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLite) SaveBatch(ctx context.Context, batch core.Batch) error {
	encoded, err := encodeRecords(batch.Records)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	id := batch.ID.String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_batches (id, data_type, file_name, record_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, batch.DataType, batch.FileName, len(encoded), batch.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert batch %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO import_records (batch_id, position, record_key, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range encoded {
		if _, err := stmt.ExecContext(ctx, id, r.Position, r.Key, string(r.Payload)); err != nil {
			return fmt.Errorf("insert record %d of batch %s: %w", r.Position, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch %s: %w", id, err)
	}
	return nil
}

// BatchSummary is one row of import_batches.
type BatchSummary struct {
	ID          string
	DataType    string
	FileName    string
	RecordCount int
	CreatedAt   time.Time
}

// Batches lists stored batches, newest first.
func (s *SQLite) Batches(ctx context.Context) ([]BatchSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data_type, file_name, record_count, created_at FROM import_batches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []BatchSummary
	for rows.Next() {
		var b BatchSummary
		var created string
		if err := rows.Scan(&b.ID, &b.DataType, &b.FileName, &b.RecordCount, &created); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RecordPayloads returns the JSON payloads of one batch in position order.
func (s *SQLite) RecordPayloads(ctx context.Context, batchID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM import_records WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list records of %s: %w", batchID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
