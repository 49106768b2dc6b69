package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/intake/internal/config"
	"github.com/JonMunkholm/intake/internal/core"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS import_batches (
	id           UUID PRIMARY KEY,
	data_type    TEXT NOT NULL,
	file_name    TEXT NOT NULL UNIQUE,
	record_count INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_records (
	batch_id   UUID NOT NULL REFERENCES import_batches(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	record_key TEXT NOT NULL,
	payload    JSONB NOT NULL,
	PRIMARY KEY (batch_id, position)
);

CREATE INDEX IF NOT EXISTS idx_import_batches_type ON import_batches (data_type, created_at DESC);
`

// recordColumns is the CopyFrom column order for import_records.
var recordColumns = []string{"batch_id", "position", "record_key", "payload"}

// DBTX is the subset of pgx used here.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Postgres stores batches in PostgreSQL, bulk-loading records with COPY.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool sized from cfg and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	p := NewPostgres(pool)
	if err := p.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool. The caller owns the schema.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the batch tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

func (p *Postgres) SaveBatch(ctx context.Context, batch core.Batch) error {
	encoded, err := encodeRecords(batch.Records)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	id := pgtype.UUID{Bytes: batch.ID, Valid: true}
	if _, err := tx.Exec(ctx,
		`INSERT INTO import_batches (id, data_type, file_name, record_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, batch.DataType, batch.FileName, len(encoded), batch.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert batch %s: %w", batch.ID, err)
	}

	if len(encoded) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"import_records"}, recordColumns, pgx.CopyFromRows(copyRows(id, encoded)))
		if err != nil {
			return fmt.Errorf("copy records of batch %s: %w", batch.ID, err)
		}
		if int(n) != len(encoded) {
			return fmt.Errorf("copy records of batch %s: wrote %d of %d", batch.ID, n, len(encoded))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch %s: %w", batch.ID, err)
	}
	return nil
}

// copyRows lays records out in recordColumns order.
func copyRows(batchID pgtype.UUID, records []encodedRecord) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{batchID, int32(r.Position), r.Key, r.Payload}
	}
	return rows
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
