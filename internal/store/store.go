// Package store persists imported batches.
//
// Every backend implements core.Persister and writes a batch atomically: either
// the batch row and all of its records land, or nothing does.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/intake/internal/config"
	"github.com/JonMunkholm/intake/internal/core"
)

// Store is a Persister that owns resources.
type Store interface {
	core.Persister
	Close() error
}

// Open builds the store named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "postgres":
		return OpenPostgres(ctx, cfg.Database)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	case "file":
		return NewFileStore(cfg.Store.Dir)
	case "memory":
		slog.Warn("memory store selected; imported batches are lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// encodedRecord is one record ready for a row-oriented backend.
type encodedRecord struct {
	Position int
	Key      string
	Payload  []byte
}

func encodeRecords(records []core.DomainRecord) ([]encodedRecord, error) {
	out := make([]encodedRecord, len(records))
	for i, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		out[i] = encodedRecord{Position: i, Key: r.RecordID(), Payload: payload}
	}
	return out, nil
}
