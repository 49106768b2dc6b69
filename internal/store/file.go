package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/intake/internal/core"
)

// FileStore writes each batch as one JSON document named by the batch file tag.
type FileStore struct {
	dir string
}

// fileDocument is the on-disk layout.
type fileDocument struct {
	BatchID     string              `json:"batchId"`
	DataType    string              `json:"dataType"`
	CreatedAt   time.Time           `json:"createdAt"`
	RecordCount int                 `json:"recordCount"`
	Records     []core.DomainRecord `json:"records"`
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// SaveBatch writes to a temp file and renames it into place, so readers never
// see a partial document.
func (s *FileStore) SaveBatch(ctx context.Context, batch core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.FileName == "" || filepath.Base(batch.FileName) != batch.FileName {
		return fmt.Errorf("invalid batch file name %q", batch.FileName)
	}

	final := filepath.Join(s.dir, batch.FileName)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("batch file %s: duplicate key", batch.FileName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", final, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".batch-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp batch file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	records := batch.Records
	if records == nil {
		records = []core.DomainRecord{}
	}
	doc := fileDocument{
		BatchID:     batch.ID.String(),
		DataType:    batch.DataType,
		CreatedAt:   batch.CreatedAt.UTC(),
		RecordCount: len(records),
		Records:     records,
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode batch %s: %w", batch.FileName, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync batch %s: %w", batch.FileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close batch %s: %w", batch.FileName, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("rename batch %s: %w", batch.FileName, err)
	}
	committed = true
	return nil
}

func (s *FileStore) Close() error { return nil }
