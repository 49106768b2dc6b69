package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/intake/internal/core"
)

// Memory keeps batches in process. Used by tests and the "memory" driver.
type Memory struct {
	mu      sync.RWMutex
	batches []core.Batch
	ids     map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) SaveBatch(ctx context.Context, batch core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := batch.ID.String()
	if _, dup := m.ids[id]; dup {
		return fmt.Errorf("batch %s: duplicate key", id)
	}
	m.ids[id] = struct{}{}

	batch.Records = append([]core.DomainRecord(nil), batch.Records...)
	m.batches = append(m.batches, batch)
	return nil
}

// Batches returns the stored batches in arrival order.
func (m *Memory) Batches() []core.Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Batch(nil), m.batches...)
}

func (m *Memory) Close() error { return nil }
