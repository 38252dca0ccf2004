package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pbaille/toolcat/internal/domain"
)

// Memory is a RecordStore held in process memory. Nothing survives a
// restart; it backs tests and the "memory" driver.
type Memory struct {
	mu      sync.RWMutex
	records map[domain.Collection][]domain.Record
	now     func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		records: make(map[domain.Collection][]domain.Record),
		now:     time.Now,
	}
}

// FetchAll returns copies of every record in insertion order
func (m *Memory) FetchAll(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Record, 0, len(m.records[c]))
	for _, rec := range m.records[c] {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

// FetchOne returns a copy of the record with the given id
func (m *Memory) FetchOne(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records[c] {
		if rec["id"] == id {
			return copyRecord(rec), nil
		}
	}
	return nil, fmt.Errorf("fetch %s %s: %w", c, id, domain.ErrNotFound)
}

// Insert stores a copy of rec
func (m *Memory) Insert(ctx context.Context, c domain.Collection, rec domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := prepare(rec, m.now())
	key := uniqueKey(c, stored)
	for _, existing := range m.records[c] {
		if existing["id"] == stored["id"] || (key != "" && uniqueKey(c, existing) == key) {
			return nil, fmt.Errorf("insert %s: %w", c, domain.ErrConflict)
		}
	}

	m.records[c] = append(m.records[c], stored)
	return copyRecord(stored), nil
}

func copyRecord(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
