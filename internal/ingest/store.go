package ingest

import (
	"context"
	"sync"
	"time"
)

// Record is the latest parsed upload for one category.
type Record struct {
	Category   string              `json:"category"`
	FileName   string              `json:"fileName"`
	Headers    []string            `json:"headers"`
	Rows       []map[string]string `json:"rows"`
	RowCount   int                 `json:"rowCount"`
	UploadedAt time.Time           `json:"uploadedAt"`
}

// Summary is a Record without its rows.
type Summary struct {
	Category   string    `json:"category"`
	FileName   string    `json:"fileName"`
	Headers    []string  `json:"headers"`
	RowCount   int       `json:"rowCount"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (r *Record) Summary() Summary {
	return Summary{
		Category:   r.Category,
		FileName:   r.FileName,
		Headers:    r.Headers,
		RowCount:   r.RowCount,
		UploadedAt: r.UploadedAt,
	}
}

// Store keeps the latest Record per category.
// Put overwrites unconditionally; List returns records in the order their
// category was first stored. Get returns ErrNotFound for unknown categories.
type Store interface {
	Get(ctx context.Context, category string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]*Record, error)
}

// MemoryStore is the process-local Store. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (m *MemoryStore) Get(_ context.Context, category string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[category]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Put(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.Category]; !exists {
		m.order = append(m.order, rec.Category)
	}
	m.records[rec.Category] = rec
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, m.records[c])
	}
	return out, nil
}
