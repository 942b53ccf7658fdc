package importlog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"aims/pkg/requestcontext"
)

// Memory is an in-memory Store for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]*Record
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[uuid.UUID][]*Record)}
}

func (m *Memory) Append(ctx context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *record
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = requestcontext.Now(ctx)
	}
	stored.Written = append([]string(nil), record.Written...)
	m.records[stored.ActivityID] = append(m.records[stored.ActivityID], &stored)
	return nil
}

func (m *Memory) ListByActivity(_ context.Context, activityID uuid.UUID) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.records[activityID]
	out := make([]*Record, len(records))
	for i, r := range records {
		copied := *r
		copied.Written = append([]string(nil), r.Written...)
		out[i] = &copied
	}
	return out, nil
}
