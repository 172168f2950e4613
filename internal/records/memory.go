package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[uuid.UUID]*Record),
		now:     time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, ErrRecordRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(record)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := m.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.records[stored.ID] = stored
	return cloneRecord(stored), nil
}

func (m *MemoryRepository) Update(_ context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, ErrRecordRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[record.ID]
	if !ok {
		return nil, notFound(record.ID)
	}
	next := cloneRecord(record)
	current.Attributes = next.Attributes
	current.Relations = next.Relations
	current.UpdatedAt = m.now().UTC()
	return cloneRecord(current), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return cloneRecord(record), nil
}

func (m *MemoryRepository) ListByType(_ context.Context, recordType string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0)
	for _, record := range m.records {
		if record.Type == recordType {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return notFound(id)
	}
	delete(m.records, id)
	return nil
}

// SetAssociationsTranslated writes the cached flag without touching any other
// column or the update timestamp.
func (m *MemoryRepository) SetAssociationsTranslated(_ context.Context, id uuid.UUID, value *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return notFound(id)
	}
	if value == nil {
		record.AssociationsTranslated = nil
		return nil
	}
	flag := *value
	record.AssociationsTranslated = &flag
	return nil
}
