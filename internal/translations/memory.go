package translations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory translation store for tests and scaffolding.
// The key index plays the role of the unique constraint.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
	keys    map[Key]uuid.UUID
	now     func() time.Time
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[uuid.UUID]*Entry),
		keys:    make(map[Key]uuid.UUID),
		now:     time.Now,
	}
}

// Create inserts entry, failing with ErrDuplicateEntry when its key is taken.
func (m *MemoryRepository) Create(_ context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.keys[entry.Key()]; exists {
		return nil, ErrDuplicateEntry
	}
	return m.insertLocked(entry), nil
}

// Update replaces text and translator of an existing entry.
func (m *MemoryRepository) Update(_ context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.entries[entry.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "translation_entry", Key: entry.ID.String()}
	}
	current.Text = entry.Text
	current.TranslatorID = cloneEntry(entry).TranslatorID
	current.UpdatedAt = m.now().UTC()
	return cloneEntry(current), nil
}

// Upsert finds the entry by key or inserts it, under a single lock.
func (m *MemoryRepository) Upsert(_ context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, exists := m.keys[entry.Key()]; exists {
		current := m.entries[id]
		current.Text = entry.Text
		current.TranslatorID = cloneEntry(entry).TranslatorID
		current.UpdatedAt = m.now().UTC()
		return cloneEntry(current), nil
	}
	return m.insertLocked(entry), nil
}

// Delete removes an entry by id.
func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.entries[id]
	if !ok {
		return &NotFoundError{Resource: "translation_entry", Key: id.String()}
	}
	delete(m.keys, current.Key())
	delete(m.entries, id)
	return nil
}

// DeleteByOwner removes every entry of owner.
func (m *MemoryRepository) DeleteByOwner(_ context.Context, owner Owner) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.entries {
		if entry.Owner() != owner {
			continue
		}
		delete(m.keys, entry.Key())
		delete(m.entries, id)
		removed++
	}
	return removed, nil
}

// GetByID fetches an entry by id.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, &NotFoundError{Resource: "translation_entry", Key: id.String()}
	}
	return cloneEntry(entry), nil
}

// GetByKey fetches the entry for an owner attribute.
func (m *MemoryRepository) GetByKey(_ context.Context, key Key) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.keys[key]
	if !ok {
		return nil, &NotFoundError{Resource: "translation_entry", Key: key.String()}
	}
	return cloneEntry(m.entries[id]), nil
}

// ListByOwner returns the entries of owner ordered by attribute.
func (m *MemoryRepository) ListByOwner(_ context.Context, owner Owner) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, 0)
	for _, entry := range m.entries {
		if entry.Owner() == owner {
			out = append(out, cloneEntry(entry))
		}
	}
	sortEntries(out)
	return out, nil
}

// List returns entries matching opts.
func (m *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, 0)
	for _, entry := range m.entries {
		if opts.matches(entry) {
			out = append(out, cloneEntry(entry))
		}
	}
	sortEntries(out)
	return out, nil
}

// Coverage groups non-blank entries of ownerType by owner.
func (m *MemoryRepository) Coverage(_ context.Context, ownerType string) (Coverage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := Coverage{}
	for _, entry := range m.entries {
		if entry.OwnerType != ownerType || IsBlank(entry.Text) {
			continue
		}
		out.add(entry.OwnerID, entry.AttributeName)
	}
	return out, nil
}

func (m *MemoryRepository) insertLocked(entry *Entry) *Entry {
	stored := cloneEntry(entry)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := m.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.entries[stored.ID] = stored
	m.keys[stored.Key()] = stored.ID
	return cloneEntry(stored)
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.OwnerType != b.OwnerType {
			return a.OwnerType < b.OwnerType
		}
		if a.OwnerID != b.OwnerID {
			return a.OwnerID.String() < b.OwnerID.String()
		}
		return a.AttributeName < b.AttributeName
	})
}
