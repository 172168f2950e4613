package translations

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ChangeKind classifies a staged change.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one pending write produced by Set.Pending.
type Change struct {
	Kind  ChangeKind
	Entry *Entry
}

// Set holds the entries of one owner together with changes staged by
// attribute writes. Changes reach the store only on Commit.
type Set struct {
	owner     Owner
	loaded    bool
	persisted map[string]*Entry
	current   map[string]*Entry
	dirty     map[string]struct{}
}

// NewSet returns an empty, loaded set for an owner that has no stored entries yet.
func NewSet(owner Owner) *Set {
	return LoadedSet(owner, nil)
}

// LoadedSet wraps the stored entries of owner.
func LoadedSet(owner Owner, entries []*Entry) *Set {
	s := &Set{
		owner:     owner,
		loaded:    true,
		persisted: make(map[string]*Entry, len(entries)),
		current:   make(map[string]*Entry, len(entries)),
		dirty:     map[string]struct{}{},
	}
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		s.persisted[entry.AttributeName] = cloneEntry(entry)
		s.current[entry.AttributeName] = cloneEntry(entry)
	}
	return s
}

// Load reads the stored entries of owner into a fresh set.
func Load(ctx context.Context, repo Repository, owner Owner) (*Set, error) {
	if repo == nil {
		return nil, errors.New("translations: repository required")
	}
	entries, err := repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return LoadedSet(owner, entries), nil
}

// Loaded reports whether the set reflects the stored entries.
func (s *Set) Loaded() bool {
	return s != nil && s.loaded
}

// Owner returns the owner the set is bound to.
func (s *Set) Owner() Owner {
	return s.owner
}

// Bind points the set (and its staged entries) at owner. Used once a new
// record has been assigned its identity.
func (s *Set) Bind(owner Owner) {
	s.owner = owner
	for _, entry := range s.current {
		entry.OwnerType = owner.Type
		entry.OwnerID = owner.ID
	}
}

// Clone returns an independent copy of the set, staged changes included.
func (s *Set) Clone() *Set {
	if s == nil {
		return nil
	}
	out := &Set{
		owner:     s.owner,
		loaded:    s.loaded,
		persisted: make(map[string]*Entry, len(s.persisted)),
		current:   make(map[string]*Entry, len(s.current)),
		dirty:     make(map[string]struct{}, len(s.dirty)),
	}
	for attr, entry := range s.persisted {
		out.persisted[attr] = cloneEntry(entry)
	}
	for attr, entry := range s.current {
		out.current[attr] = cloneEntry(entry)
	}
	for attr := range s.dirty {
		out.dirty[attr] = struct{}{}
	}
	return out
}

// Get returns the current entry for attribute, including staged changes.
func (s *Set) Get(attribute string) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	entry, ok := s.current[attribute]
	if !ok {
		return nil, false
	}
	return cloneEntry(entry), true
}

// Text returns the current text for attribute.
func (s *Set) Text(attribute string) (string, bool) {
	entry, ok := s.Get(attribute)
	if !ok {
		return "", false
	}
	return entry.Text, true
}

// Put stages text for attribute. An existing entry is updated in place and
// keeps its translator; otherwise a new unverified entry is staged. Blank
// text stages removal.
func (s *Set) Put(attribute, text string) {
	if IsBlank(text) {
		s.Remove(attribute)
		return
	}
	if entry, ok := s.current[attribute]; ok {
		entry.Text = text
	} else if prior, ok := s.persisted[attribute]; ok {
		revived := cloneEntry(prior)
		revived.Text = text
		s.current[attribute] = revived
	} else {
		s.current[attribute] = &Entry{
			OwnerType:     s.owner.Type,
			OwnerID:       s.owner.ID,
			AttributeName: attribute,
			Text:          text,
		}
	}
	s.dirty[attribute] = struct{}{}
}

// Remove stages deletion of the entry for attribute. It reports whether an
// entry was present.
func (s *Set) Remove(attribute string) bool {
	if _, ok := s.current[attribute]; !ok {
		return false
	}
	delete(s.current, attribute)
	s.dirty[attribute] = struct{}{}
	return true
}

// Pending lists the writes Commit would perform, ordered by attribute.
func (s *Set) Pending() []Change {
	if s == nil {
		return nil
	}
	attrs := make([]string, 0, len(s.dirty))
	for attr := range s.dirty {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	changes := make([]Change, 0, len(attrs))
	for _, attr := range attrs {
		prior, had := s.persisted[attr]
		next, has := s.current[attr]
		switch {
		case had && !has:
			changes = append(changes, Change{Kind: ChangeDelete, Entry: cloneEntry(prior)})
		case !had && has:
			changes = append(changes, Change{Kind: ChangeCreate, Entry: cloneEntry(next)})
		case had && has && prior.Text != next.Text:
			changes = append(changes, Change{Kind: ChangeUpdate, Entry: cloneEntry(next)})
		}
	}
	return changes
}

// Commit applies pending changes to repo. On success the set reflects the
// stored state and has no pending changes. A create that collides with an
// entry written concurrently falls back to updating that entry's text.
func (s *Set) Commit(ctx context.Context, repo Repository) error {
	if s == nil {
		return nil
	}
	if repo == nil {
		return errors.New("translations: repository required")
	}
	for _, change := range s.Pending() {
		attr := change.Entry.AttributeName
		switch change.Kind {
		case ChangeDelete:
			if err := repo.Delete(ctx, change.Entry.ID); err != nil && !IsNotFound(err) {
				return fmt.Errorf("translations: delete %q: %w", attr, err)
			}
			delete(s.persisted, attr)
		case ChangeCreate:
			created, err := repo.Create(ctx, change.Entry)
			if errors.Is(err, ErrDuplicateEntry) {
				created, err = s.overwrite(ctx, repo, change.Entry)
			}
			if err != nil {
				return fmt.Errorf("translations: create %q: %w", attr, err)
			}
			s.persisted[attr] = cloneEntry(created)
			s.current[attr] = cloneEntry(created)
		case ChangeUpdate:
			updated, err := repo.Update(ctx, change.Entry)
			if err != nil {
				return fmt.Errorf("translations: update %q: %w", attr, err)
			}
			s.persisted[attr] = cloneEntry(updated)
			s.current[attr] = cloneEntry(updated)
		}
		delete(s.dirty, attr)
	}
	s.dirty = map[string]struct{}{}
	return nil
}

func (s *Set) overwrite(ctx context.Context, repo Repository, staged *Entry) (*Entry, error) {
	existing, err := repo.GetByKey(ctx, staged.Key())
	if err != nil {
		return nil, err
	}
	existing.Text = staged.Text
	return repo.Update(ctx, existing)
}

// Entries returns the current entries ordered by attribute.
func (s *Set) Entries() []*Entry {
	if s == nil {
		return nil
	}
	out := make([]*Entry, 0, len(s.current))
	for _, entry := range s.current {
		out = append(out, cloneEntry(entry))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttributeName < out[j].AttributeName
	})
	return out
}
