package translations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEntryRequired indicates a nil entry was handed to the store.
	ErrEntryRequired = errors.New("translations: entry is required")
	// ErrDuplicateEntry indicates a plain create collided with an existing owner/attribute pair.
	ErrDuplicateEntry = errors.New("translations: entry already exists for owner attribute")
)

// Repository is the translation store. Upsert must be atomic with respect to
// the (owner_type, owner_id, attribute_name) triple; implementations may not
// emulate it with an unsynchronised lookup followed by an insert.
type Repository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	Update(ctx context.Context, entry *Entry) (*Entry, error)
	Upsert(ctx context.Context, entry *Entry) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner Owner) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByKey(ctx context.Context, key Key) (*Entry, error)
	ListByOwner(ctx context.Context, owner Owner) ([]*Entry, error)
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
	Coverage(ctx context.Context, ownerType string) (Coverage, error)
}

// Coverage maps owner ids to the attributes holding non-blank translations.
type Coverage map[uuid.UUID]map[string]struct{}

// Has reports whether owner has a non-blank translation for attribute.
func (c Coverage) Has(owner uuid.UUID, attribute string) bool {
	attrs, ok := c[owner]
	if !ok {
		return false
	}
	_, ok = attrs[attribute]
	return ok
}

func (c Coverage) add(owner uuid.UUID, attribute string) {
	attrs, ok := c[owner]
	if !ok {
		attrs = map[string]struct{}{}
		c[owner] = attrs
	}
	attrs[attribute] = struct{}{}
}

// ListOptions narrows List results. Zero values do not filter.
type ListOptions struct {
	OwnerType    string
	Verified     *bool
	TranslatorID *uuid.UUID
}

func (o ListOptions) matches(entry *Entry) bool {
	if o.OwnerType != "" && entry.OwnerType != o.OwnerType {
		return false
	}
	if o.Verified != nil && entry.Verified() != *o.Verified {
		return false
	}
	if o.TranslatorID != nil {
		if entry.TranslatorID == nil || *entry.TranslatorID != *o.TranslatorID {
			return false
		}
	}
	return true
}

// NotFoundError reports a missing entry.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.OwnerType, k.OwnerID, k.Attribute)
}
