package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrRecordRequired indicates a nil record was handed to the store.
var ErrRecordRequired = errors.New("records: record is required")

// Repository persists records. Update never rewrites the locale or the cached
// association flag; the flag only changes through SetAssociationsTranslated.
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByType(ctx context.Context, recordType string) ([]*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetAssociationsTranslated(ctx context.Context, id uuid.UUID, value *bool) error
}

// NotFoundError reports a missing record.
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

func notFound(id uuid.UUID) error {
	return &NotFoundError{Resource: "record", Key: id.String()}
}
