// Package cascade maintains the cached association completeness flag.
//
// The flag is a weak-consistency cache. It is recomputed when the owning
// record is saved through the module facade or when RefreshType runs; a change
// to an associated record does not refresh the records that point at it.
package cascade

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Declarations resolves the cascading associations of a type.
type Declarations interface {
	Declaration(recordType string) (registry.Declaration, error)
}

// Records is the record store slice the cache reads and writes.
type Records interface {
	GetByID(ctx context.Context, id uuid.UUID) (*records.Record, error)
	ListByType(ctx context.Context, recordType string) ([]*records.Record, error)
	SetAssociationsTranslated(ctx context.Context, id uuid.UUID, value *bool) error
}

// Completeness evaluates associated records.
type Completeness interface {
	IsComplete(ctx context.Context, record *records.Record) (bool, error)
	IsIncomplete(ctx context.Context, record *records.Record) (bool, error)
}

// Result reports what Refresh did.
type Result struct {
	Applied bool
	Value   bool
}

// Option configures the cache.
type Option func(*Cache)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache computes and stores association completeness.
type Cache struct {
	registry     Declarations
	records      Records
	completeness Completeness
	logger       interfaces.Logger
}

func New(reg Declarations, recordStore Records, completeness Completeness, opts ...Option) *Cache {
	c := &Cache{
		registry:     reg,
		records:      recordStore,
		completeness: completeness,
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute ANDs the declared associations of record. A single reference needs
// its target complete; a collection needs no incomplete member. Absent
// relations, empty references and dangling ids are satisfied. The record's
// own attributes are not considered.
func (c *Cache) Compute(ctx context.Context, record *records.Record) (bool, error) {
	if record == nil {
		return false, records.ErrRecordRequired
	}
	decl, err := c.registry.Declaration(record.Type)
	if err != nil {
		return false, err
	}
	for _, name := range decl.Associations {
		ok, err := c.association(ctx, record, name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c *Cache) association(ctx context.Context, owner *records.Record, name string) (bool, error) {
	rel, ok := owner.Relation(name)
	if !ok {
		return true, nil
	}
	for _, id := range rel.IDs {
		target, err := c.records.GetByID(ctx, id)
		if err != nil {
			if records.IsNotFound(err) {
				logging.WithRecord(c.logger, owner.Type, owner.ID, "").
					Warn("cascade.association.dangling", "association", name, "target_id", id)
				continue
			}
			return false, err
		}
		if rel.Kind == records.RelationOne {
			complete, err := c.completeness.IsComplete(ctx, target)
			if err != nil {
				return false, err
			}
			if !complete {
				return false, nil
			}
			continue
		}
		incomplete, err := c.completeness.IsIncomplete(ctx, target)
		if err != nil {
			return false, err
		}
		if incomplete {
			return false, nil
		}
	}
	return true, nil
}

// Refresh recomputes the flag for record and writes it with a bypass write.
// Types without associations are left untouched.
func (c *Cache) Refresh(ctx context.Context, record *records.Record) (Result, error) {
	if record == nil {
		return Result{}, records.ErrRecordRequired
	}
	decl, err := c.registry.Declaration(record.Type)
	if err != nil {
		return Result{}, err
	}
	if !decl.Cascades() {
		return Result{}, nil
	}
	value, err := c.Compute(ctx, record)
	if err != nil {
		return Result{}, err
	}
	if err := c.records.SetAssociationsTranslated(ctx, record.ID, &value); err != nil {
		logging.WithRecord(c.logger, record.Type, record.ID, "").
			Error("cascade.refresh.failed", "error", err)
		return Result{}, err
	}
	record.AssociationsTranslated = &value
	return Result{Applied: true, Value: value}, nil
}

// RefreshType refreshes every record of recordType and returns how many flags
// were written.
func (c *Cache) RefreshType(ctx context.Context, recordType string) (int, error) {
	decl, err := c.registry.Declaration(recordType)
	if err != nil {
		return 0, err
	}
	if !decl.Cascades() {
		return 0, nil
	}
	all, err := c.records.ListByType(ctx, recordType)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, record := range all {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		result, err := c.Refresh(ctx, record)
		if err != nil {
			return refreshed, err
		}
		if result.Applied {
			refreshed++
		}
	}
	logging.WithRecord(c.logger, recordType, nil, "").
		Info("cascade.refresh_type.completed", "refreshed", refreshed)
	return refreshed, nil
}
