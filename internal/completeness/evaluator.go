// Package completeness decides whether the translations of a record cover
// every translatable attribute that carries a native value.
package completeness

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// Declarations resolves the translatable attributes of a type.
type Declarations interface {
	Declaration(recordType string) (registry.Declaration, error)
}

// RecordSource lists the records of a type.
type RecordSource interface {
	ListByType(ctx context.Context, recordType string) ([]*records.Record, error)
}

// EntrySource reads translation entries.
type EntrySource interface {
	ListByOwner(ctx context.Context, owner translations.Owner) ([]*translations.Entry, error)
	Coverage(ctx context.Context, ownerType string) (translations.Coverage, error)
}

// Status is the completeness verdict for one record.
type Status struct {
	Required   int
	Translated int
	Complete   bool
	Incomplete bool
}

// Classification splits the records of a type into complete and incomplete ids.
type Classification struct {
	Complete   []uuid.UUID
	Incomplete []uuid.UUID

	complete   map[uuid.UUID]struct{}
	incomplete map[uuid.UUID]struct{}
}

// IsComplete reports whether id was classified complete.
func (c Classification) IsComplete(id uuid.UUID) bool {
	_, ok := c.complete[id]
	return ok
}

// IsIncomplete reports whether id was classified incomplete.
func (c Classification) IsIncomplete(id uuid.UUID) bool {
	_, ok := c.incomplete[id]
	return ok
}

// ViewOptions tunes the complete/incomplete list views.
type ViewOptions struct {
	// IncludeAssociations also consults the cached association flag on
	// cascading types: complete requires a cached true, and a cached false
	// marks the record incomplete.
	IncludeAssociations bool
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Evaluator computes completeness from native values and stored entries.
type Evaluator struct {
	registry Declarations
	records  RecordSource
	entries  EntrySource
	logger   interfaces.Logger
}

func NewEvaluator(reg Declarations, recordSource RecordSource, entries EntrySource, opts ...Option) *Evaluator {
	e := &Evaluator{
		registry: reg,
		records:  recordSource,
		entries:  entries,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Required counts the translatable attributes of record whose native value is
// not blank. Blank native values impose no translation requirement.
func (e *Evaluator) Required(record *records.Record) (int, error) {
	attrs, err := e.requiredAttributes(record)
	if err != nil {
		return 0, err
	}
	return len(attrs), nil
}

// Status evaluates record against its stored entries.
func (e *Evaluator) Status(ctx context.Context, record *records.Record) (Status, error) {
	required, err := e.requiredAttributes(record)
	if err != nil {
		return Status{}, err
	}
	if len(required) == 0 {
		return verdict(0, 0), nil
	}
	if record.IsNew() {
		return verdict(len(required), 0), nil
	}
	entries, err := e.entries.ListByOwner(ctx, record.Owner())
	if err != nil {
		return Status{}, err
	}
	covered := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !translations.IsBlank(entry.Text) {
			covered[entry.AttributeName] = struct{}{}
		}
	}
	have := 0
	for _, attr := range required {
		if _, ok := covered[attr]; ok {
			have++
		}
	}
	return verdict(len(required), have), nil
}

// IsComplete reports whether every required attribute of record is translated.
func (e *Evaluator) IsComplete(ctx context.Context, record *records.Record) (bool, error) {
	status, err := e.Status(ctx, record)
	if err != nil {
		return false, err
	}
	return status.Complete, nil
}

// IsIncomplete reports whether record requires translations it does not have.
func (e *Evaluator) IsIncomplete(ctx context.Context, record *records.Record) (bool, error) {
	status, err := e.Status(ctx, record)
	if err != nil {
		return false, err
	}
	return status.Incomplete, nil
}

// Classify evaluates every record of recordType with one coverage query.
func (e *Evaluator) Classify(ctx context.Context, recordType string) (Classification, error) {
	_, statuses, err := e.evaluateType(ctx, recordType)
	if err != nil {
		return Classification{}, err
	}
	out := Classification{
		complete:   map[uuid.UUID]struct{}{},
		incomplete: map[uuid.UUID]struct{}{},
	}
	for id, status := range statuses {
		if status.Complete {
			out.Complete = append(out.Complete, id)
			out.complete[id] = struct{}{}
		}
		if status.Incomplete {
			out.Incomplete = append(out.Incomplete, id)
			out.incomplete[id] = struct{}{}
		}
	}
	sortIDs(out.Complete)
	sortIDs(out.Incomplete)
	return out, nil
}

// CompleteFilter returns a predicate selecting complete records of recordType.
func (e *Evaluator) CompleteFilter(ctx context.Context, recordType string) (func(uuid.UUID) bool, error) {
	classification, err := e.Classify(ctx, recordType)
	if err != nil {
		return nil, err
	}
	return classification.IsComplete, nil
}

// IncompleteFilter returns a predicate selecting incomplete records of recordType.
func (e *Evaluator) IncompleteFilter(ctx context.Context, recordType string) (func(uuid.UUID) bool, error) {
	classification, err := e.Classify(ctx, recordType)
	if err != nil {
		return nil, err
	}
	return classification.IsIncomplete, nil
}

// ListComplete returns the complete records of recordType.
func (e *Evaluator) ListComplete(ctx context.Context, recordType string, opts ViewOptions) ([]*records.Record, error) {
	return e.list(ctx, recordType, opts, true)
}

// ListIncomplete returns the incomplete records of recordType.
func (e *Evaluator) ListIncomplete(ctx context.Context, recordType string, opts ViewOptions) ([]*records.Record, error) {
	return e.list(ctx, recordType, opts, false)
}

func (e *Evaluator) list(ctx context.Context, recordType string, opts ViewOptions, complete bool) ([]*records.Record, error) {
	all, statuses, err := e.evaluateType(ctx, recordType)
	if err != nil {
		return nil, err
	}
	honourCache := false
	if opts.IncludeAssociations {
		decl, err := e.registry.Declaration(recordType)
		if err != nil {
			return nil, err
		}
		honourCache = decl.Cascades()
	}

	out := make([]*records.Record, 0, len(all))
	for _, record := range all {
		status := statuses[record.ID]
		flag := record.AssociationsTranslated
		var keep bool
		if complete {
			keep = status.Complete
			if honourCache {
				keep = keep && flag != nil && *flag
			}
		} else {
			keep = status.Incomplete
			if honourCache {
				keep = keep || (flag != nil && !*flag)
			}
		}
		if keep {
			out = append(out, record)
		}
	}
	return out, nil
}

func (e *Evaluator) evaluateType(ctx context.Context, recordType string) ([]*records.Record, map[uuid.UUID]Status, error) {
	decl, err := e.registry.Declaration(recordType)
	if err != nil {
		return nil, nil, err
	}
	all, err := e.records.ListByType(ctx, recordType)
	if err != nil {
		return nil, nil, err
	}
	coverage, err := e.entries.Coverage(ctx, recordType)
	if err != nil {
		return nil, nil, err
	}

	statuses := make(map[uuid.UUID]Status, len(all))
	for _, record := range all {
		required := requiredOf(decl, record)
		have := 0
		for _, attr := range required {
			if coverage.Has(record.ID, attr) {
				have++
			}
		}
		statuses[record.ID] = verdict(len(required), have)
	}
	logging.WithRecord(e.logger, recordType, nil, "").
		Debug("completeness.classified", "records", len(all))
	return all, statuses, nil
}

func (e *Evaluator) requiredAttributes(record *records.Record) ([]string, error) {
	if record == nil {
		return nil, records.ErrRecordRequired
	}
	decl, err := e.registry.Declaration(record.Type)
	if err != nil {
		return nil, err
	}
	return requiredOf(decl, record), nil
}

func requiredOf(decl registry.Declaration, record *records.Record) []string {
	var out []string
	for _, name := range decl.Names() {
		if !translations.IsBlank(record.Native(name)) {
			out = append(out, name)
		}
	}
	return out
}

// verdict applies the completeness rule. A record with nothing to translate
// is complete and never incomplete.
func verdict(required, have int) Status {
	if required == 0 {
		return Status{Complete: true}
	}
	complete := have == required
	return Status{
		Required:   required,
		Translated: have,
		Complete:   complete,
		Incomplete: !complete,
	}
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
