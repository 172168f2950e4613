package records

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const recordValidationCode = "RECORD_INVALID"

// Service describes record persistence with staged translation writes.
type Service interface {
	// Save creates or updates record and flushes staged translation changes.
	// New records get their locale stamped from lc when none is set.
	Save(ctx context.Context, lc locale.Context, record *Record) (*Record, error)
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, recordType string) ([]*Record, error)
	// Delete removes the record and every translation entry it owns.
	Delete(ctx context.Context, id uuid.UUID) error
	LoadTranslations(ctx context.Context, record *Record) error
	EnsureTranslations(ctx context.Context, record *Record) error
}

// DeclarationLookup exposes the registry lookups the service needs.
type DeclarationLookup interface {
	Declaration(recordType string) (registry.Declaration, error)
}

// ServiceOption configures the record service.
type ServiceOption func(*service)

// WithRegistry requires saved records to belong to a registered type.
func WithRegistry(lookup DeclarationLookup) ServiceOption {
	return func(s *service) {
		if lookup != nil {
			s.registry = lookup
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTxRunner makes Save and Delete write the record and its entries in one
// transaction.
func WithTxRunner(runner TxRunner) ServiceOption {
	return func(s *service) {
		if runner != nil {
			s.tx = runner
		}
	}
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

type service struct {
	records  Repository
	entries  translations.Repository
	registry DeclarationLookup
	tx       TxRunner
	logger   interfaces.Logger
	newID    func() uuid.UUID
}

// NewService wires the record service over the record and entry stores.
func NewService(records Repository, entries translations.Repository, opts ...ServiceOption) Service {
	s := &service{
		records: records,
		entries: entries,
		logger:  logging.NoOp(),
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Save(ctx context.Context, lc locale.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, ErrRecordRequired
	}
	logger := logging.WithRecord(s.baseLogger(ctx), record.Type, record.ID, "")

	if err := record.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "record is invalid").
			WithTextCode(recordValidationCode)
	}
	if s.registry != nil {
		if _, err := s.registry.Declaration(record.Type); err != nil {
			return nil, fmt.Errorf("records: save: %w", err)
		}
	}

	// The caller's staged set is only replaced once every write has landed.
	isNew := record.IsNew()
	staged := record.Translations.Clone()
	write := func(ctx context.Context, recordStore Repository, entryStore translations.Repository) (*Record, error) {
		var (
			saved *Record
			err   error
		)
		if isNew {
			candidate := cloneRecord(record)
			candidate.ID = s.newID()
			if locale.Normalize(candidate.Locale) == "" {
				candidate.Locale = creationLocale(lc)
			}
			saved, err = recordStore.Create(ctx, candidate)
		} else {
			saved, err = recordStore.Update(ctx, record)
		}
		if err != nil {
			logger.Error("records.save.failed", "error", err)
			return nil, err
		}

		if staged == nil && isNew {
			staged = translations.NewSet(saved.Owner())
		}
		if staged != nil {
			staged.Bind(saved.Owner())
			if err := staged.Commit(ctx, entryStore); err != nil {
				logger.Error("records.save.translations_failed", "record_id", saved.ID, "error", err)
				return saved, err
			}
		}
		return saved, nil
	}

	var (
		saved *Record
		err   error
	)
	if s.tx != nil {
		err = s.tx.RunInTx(ctx, func(ctx context.Context, recordStore Repository, entryStore translations.Repository) error {
			var err error
			saved, err = write(ctx, recordStore, entryStore)
			return err
		})
	} else {
		saved, err = s.writeCompensated(ctx, record, write)
	}
	if err != nil {
		return nil, err
	}
	saved.Translations = staged

	record.ID = saved.ID
	record.Locale = saved.Locale
	record.CreatedAt = saved.CreatedAt
	record.UpdatedAt = saved.UpdatedAt
	record.AssociationsTranslated = saved.AssociationsTranslated
	record.Translations = staged

	logger.Debug("records.save.succeeded", "record_id", saved.ID)
	return saved, nil
}

type writeFunc func(ctx context.Context, recordStore Repository, entryStore translations.Repository) (*Record, error)

// writeCompensated runs write against stores without transactions. When the
// record row was written but a later step failed, the record and its entries
// are put back the way they were.
func (s *service) writeCompensated(ctx context.Context, record *Record, write writeFunc) (*Record, error) {
	var (
		previous *Record
		entries  []*translations.Entry
	)
	if !record.IsNew() {
		var err error
		if previous, err = s.records.GetByID(ctx, record.ID); err != nil {
			return nil, err
		}
		if entries, err = s.entries.ListByOwner(ctx, record.Owner()); err != nil {
			return nil, err
		}
	}

	saved, err := write(ctx, s.records, s.entries)
	if err == nil {
		return saved, nil
	}
	if saved == nil {
		return nil, err
	}
	if restoreErr := s.restore(ctx, saved.Owner(), previous, entries); restoreErr != nil {
		logging.WithRecord(s.baseLogger(ctx), saved.Type, saved.ID, "").
			Error("records.save.restore_failed", "error", restoreErr)
		return nil, errors.Join(err, restoreErr)
	}
	return nil, err
}

func (s *service) restore(ctx context.Context, owner translations.Owner, previous *Record, entries []*translations.Entry) error {
	if _, err := s.entries.DeleteByOwner(ctx, owner); err != nil {
		return err
	}
	if previous == nil {
		return s.records.Delete(ctx, owner.ID)
	}
	for _, entry := range entries {
		if _, err := s.entries.Upsert(ctx, entry); err != nil {
			return err
		}
	}
	_, err := s.records.Update(ctx, previous)
	return err
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.records.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, recordType string) ([]*Record, error) {
	return s.records.ListByType(ctx, recordType)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	logger := logging.WithRecord(s.baseLogger(ctx), record.Type, record.ID, "")

	removed := 0
	remove := func(ctx context.Context, recordStore Repository, entryStore translations.Repository) error {
		var err error
		removed, err = entryStore.DeleteByOwner(ctx, record.Owner())
		if err != nil {
			logger.Error("records.delete.translations_failed", "error", err)
			return err
		}
		if err := recordStore.Delete(ctx, id); err != nil {
			logger.Error("records.delete.failed", "error", err)
			return err
		}
		return nil
	}
	if s.tx != nil {
		err = s.tx.RunInTx(ctx, remove)
	} else {
		err = remove(ctx, s.records, s.entries)
	}
	if err != nil {
		return err
	}
	logger.Debug("records.delete.succeeded", "entries_removed", removed)
	return nil
}

func (s *service) LoadTranslations(ctx context.Context, record *Record) error {
	if record == nil {
		return ErrRecordRequired
	}
	if record.IsNew() {
		record.Translations = translations.NewSet(record.Owner())
		return nil
	}
	set, err := translations.Load(ctx, s.entries, record.Owner())
	if err != nil {
		return err
	}
	record.Translations = set
	return nil
}

func (s *service) EnsureTranslations(ctx context.Context, record *Record) error {
	if record == nil {
		return ErrRecordRequired
	}
	if record.Translations.Loaded() {
		return nil
	}
	return s.LoadTranslations(ctx, record)
}

func (s *service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := logging.OrNoOp(s.logger)
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

func creationLocale(lc locale.Context) string {
	if lc.Current != "" {
		return lc.Current
	}
	return lc.Default()
}
