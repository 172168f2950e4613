package translatable

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/cascade"
	"github.com/goliatone/go-translatable/internal/completeness"
	"github.com/goliatone/go-translatable/internal/di"
	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/resolver"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

type (
	// Record is a persisted entity carrying native attribute values.
	Record = records.Record
	// Entry is one translated attribute value.
	Entry = translations.Entry
	// TranslateRequest carries one translator submission.
	TranslateRequest = translations.TranslateRequest
	// LocaleContext is the explicit locale in effect for a caller.
	LocaleContext = locale.Context
	// Status is the completeness verdict for one record.
	Status = completeness.Status
	// Classification splits the records of a type into complete and incomplete ids.
	Classification = completeness.Classification
	// ViewOptions tunes the complete and incomplete list views.
	ViewOptions = completeness.ViewOptions
	// Field is the paired native/translation binding of one attribute.
	Field = resolver.Field
	// CascadeResult reports what a cascade refresh did.
	CascadeResult = cascade.Result
	// Declaration describes the translatable attributes of a record type.
	Declaration = registry.Declaration
	// RegisterOption configures a declaration.
	RegisterOption = registry.Option
	// TranslationService exposes the entry views and the upsert workflow.
	TranslationService = translations.Service
	// ListOptions narrows entry list views.
	ListOptions = translations.ListOptions
)

var (
	// NewRecord builds an unsaved record of recordType.
	NewRecord = records.NewRecord
	// WithAssociations declares cascading associations.
	WithAssociations = registry.WithAssociations
	// WithDefault sets the translated-form default of an attribute.
	WithDefault = registry.WithDefault
	// IsValidationError reports whether err is a translation validation failure.
	IsValidationError = translations.IsValidationError

	ErrTypeNotRegistered        = registry.ErrTypeNotRegistered
	ErrAttributeNotTranslatable = registry.ErrAttributeNotTranslatable
)

// Module represents the top level translatable runtime facade.
type Module struct {
	container *di.Container
	logger    interfaces.Logger
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{
		container: container,
		logger:    logging.ModuleLogger(container.LoggerProvider(), "translatable"),
	}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases resources the module opened.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Locale returns the configured locale context.
func (m *Module) Locale() LocaleContext {
	return m.container.Locale()
}

// Register declares the translatable attributes of recordType.
func (m *Module) Register(recordType string, attributes []string, opts ...RegisterOption) error {
	return m.container.Registry().Register(recordType, attributes, opts...)
}

// Registry returns the declaration registry.
func (m *Module) Registry() *registry.Registry {
	return m.container.Registry()
}

// SaveRecord persists record with its staged translations and then refreshes
// its cached association flag.
func (m *Module) SaveRecord(ctx context.Context, lc LocaleContext, record *Record) (*Record, error) {
	saved, err := m.container.RecordService().Save(ctx, lc, record)
	if err != nil {
		return nil, err
	}
	result, err := m.container.Cascade().Refresh(ctx, saved)
	if err != nil {
		logging.WithRecord(m.logger, saved.Type, saved.ID, "").Error("module.save.cascade_failed", "error", err)
		return nil, err
	}
	if result.Applied {
		value := result.Value
		saved.AssociationsTranslated = &value
		record.AssociationsTranslated = &value
	}
	return saved, nil
}

// GetRecord loads a record by id.
func (m *Module) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	return m.container.RecordService().Get(ctx, id)
}

// DeleteRecord removes a record and every translation it owns.
func (m *Module) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return m.container.RecordService().Delete(ctx, id)
}

// Translate upserts one translation immediately.
func (m *Module) Translate(ctx context.Context, req TranslateRequest) (*Entry, error) {
	return m.container.TranslationService().Translate(ctx, req)
}

// Translations returns the translation service for list views.
func (m *Module) Translations() TranslationService {
	return m.container.TranslationService()
}

// Localized returns the value of attribute as a reader in lc sees it.
func (m *Module) Localized(ctx context.Context, lc LocaleContext, record *Record, attribute string) (string, error) {
	return m.container.Resolver().Localized(ctx, lc, record, attribute)
}

// TranslatedForm returns the translation of attribute or its declared default.
func (m *Module) TranslatedForm(ctx context.Context, record *Record, attribute string) (string, error) {
	return m.container.Resolver().TranslatedForm(ctx, record, attribute)
}

// SetTranslatedForm stages a translation on record; SaveRecord persists it.
func (m *Module) SetTranslatedForm(ctx context.Context, record *Record, attribute, value string) error {
	return m.container.Resolver().SetTranslatedForm(ctx, record, attribute, value)
}

// Fields returns the paired bindings for every declared attribute of record.
func (m *Module) Fields(ctx context.Context, lc LocaleContext, record *Record) ([]Field, error) {
	return m.container.Resolver().Fields(ctx, lc, record)
}

// Untranslated returns the native value entry translates.
func (m *Module) Untranslated(ctx context.Context, entry *Entry) (string, error) {
	return m.container.Resolver().Untranslated(ctx, entry)
}

// Status evaluates the completeness of record.
func (m *Module) Status(ctx context.Context, record *Record) (Status, error) {
	return m.container.Evaluator().Status(ctx, record)
}

// IsComplete reports whether every required attribute of record is translated.
func (m *Module) IsComplete(ctx context.Context, record *Record) (bool, error) {
	return m.container.Evaluator().IsComplete(ctx, record)
}

// IsIncomplete reports whether record requires translations it does not have.
func (m *Module) IsIncomplete(ctx context.Context, record *Record) (bool, error) {
	return m.container.Evaluator().IsIncomplete(ctx, record)
}

// Classify splits every record of recordType into complete and incomplete ids.
func (m *Module) Classify(ctx context.Context, recordType string) (Classification, error) {
	return m.container.Evaluator().Classify(ctx, recordType)
}

// ListComplete returns the complete records of recordType.
func (m *Module) ListComplete(ctx context.Context, recordType string, opts ViewOptions) ([]*Record, error) {
	return m.container.Evaluator().ListComplete(ctx, recordType, opts)
}

// ListIncomplete returns the incomplete records of recordType.
func (m *Module) ListIncomplete(ctx context.Context, recordType string, opts ViewOptions) ([]*Record, error) {
	return m.container.Evaluator().ListIncomplete(ctx, recordType, opts)
}

// RefreshType recomputes the association flag for every record of recordType.
func (m *Module) RefreshType(ctx context.Context, recordType string) (int, error) {
	return m.container.Cascade().RefreshType(ctx, recordType)
}
