// Package resolver is the per-attribute read/write surface over records and
// their translation entries.
package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/locale"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/translations"
)

// Declarations resolves attribute declarations.
type Declarations interface {
	Declaration(recordType string) (registry.Declaration, error)
	Attribute(recordType, name string) (registry.Attribute, error)
}

// Records loads records and their translation sets.
type Records interface {
	Get(ctx context.Context, id uuid.UUID) (*records.Record, error)
	EnsureTranslations(ctx context.Context, record *records.Record) error
}

// Field is the paired binding rendered for one attribute: the native input and
// the translation input in the alternate locale.
type Field struct {
	Attribute         string
	Native            string
	Translated        string
	Localized         string
	TranslationLocale string
}

// Resolver reads and stages attribute values.
type Resolver struct {
	registry Declarations
	records  Records
}

func New(reg Declarations, recordSource Records) *Resolver {
	return &Resolver{registry: reg, records: recordSource}
}

// Localized returns the value a viewer in lc reads for attribute: the native
// value when lc has no current locale, when the record has no locale or when
// they match; otherwise the translation, falling back to the native value.
func (r *Resolver) Localized(ctx context.Context, lc locale.Context, record *records.Record, attribute string) (string, error) {
	if _, err := r.attribute(record, attribute); err != nil {
		return "", err
	}
	if lc.Native(record.Locale) {
		return record.Native(attribute), nil
	}
	if err := r.records.EnsureTranslations(ctx, record); err != nil {
		return "", err
	}
	if text, ok := record.Translations.Text(attribute); ok {
		return text, nil
	}
	return record.Native(attribute), nil
}

// TranslatedForm returns the translation of attribute or, when there is none,
// the declared default. It never falls back to the native value.
func (r *Resolver) TranslatedForm(ctx context.Context, record *records.Record, attribute string) (string, error) {
	attr, err := r.attribute(record, attribute)
	if err != nil {
		return "", err
	}
	if err := r.records.EnsureTranslations(ctx, record); err != nil {
		return "", err
	}
	if text, ok := record.Translations.Text(attribute); ok {
		return text, nil
	}
	return attr.Default, nil
}

// SetTranslatedForm stages value as the translation of attribute. Blank
// values stage removal of the existing entry. Changes persist when the record
// is saved.
func (r *Resolver) SetTranslatedForm(ctx context.Context, record *records.Record, attribute, value string) error {
	if _, err := r.attribute(record, attribute); err != nil {
		return err
	}
	if err := r.records.EnsureTranslations(ctx, record); err != nil {
		return err
	}
	if translations.IsBlank(value) {
		record.Translations.Remove(attribute)
		return nil
	}
	record.Translations.Put(attribute, value)
	return nil
}

// Fields returns the paired bindings for every declared attribute in
// declaration order.
func (r *Resolver) Fields(ctx context.Context, lc locale.Context, record *records.Record) ([]Field, error) {
	if record == nil {
		return nil, records.ErrRecordRequired
	}
	decl, err := r.registry.Declaration(record.Type)
	if err != nil {
		return nil, err
	}
	translationLocale, err := lc.AlternateLocale(record.Locale)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(decl.Attributes))
	for _, attr := range decl.Attributes {
		translated, err := r.TranslatedForm(ctx, record, attr.Name)
		if err != nil {
			return nil, err
		}
		localized, err := r.Localized(ctx, lc, record, attr.Name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{
			Attribute:         attr.Name,
			Native:            record.Native(attr.Name),
			Translated:        translated,
			Localized:         localized,
			TranslationLocale: translationLocale,
		})
	}
	return fields, nil
}

// Untranslated returns the native value of the attribute entry translates.
func (r *Resolver) Untranslated(ctx context.Context, entry *translations.Entry) (string, error) {
	if entry == nil {
		return "", translations.ErrEntryRequired
	}
	owner, err := r.records.Get(ctx, entry.OwnerID)
	if err != nil {
		return "", err
	}
	if owner.Type != entry.OwnerType {
		return "", fmt.Errorf("resolver: entry owner type %q does not match record type %q", entry.OwnerType, owner.Type)
	}
	if _, err := r.attribute(owner, entry.AttributeName); err != nil {
		return "", err
	}
	return owner.Native(entry.AttributeName), nil
}

func (r *Resolver) attribute(record *records.Record, attribute string) (registry.Attribute, error) {
	if record == nil {
		return registry.Attribute{}, records.ErrRecordRequired
	}
	return r.registry.Attribute(record.Type, attribute)
}
