package translationscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/commands"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/translations"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const translateMessageType = "translatable.translations.translate"

// Translator is the translation service slice the handler needs.
type Translator interface {
	Translate(ctx context.Context, req translations.TranslateRequest) (*translations.Entry, error)
}

// TranslateCommand submits a translator's text for one record attribute.
type TranslateCommand struct {
	TranslatorID uuid.UUID `json:"translator_id"`
	OwnerType    string    `json:"owner_type"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Attribute    string    `json:"attribute"`
	Text         string    `json:"text"`
}

// Type implements command.Message.
func (TranslateCommand) Type() string { return translateMessageType }

// Validate satisfies command.Message.
func (m TranslateCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.OwnerType, validation.Required),
		validation.Field(&m.OwnerID, validation.By(requiredUUID)),
		validation.Field(&m.Attribute, validation.Required),
		validation.Field(&m.Text, validation.By(notBlank)),
	)
}

// RecordScope reports the record attribute the command writes.
func (m TranslateCommand) RecordScope() (string, *uuid.UUID, string) {
	id := m.OwnerID
	return m.OwnerType, &id, m.Attribute
}

func (m TranslateCommand) request() translations.TranslateRequest {
	return translations.TranslateRequest{
		TranslatorID: m.TranslatorID,
		OwnerType:    m.OwnerType,
		OwnerID:      m.OwnerID,
		Attribute:    m.Attribute,
		Text:         m.Text,
	}
}

// TranslateHandler runs TranslateCommand against the translation service.
type TranslateHandler struct {
	inner *commands.Handler[TranslateCommand]
}

// NewTranslateHandler constructs a handler wired to the provided translator.
func NewTranslateHandler(service Translator, logger interfaces.Logger, opts ...commands.HandlerOption[TranslateCommand]) *TranslateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg TranslateCommand) error {
		entry, err := service.Translate(ctx, msg.request())
		if err != nil {
			return err
		}
		logging.WithRecord(baseLogger, entry.OwnerType, entry.OwnerID, entry.AttributeName).
			Info("translations.command.translated", "verified", entry.Verified())
		return nil
	}

	handlerOpts := []commands.HandlerOption[TranslateCommand]{
		commands.WithLogger[TranslateCommand](baseLogger),
		commands.WithOperation[TranslateCommand]("translations.translate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TranslateHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[TranslateCommand].
func (h *TranslateHandler) Execute(ctx context.Context, msg TranslateCommand) error {
	return h.inner.Execute(ctx, msg)
}

func requiredUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func notBlank(value any) error {
	text, _ := value.(string)
	if translations.IsBlank(text) {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
