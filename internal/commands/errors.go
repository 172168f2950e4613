package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/translations"
)

const (
	TextCodeCommandInvalid       = "TRANSLATABLE_COMMAND_INVALID"
	TextCodeCommandCanceled      = "TRANSLATABLE_COMMAND_CANCELED"
	TextCodeCommandTimeout       = "TRANSLATABLE_COMMAND_TIMEOUT"
	TextCodeCommandContext       = "TRANSLATABLE_COMMAND_CONTEXT_ERROR"
	TextCodeCommandFailed        = "TRANSLATABLE_COMMAND_FAILED"
	TextCodeTypeNotRegistered    = "TRANSLATABLE_TYPE_NOT_REGISTERED"
	TextCodeAttributeNotDeclared = "TRANSLATABLE_ATTRIBUTE_NOT_TRANSLATABLE"
	TextCodeRecordNotFound       = "TRANSLATABLE_RECORD_NOT_FOUND"
	TextCodeTranslationNotFound  = "TRANSLATABLE_TRANSLATION_NOT_FOUND"
	TextCodeTranslationDuplicate = "TRANSLATABLE_TRANSLATION_DUPLICATE"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(TextCodeCommandInvalid)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(TextCodeCommandCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(TextCodeCommandTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(TextCodeCommandContext)
	}
}

// wrapExecuteError categorises handler failures. Registry gaps and missing
// records keep their sentinel reachable through errors.Is; errors the services
// already categorised pass through.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, registry.ErrTypeNotRegistered):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "record type is not registered").
			WithTextCode(TextCodeTypeNotRegistered).
			WithMetadata(lookupMetadata(err))
	case errors.Is(err, registry.ErrAttributeNotTranslatable):
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "attribute is not translatable").
			WithTextCode(TextCodeAttributeNotDeclared).
			WithMetadata(lookupMetadata(err))
	case records.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "record not found").
			WithTextCode(TextCodeRecordNotFound)
	case translations.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "translation not found").
			WithTextCode(TextCodeTranslationNotFound)
	case errors.Is(err, translations.ErrDuplicateEntry):
		return goerrors.Wrap(err, goerrors.CategoryConflict, "translation already exists").
			WithTextCode(TextCodeTranslationDuplicate)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(TextCodeCommandFailed)
}

func lookupMetadata(err error) map[string]any {
	var lookup *registry.LookupError
	if !errors.As(err, &lookup) {
		return nil
	}
	meta := map[string]any{"record_type": lookup.Type}
	if lookup.Attribute != "" {
		meta["attribute"] = lookup.Attribute
	}
	return meta
}
