package logging

import (
	"context"

	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	rootModule         = "translatable"
	translationsModule = "translatable.translations"
	recordsModule      = "translatable.records"
	completenessModule = "translatable.completeness"
	cascadeModule      = "translatable.cascade"
	registryModule     = "translatable.registry"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached as
// a structured field so entries can be filtered per component.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TranslationsLogger returns the logger reserved for the translation store and upsert service.
func TranslationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translationsModule)
}

// RecordsLogger returns the logger reserved for record persistence.
func RecordsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, recordsModule)
}

// CompletenessLogger returns the logger reserved for completeness evaluation.
func CompletenessLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, completenessModule)
}

// CascadeLogger returns the logger reserved for the association cache.
func CascadeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cascadeModule)
}

// RegistryLogger returns the logger reserved for declaration loading.
func RegistryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, registryModule)
}

// WithRecord enriches the logger with the record coordinates. Empty values are skipped.
func WithRecord(logger interfaces.Logger, recordType string, recordID any, attribute string) interfaces.Logger {
	fields := map[string]any{}
	if recordType != "" {
		fields["record_type"] = recordType
	}
	if recordID != nil {
		fields["record_id"] = recordID
	}
	if attribute != "" {
		fields["attribute"] = attribute
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
