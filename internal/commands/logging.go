package commands

import (
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const commandModuleRoot = "translatable.commands"

// RecordScoped is implemented by messages that target a record type, a single
// record or one of its attributes. Handlers log that scope with every entry.
type RecordScoped interface {
	RecordScope() (recordType string, recordID *uuid.UUID, attribute string)
}

// CommandLogger returns a module-scoped logger for command handlers with the
// structured fields every command execution carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

func messageLogger(logger interfaces.Logger, msg command.Message, operation string) interfaces.Logger {
	fields := map[string]any{
		"command": command.GetMessageType(msg),
	}
	if operation != "" {
		fields["operation"] = operation
	}
	logger = logging.WithFields(logger, fields)

	scoped, ok := msg.(RecordScoped)
	if !ok {
		return logger
	}
	recordType, recordID, attribute := scoped.RecordScope()
	var id any
	if recordID != nil && *recordID != uuid.Nil {
		id = *recordID
	}
	return logging.WithRecord(logger, recordType, id, attribute)
}
