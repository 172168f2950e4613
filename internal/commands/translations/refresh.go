package translationscmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/cascade"
	"github.com/goliatone/go-translatable/internal/commands"
	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const refreshCascadeMessageType = "translatable.cascade.refresh"

// Refresher recomputes cached association flags.
type Refresher interface {
	Refresh(ctx context.Context, record *records.Record) (cascade.Result, error)
	RefreshType(ctx context.Context, recordType string) (int, error)
}

// RecordLookup fetches a record by id.
type RecordLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*records.Record, error)
}

// RefreshCascadeCommand recomputes the association flag of one record, or of
// every record of RecordType when RecordID is nil.
type RefreshCascadeCommand struct {
	RecordType string     `json:"record_type"`
	RecordID   *uuid.UUID `json:"record_id,omitempty"`
}

// Type implements command.Message.
func (RefreshCascadeCommand) Type() string { return refreshCascadeMessageType }

// Validate satisfies command.Message.
func (m RefreshCascadeCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.RecordType, validation.Required),
		validation.Field(&m.RecordID, validation.By(optionalUUID)),
	)
}

// RecordScope reports the refreshed type and, when set, the record.
func (m RefreshCascadeCommand) RecordScope() (string, *uuid.UUID, string) {
	return m.RecordType, m.RecordID, ""
}

// RefreshCascadeHandler runs RefreshCascadeCommand.
type RefreshCascadeHandler struct {
	inner *commands.Handler[RefreshCascadeCommand]
}

// NewRefreshCascadeHandler constructs a handler wired to the cascade cache.
func NewRefreshCascadeHandler(refresher Refresher, lookup RecordLookup, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCascadeCommand]) *RefreshCascadeHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RefreshCascadeCommand) error {
		if msg.RecordID == nil {
			refreshed, err := refresher.RefreshType(ctx, msg.RecordType)
			if err != nil {
				return err
			}
			logging.WithRecord(baseLogger, msg.RecordType, nil, "").
				Info("cascade.command.type_refreshed", "refreshed", refreshed)
			return nil
		}

		record, err := lookup.Get(ctx, *msg.RecordID)
		if err != nil {
			return err
		}
		if record.Type != msg.RecordType {
			return validation.Errors{
				"record_type": validation.NewError("cascade.record_type_mismatch", "does not match the stored record"),
			}
		}
		result, err := refresher.Refresh(ctx, record)
		if err != nil {
			return err
		}
		logging.WithRecord(baseLogger, record.Type, record.ID, "").
			Info("cascade.command.refreshed", "applied", result.Applied, "value", result.Value)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RefreshCascadeCommand]{
		commands.WithLogger[RefreshCascadeCommand](baseLogger),
		commands.WithOperation[RefreshCascadeCommand]("cascade.refresh"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RefreshCascadeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RefreshCascadeCommand].
func (h *RefreshCascadeHandler) Execute(ctx context.Context, msg RefreshCascadeCommand) error {
	return h.inner.Execute(ctx, msg)
}

func optionalUUID(value any) error {
	id, _ := value.(*uuid.UUID)
	if id != nil && *id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
