package translationscmd

import (
	"context"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-translatable/internal/commands"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

const (
	sweepCascadeMessageType = "translatable.cascade.sweep"
	defaultSweepExpression  = "@hourly"
	sweepCommandTimeout     = 10 * time.Minute
)

// CascadingTypes lists the record types that declare associations.
type CascadingTypes interface {
	Types() []string
	HasAssociations(recordType string) (bool, error)
}

// TypeRefresher recomputes the association flag for every record of a type.
type TypeRefresher interface {
	RefreshType(ctx context.Context, recordType string) (int, error)
}

// SweepCascadeCommand recomputes the association flag of every record of
// every cascading type.
type SweepCascadeCommand struct{}

// Type implements command.Message.
func (SweepCascadeCommand) Type() string { return sweepCascadeMessageType }

// Validate satisfies command.Message.
func (SweepCascadeCommand) Validate() error { return nil }

// CommandTimeout lets a sweep over every cascading record outlast the
// default command timeout.
func (SweepCascadeCommand) CommandTimeout() time.Duration { return sweepCommandTimeout }

type sweepConfig struct {
	cronConfig command.HandlerConfig
	opts       []commands.HandlerOption[SweepCascadeCommand]
}

// SweepOption customises the sweep handler.
type SweepOption func(*sweepConfig)

// SweepWithCronExpression overrides the schedule used when the handler is
// registered with a cron runner.
func SweepWithCronExpression(expression string) SweepOption {
	return func(cfg *sweepConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// SweepWithHandlerOptions forwards options to the wrapped command handler.
func SweepWithHandlerOptions(opts ...commands.HandlerOption[SweepCascadeCommand]) SweepOption {
	return func(cfg *sweepConfig) {
		cfg.opts = append(cfg.opts, opts...)
	}
}

// SweepCascadeHandler runs SweepCascadeCommand. It also satisfies
// command.CronCommand so hosts can schedule it.
type SweepCascadeHandler struct {
	inner      *commands.Handler[SweepCascadeCommand]
	cronConfig command.HandlerConfig
}

// NewSweepCascadeHandler constructs the sweep handler.
func NewSweepCascadeHandler(types CascadingTypes, refresher TypeRefresher, logger interfaces.Logger, opts ...SweepOption) *SweepCascadeHandler {
	cfg := sweepConfig{
		cronConfig: command.HandlerConfig{Expression: defaultSweepExpression},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, _ SweepCascadeCommand) error {
		total := 0
		swept := 0
		for _, recordType := range types.Types() {
			cascades, err := types.HasAssociations(recordType)
			if err != nil {
				return err
			}
			if !cascades {
				continue
			}
			refreshed, err := refresher.RefreshType(ctx, recordType)
			if err != nil {
				return err
			}
			total += refreshed
			swept++
		}
		baseLogger.Info("cascade.command.swept", "types", swept, "refreshed", total)
		return nil
	}

	handlerOpts := []commands.HandlerOption[SweepCascadeCommand]{
		commands.WithLogger[SweepCascadeCommand](baseLogger),
		commands.WithOperation[SweepCascadeCommand]("cascade.sweep"),
	}
	handlerOpts = append(handlerOpts, cfg.opts...)

	return &SweepCascadeHandler{
		inner:      commands.NewHandler(exec, handlerOpts...),
		cronConfig: cfg.cronConfig,
	}
}

// Execute satisfies command.Commander[SweepCascadeCommand].
func (h *SweepCascadeHandler) Execute(ctx context.Context, msg SweepCascadeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *SweepCascadeHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), SweepCascadeCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *SweepCascadeHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}
