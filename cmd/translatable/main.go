package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	translatable "github.com/goliatone/go-translatable"
	"github.com/goliatone/go-translatable/commands"
	translationscmd "github.com/goliatone/go-translatable/internal/commands/translations"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "translatable",
		Short: "Inspect and maintain record translations",
		Long: `translatable tracks per-attribute translations of records.

Commands:
  status     List complete and incomplete records of a type
  translate  Store a translation for one record attribute
  refresh    Recompute the cached association flag of a type
  sweep      Recompute the cached flag of every cascading type

Configuration is read from --config (YAML) with TRANSLATABLE_* environment
overrides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML configuration file")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newRefreshCmd(),
		newSweepCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session holds a module with its command handlers subscribed to the
// go-command dispatcher.
type session struct {
	module       *translatable.Module
	registration *commands.RegistrationResult
}

func openSession() (*session, error) {
	cfg, err := translatable.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	module, err := translatable.New(cfg)
	if err != nil {
		return nil, err
	}
	registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
		Dispatcher: commands.GlobalDispatcher{},
	})
	if err != nil {
		registration.Unsubscribe()
		_ = module.Close()
		return nil, err
	}
	return &session{module: module, registration: registration}, nil
}

func (s *session) Close() error {
	s.registration.Unsubscribe()
	return s.module.Close()
}

func withSession(fn func(ctx context.Context, s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(context.Background(), s)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <type>",
		Short: "List complete and incomplete records of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				classification, err := s.module.Classify(ctx, args[0])
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), args[0], classification)
				return nil
			})
		},
	}
}

func printStatus(out io.Writer, recordType string, c translatable.Classification) {
	fmt.Fprintf(out, "%s: %d complete, %d incomplete\n", recordType, len(c.Complete), len(c.Incomplete))
	for _, id := range c.Complete {
		fmt.Fprintf(out, "  complete    %s\n", id)
	}
	for _, id := range c.Incomplete {
		fmt.Fprintf(out, "  incomplete  %s\n", id)
	}
}

func newTranslateCmd() *cobra.Command {
	var (
		translator string
		recordType string
		recordID   string
		attribute  string
		text       string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Store a translation for one record attribute",
		Long: `Store a translation for one record attribute.

Omitting --translator stores the translation as unverified. Blank text is
rejected and leaves any existing translation untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := translationscmd.TranslateCommand{
				OwnerType: recordType,
				Attribute: attribute,
				Text:      text,
			}
			id, err := uuid.Parse(strings.TrimSpace(recordID))
			if err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
			msg.OwnerID = id
			if strings.TrimSpace(translator) != "" {
				translatorID, err := uuid.Parse(strings.TrimSpace(translator))
				if err != nil {
					return fmt.Errorf("invalid --translator: %w", err)
				}
				msg.TranslatorID = translatorID
			}

			return withSession(func(ctx context.Context, s *session) error {
				if err := dispatcher.Dispatch(ctx, msg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "translated %s %s.%s\n", recordType, id, attribute)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&translator, "translator", "", "Translator id (empty = unverified)")
	cmd.Flags().StringVar(&recordType, "type", "", "Record type (required)")
	cmd.Flags().StringVar(&recordID, "id", "", "Record id (required)")
	cmd.Flags().StringVar(&attribute, "attribute", "", "Translatable attribute (required)")
	cmd.Flags().StringVar(&text, "text", "", "Translated text (required)")
	for _, name := range []string{"type", "id", "attribute", "text"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newRefreshCmd() *cobra.Command {
	var recordID string

	cmd := &cobra.Command{
		Use:   "refresh <type>",
		Short: "Recompute the cached association flag of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := translationscmd.RefreshCascadeCommand{RecordType: args[0]}
			if strings.TrimSpace(recordID) != "" {
				id, err := uuid.Parse(strings.TrimSpace(recordID))
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				msg.RecordID = &id
			}
			return withSession(func(ctx context.Context, s *session) error {
				if err := dispatcher.Dispatch(ctx, msg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&recordID, "id", "", "Refresh a single record")
	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Recompute the cached flag of every cascading type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, s *session) error {
				if err := dispatcher.Dispatch(ctx, translationscmd.SweepCascadeCommand{}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "swept cascading types")
				return nil
			})
		},
	}
}
