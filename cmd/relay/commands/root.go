package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/compiler"
	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/logging"
	"github.com/vulntor/relay/pkg/paths"
)

const cliExecutable = "relay"

// reportedError marks an error the command already printed. Only its exit
// code matters to the caller.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// NewCommand constructs the top-level relay CLI command, wiring global flags,
// configuration loading and logging setup.
func NewCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Resolve and validate event listener orderings",
		Long: `relay reads listener definitions (services tagged as listener providers and
event listeners), resolves the order listeners run in for every event type,
and reports placement problems such as cycles or unknown relative targets.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				path = paths.DefaultConfigFile()
			}

			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), path); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			cfg := manager.Get()
			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			log.Debug().Str("config", path).Str("provider_tag", cfg.Compiler.ProviderTag).Msg("Configuration loaded")

			cmd.SetContext(appctx.WithConfig(cmd.Context(), manager))
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default $XDG_CONFIG_HOME/relay/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var done *reportedError
	if !errors.As(err, &done) {
		f := format.New(stdout, stderr, format.ModeTable, false, !color.NoColor)
		_ = f.PrintError(err, compiler.ErrorCode(err), compiler.Suggestions(err))
	}
	return compiler.ExitCode(err)
}

// newPass builds a compiler pass from the loaded configuration.
func newPass(cfg config.Config) *compiler.Pass {
	return compiler.NewPass(
		compiler.WithProviderTag(cfg.Compiler.ProviderTag),
		compiler.WithListenerTag(cfg.Compiler.ListenerTag),
		compiler.WithLogger(log.With().Str("component", "compiler").Logger()),
	)
}
