package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/relay/cmd/relay/internal/format"
	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/compiler"
	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/definition"
	"github.com/vulntor/relay/pkg/watch"
)

type resolveOptions struct {
	file     string
	format   string
	watch    bool
	debounce string
}

func newResolveCommand() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Print the resolved listener order of every provider",
		Long: `Resolve a definitions file (YAML or JSON) and print, for every listener
provider, the listeners of each event type in the order they run.

With --watch the file is resolved again whenever it changes until the
command is interrupted.`,
		Example: `  # Print orders as YAML
  relay resolve listeners.yaml

  # Print a table and keep watching the file
  relay resolve listeners.yaml --format table --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			return runResolve(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "o", "yaml", "Output format (yaml|json|table)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Resolve again whenever the file changes")
	cmd.Flags().StringVar(&opts.debounce, "debounce", "100ms", "Delay between the last change and a reload")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions) error {
	cfg := appctx.ConfigOrDefault(cmd.Context())
	if err := format.ValidateMode(cfg.Output.Format); err != nil {
		return err
	}

	f := format.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format.ParseMode(cfg.Output.Format), false, !color.NoColor)
	pass := newPass(cfg)

	if err := resolveOnce(f, pass, opts.file); err != nil {
		if !opts.watch {
			return err
		}
		_ = f.PrintError(err, compiler.ErrorCode(err), compiler.Suggestions(err))
	}

	if !opts.watch {
		return nil
	}
	return watchAndResolve(cmd.Context(), f, pass, cfg, opts.file)
}

func watchAndResolve(ctx context.Context, f format.Formatter, pass *compiler.Pass, cfg config.Config, path string) error {
	w, err := watch.New(path, func(context.Context, string) error {
		err := resolveOnce(f, pass, path)
		if err != nil {
			_ = f.PrintError(err, compiler.ErrorCode(err), compiler.Suggestions(err))
		}
		return err
	}, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	_ = f.PrintSummary(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path))

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func resolveOnce(f format.Formatter, pass *compiler.Pass, path string) error {
	defs, err := definition.LoadFile(path)
	if err != nil {
		return err
	}
	plans, err := pass.Plan(defs)
	if err != nil {
		return err
	}
	return printPlans(f, plans)
}

func printPlans(f format.Formatter, plans compiler.Plans) error {
	if plans == nil {
		plans = compiler.Plans{}
	}

	switch f.Mode() {
	case format.ModeJSON:
		return f.PrintJSON(plans)
	case format.ModeYAML:
		return f.PrintYAML(plans)
	}

	var rows [][]string
	for _, plan := range plans {
		for _, order := range plan.Mapping {
			for i, id := range order.Listeners {
				rows = append(rows, []string{plan.Provider, order.Event, strconv.Itoa(i + 1), id})
			}
		}
	}
	if len(rows) == 0 {
		return f.PrintSummary("No listener providers found")
	}
	return f.PrintTable([]string{"provider", "event", "#", "listener"}, rows)
}
