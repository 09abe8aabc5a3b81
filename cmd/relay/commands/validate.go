// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vulntor/relay/pkg/appctx"
	"github.com/vulntor/relay/pkg/compiler"
	"github.com/vulntor/relay/pkg/definition"
	"github.com/vulntor/relay/pkg/ordering"
)

type validateOptions struct {
	file       string
	jsonOutput bool
}

// validateResult is the machine readable outcome of a validation run.
type validateResult struct {
	Valid       bool     `json:"valid"`
	File        string   `json:"file"`
	Providers   int      `json:"providers"`
	Events      int      `json:"events"`
	Listeners   int      `json:"listeners"`
	Error       string   `json:"error,omitempty"`
	Code        string   `json:"code,omitempty"`
	Event       string   `json:"event,omitempty"`
	Offending   []string `json:"offending,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a listener definitions file",
		Long: `Validate a listener definitions file (YAML or JSON format).

Checks for:
- Missing service ids, tag names or event attributes
- Unsupported document versions and duplicate service ids
- Listeners declaring more than one of priority, before and after
- Invalid priorities and first/last without a numeric anchor
- Unknown before/after targets and cyclic placements

The command returns different exit codes based on validation results:
- 0: definitions are valid
- 1: the file could not be processed
- 2: definition or placement errors found`,
		Example: `  # Validate a YAML definitions file
  relay validate listeners.yaml

  # Output results as JSON (for CI/CD)
  relay validate listeners.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	cfg := appctx.ConfigOrDefault(cmd.Context())
	result, err := validateFile(newPass(cfg), opts.file)

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		data, merr := json.MarshalIndent(result, "", "  ")
		if merr != nil {
			return fmt.Errorf("failed to marshal JSON: %w", merr)
		}
		if _, werr := fmt.Fprintln(out, string(data)); werr != nil {
			return werr
		}
	} else {
		outputPretty(out, result)
	}

	return reported(err)
}

func validateFile(pass *compiler.Pass, path string) (validateResult, error) {
	result := validateResult{File: path}

	defs, err := definition.LoadFile(path)
	if err == nil {
		var plans compiler.Plans
		plans, err = pass.Plan(defs)
		if err == nil {
			result.Valid = true
			result.Providers = len(plans)
			for _, plan := range plans {
				result.Events += len(plan.Mapping)
				for _, order := range plan.Mapping {
					result.Listeners += len(order.Listeners)
				}
			}
			return result, nil
		}
	}

	result.Error = err.Error()
	result.Code = compiler.ErrorCode(err)
	result.Suggestions = compiler.Suggestions(err)

	var rerr *ordering.ResolveError
	if errors.As(err, &rerr) {
		result.Event = rerr.Event
		result.Offending = rerr.Listeners
	}
	var verr *definition.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			result.Fields = append(result.Fields, f.String())
		}
	}
	return result, err
}

func outputPretty(w io.Writer, result validateResult) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	_, _ = fmt.Fprintf(w, "%s: %s\n", bold("File"), cyan(result.File))

	if result.Valid {
		_, _ = fmt.Fprintf(w, "%s: %d\n", bold("Providers"), result.Providers)
		_, _ = fmt.Fprintf(w, "%s: %d\n", bold("Events"), result.Events)
		_, _ = fmt.Fprintf(w, "%s: %d\n\n", bold("Listeners"), result.Listeners)
		_, _ = fmt.Fprintf(w, "%s Definitions are valid!\n", green("✓"))
		return
	}

	header := "Invalid definitions"
	if result.Code != "" {
		header = fmt.Sprintf("%s [%s]", header, result.Code)
	}
	_, _ = fmt.Fprintf(w, "\n%s %s:\n", red("✗"), bold(header))
	_, _ = fmt.Fprintf(w, "  %s\n", result.Error)

	if result.Event != "" {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", bold("Event"), result.Event)
	}
	for i, id := range result.Offending {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, id)
	}
	for _, field := range result.Fields {
		_, _ = fmt.Fprintf(w, "  - %s\n", field)
	}
	for _, s := range result.Suggestions {
		_, _ = fmt.Fprintf(w, "     → Fix: %s\n", s)
	}
}
