// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// OutputMode defines the output format for CLI commands
type OutputMode string

const (
	// ModeYAML outputs data as YAML
	ModeYAML OutputMode = "yaml"
	// ModeJSON outputs data as JSON
	ModeJSON OutputMode = "json"
	// ModeTable outputs data as a bordered table
	ModeTable OutputMode = "table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Formatter provides consistent output formatting across CLI commands
type Formatter interface {
	// Mode returns the configured output mode
	Mode() OutputMode

	// PrintJSON outputs data as JSON to stdout
	PrintJSON(data any) error

	// PrintYAML outputs data as YAML to stdout
	PrintYAML(data any) error

	// PrintTable outputs rows as a table, or as a list of objects in the
	// structured modes
	PrintTable(headers []string, rows [][]string) error

	// PrintSummary outputs a summary message (stderr in structured modes)
	PrintSummary(message string) error

	// PrintError outputs an error with optional hints
	PrintError(err error, code string, suggestions []string) error
}

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New creates a new Formatter
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) Mode() OutputMode {
	return f.mode
}

func (f *formatter) structured() bool {
	return f.mode == ModeJSON || f.mode == ModeYAML
}

func (f *formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *formatter) PrintYAML(data any) error {
	enc := yaml.NewEncoder(f.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (f *formatter) printStructured(data any) error {
	if f.mode == ModeYAML {
		return f.PrintYAML(data)
	}
	return f.PrintJSON(data)
}

func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.structured() {
		items := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			item := make(map[string]string, len(headers))
			for i, header := range headers {
				if i < len(row) {
					item[header] = row[i]
				}
			}
			items = append(items, item)
		}
		return f.printStructured(items)
	}

	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(upper...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(f.stdout, t.Render())
	return err
}

func (f *formatter) PrintSummary(message string) error {
	if f.quiet {
		return nil
	}

	if f.structured() {
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}

	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

func (f *formatter) PrintError(err error, code string, suggestions []string) error {
	if err == nil {
		return nil
	}

	if f.structured() {
		out := map[string]any{
			"success": false,
			"error":   err.Error(),
		}
		if code != "" {
			out["code"] = code
		}
		if len(suggestions) > 0 {
			out["suggestions"] = suggestions
		}
		return f.printStructured(out)
	}

	red := fmt.Sprintf
	if f.color {
		red = color.New(color.FgRed).Sprintf
	}

	line := red("Error: %v", err)
	if code != "" {
		line += fmt.Sprintf(" [%s]", code)
	}
	if _, werr := fmt.Fprintln(f.stderr, line); werr != nil {
		return werr
	}
	for _, s := range suggestions {
		if _, werr := fmt.Fprintf(f.stderr, "  → %s\n", s); werr != nil {
			return werr
		}
	}
	return nil
}

// ValidateMode checks if the output mode is valid
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeYAML, ModeJSON, ModeTable:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'yaml', 'json' or 'table')", mode)
	}
}

// ParseMode converts a string to OutputMode, defaulting to YAML
func ParseMode(mode string) OutputMode {
	switch strings.ToLower(mode) {
	case "json":
		return ModeJSON
	case "table":
		return ModeTable
	default:
		return ModeYAML
	}
}
