package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func importsCmd() *cli.Command {
	return &cli.Command{
		Name:      "imports",
		Usage:     "Find imports no identifier in the file references",
		ArgsUsage: "[path...]",
		Action:    runImportsCmd,
	}
}

func runImportsCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	_, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	findings, err := svc.AnalyzeImports(records)
	if err != nil {
		return fmt.Errorf("import analysis failed: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText && formatter.Format() != output.FormatMarkdown {
		return formatter.Output(findings)
	}

	if len(findings) == 0 {
		if formatter.Colored() {
			color.Green("No unused imports found")
		} else {
			fmt.Fprintln(formatter.Writer(), "No unused imports found")
		}
		return nil
	}

	var rows [][]string
	for _, f := range findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			f.Name,
			f.Module,
		})
	}

	table := output.NewTable(
		"Unused Imports",
		[]string{"Location", "Name", "Module"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), "", ""},
		findings,
	)
	return formatter.Output(table)
}
