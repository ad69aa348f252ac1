package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func structureCmd() *cli.Command {
	return &cli.Command{
		Name:      "structure",
		Usage:     "Flag functions that exceed length and nesting limits",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-function-lines",
				Usage: "Maximum function length in lines (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-nesting-depth",
				Usage: "Maximum block nesting depth (overrides config)",
			},
		},
		Action: runStructureCmd,
	}
}

func runStructureCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if v := c.Int("max-function-lines"); v > 0 {
		cfg.Thresholds.MaxFunctionLines = v
	}
	if v := c.Int("max-nesting-depth"); v > 0 {
		cfg.Thresholds.MaxNestingDepth = v
	}

	_, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	findings := svc.AnalyzeStructure(records)

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
			color.Green("No structural findings")
		} else {
			fmt.Fprintln(formatter.Writer(), "No structural findings")
		}
		return nil
	}

	var rows [][]string
	for _, f := range findings {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			f.Entity,
			string(f.Category),
			fmt.Sprintf("%d/%d", f.Value, f.Limit),
		})
	}

	table := output.NewTable(
		"Structural Findings",
		[]string{"Location", "Entity", "Category", "Value/Limit"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), "", "", ""},
		findings,
	)
	return formatter.Output(table)
}
