package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func cyclesCmd() *cli.Command {
	return &cli.Command{
		Name:      "cycles",
		Usage:     "Detect circular import dependencies",
		ArgsUsage: "[path...]",
		Action:    runCyclesCmd,
	}
}

func runCyclesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	_, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	build := svc.BuildGraphs(records)
	cycles := svc.DetectCycles(build)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText && formatter.Format() != output.FormatMarkdown {
		return formatter.Output(cycles)
	}

	if len(cycles) == 0 {
		if formatter.Colored() {
			color.Green("No circular dependencies found")
		} else {
			fmt.Fprintln(formatter.Writer(), "No circular dependencies found")
		}
		return nil
	}

	var rows [][]string
	for _, cycle := range cycles {
		rows = append(rows, []string{
			strings.Join(cycle.Path, " -> "),
			fmt.Sprintf("%d", len(cycle.Members)),
		})
	}

	table := output.NewTable(
		"Circular Dependencies",
		[]string{"Cycle", "Members"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(cycles)), ""},
		cycles,
	)
	return formatter.Output(table)
}
