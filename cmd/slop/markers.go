package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func markersCmd() *cli.Command {
	return &cli.Command{
		Name:      "markers",
		Aliases:   []string{"todo"},
		Usage:     "Find TODO, FIXME, HACK and similar comment markers",
		ArgsUsage: "[path...]",
		Action:    runMarkersCmd,
	}
}

func runMarkersCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	_, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	findings, err := svc.AnalyzeMarkers(c.Context, records)
	if err != nil {
		return fmt.Errorf("marker analysis failed: %w", err)
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
			color.Green("No comment markers found")
		} else {
			fmt.Fprintln(formatter.Writer(), "No comment markers found")
		}
		return nil
	}

	var rows [][]string
	for _, f := range findings {
		sev := string(f.Severity)
		if formatter.Colored() {
			sev = output.SeverityColor(string(f.Severity), string(f.Severity))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			f.Marker,
			sev,
			truncate(f.Text, 60),
		})
	}

	table := output.NewTable(
		"Comment Markers",
		[]string{"Location", "Marker", "Severity", "Text"},
		rows,
		[]string{fmt.Sprintf("Total: %d", len(findings)), "", "", ""},
		findings,
	)
	return formatter.Output(table)
}
