package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func duplicatesCmd() *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dup", "clones"},
		Usage:     "Detect duplicated code blocks",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "min-lines",
				Usage: "Minimum normalized lines for a duplicate block (overrides config)",
			},
		},
		Action: runDuplicatesCmd,
	}
}

func runDuplicatesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if minLines := c.Int("min-lines"); minLines > 0 {
		cfg.Thresholds.MinDuplicateLines = minLines
	}

	root, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	clones, err := svc.AnalyzeDuplicates(root, records)
	if err != nil {
		return fmt.Errorf("duplicate analysis failed: %w", err)
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText && formatter.Format() != output.FormatMarkdown {
		return formatter.Output(clones)
	}

	if len(clones.Clusters) == 0 {
		if formatter.Colored() {
			color.Green("No duplicated blocks of %d+ lines found", clones.MinLines)
		} else {
			fmt.Fprintf(formatter.Writer(), "No duplicated blocks of %d+ lines found\n", clones.MinLines)
		}
		return nil
	}

	var rows [][]string
	for i, cluster := range clones.Clusters {
		for _, span := range cluster.Spans {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				fmt.Sprintf("%s:%d-%d", span.File, span.StartLine, span.EndLine),
				fmt.Sprintf("%d", span.Lines),
			})
		}
	}

	table := output.NewTable(
		"Duplicated Blocks",
		[]string{"Cluster", "Location", "Lines"},
		rows,
		[]string{
			fmt.Sprintf("Clusters: %d", clones.Summary.TotalClusters),
			fmt.Sprintf("Spans: %d", clones.Summary.TotalSpans),
			fmt.Sprintf("Duplicated Lines: %d", clones.Summary.DuplicatedLines),
		},
		clones,
	)
	return formatter.Output(table)
}
