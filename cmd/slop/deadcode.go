package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
)

func deadcodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "deadcode",
		Aliases:   []string{"dc"},
		Usage:     "Find stranded files and unused entities",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "Entry point patterns for reachability (overrides config)",
			},
		},
		Action: runDeadcodeCmd,
	}
}

func runDeadcodeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if entry := c.StringSlice("entry"); len(entry) > 0 {
		cfg.EntryPoints = entry
	}

	_, records, svc, err := extractRecords(c, cfg)
	if err != nil {
		return err
	}

	build := svc.BuildGraphs(records)
	result := svc.AnalyzeReachability(build)

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Format() != output.FormatText && formatter.Format() != output.FormatMarkdown {
		return formatter.Output(result)
	}

	if len(result.EntryFiles) == 0 {
		color.Yellow("No entry points matched; falling back to files nothing imports")
	}

	if len(result.StrandedFiles) > 0 {
		var rows [][]string
		for _, f := range result.StrandedFiles {
			rows = append(rows, []string{f})
		}
		table := output.NewTable("Stranded Files", []string{"File"}, rows, nil, nil)
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	if len(result.UnusedEntities) > 0 {
		var rows [][]string
		for _, e := range result.UnusedEntities {
			rows = append(rows, []string{e})
		}
		table := output.NewTable("Unused Entities", []string{"Entity"}, rows, nil, nil)
		if err := formatter.Output(table); err != nil {
			return err
		}
	}

	fmt.Fprintf(formatter.Writer(), "\nSummary: %d entry files, %d stranded files, %d unused entities\n",
		len(result.EntryFiles), len(result.StrandedFiles), len(result.UnusedEntities))
	return nil
}
