package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
	"github.com/sloplab/slop/internal/progress"
	"github.com/sloplab/slop/internal/report"
	"github.com/sloplab/slop/internal/service/analysis"
	"github.com/sloplab/slop/pkg/models"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Run all detectors and report aggregated issues",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "entry",
				Aliases: []string{"e"},
				Usage:   "Entry point patterns for reachability (overrides config)",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit non-zero when issues at or above this severity exist: info, warning, error, critical",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if entry := c.StringSlice("entry"); len(entry) > 0 {
		cfg.EntryPoints = entry
	}

	root, files, err := scanPaths(cfg, getPaths(c))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found")
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	tracker := progress.NewTracker("Analyzing...", len(files))
	result, err := svc.AnalyzeProject(c.Context, root, files, analysis.ProjectOptions{
		OnProgress: tracker.Tick,
		OnStage:    tracker.Describe,
	})
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	switch formatter.Format() {
	case output.FormatText:
		if _, err := report.WriteAuto(formatter.Writer(), result, root, cfg.Thresholds.TerminalOutputLines, formatter.Colored()); err != nil {
			return err
		}
	case output.FormatMarkdown:
		if _, err := fmt.Fprint(formatter.Writer(), report.Markdown(result)); err != nil {
			return err
		}
	default:
		if err := formatter.Output(result); err != nil {
			return err
		}
	}

	failOn := c.String("fail-on")
	if failOn == "" {
		failOn = cfg.Output.FailOn
	}
	if result.Report != nil && failMeetsThreshold(models.MaxSeverity(result.Report.Issues), failOn) {
		return cli.Exit("", 1)
	}
	return nil
}
