package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/models"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"dag"},
		Usage:     "Generate the file dependency graph (Mermaid output)",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Include PageRank and connectivity statistics",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Number of top nodes by PageRank to show with --stats",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
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
		out := struct {
			Graph  *models.DependencyGraph `json:"graph" toon:"graph"`
			Cycles []depgraph.Cycle        `json:"cycles,omitempty" toon:"cycles,omitempty"`
			Stats  *depgraph.GraphStats    `json:"stats,omitempty" toon:"stats,omitempty"`
		}{Graph: build.FileGraph, Cycles: cycles}
		if c.Bool("stats") {
			stats := depgraph.Stats(build.FileGraph, c.Int("top"))
			out.Stats = &stats
		}
		return formatter.Output(out)
	}

	w := formatter.Writer()
	highlight := make(map[string]bool)
	for _, cycle := range cycles {
		for _, m := range cycle.Members {
			highlight[m] = true
		}
	}
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprint(w, build.FileGraph.ToMermaid(highlight))
	fmt.Fprintln(w, "```")

	if c.Bool("stats") {
		stats := depgraph.Stats(build.FileGraph, c.Int("top"))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Nodes: %d, Edges: %d, Components: %d, Isolated: %d\n",
			stats.Nodes, stats.Edges, stats.Components, stats.Isolated)
		if len(stats.TopNodes) > 0 {
			fmt.Fprintln(w, "Top nodes by PageRank:")
			for _, nm := range stats.TopNodes {
				fmt.Fprintf(w, "  %s: %.4f (in: %d, out: %d)\n", nm.ID, nm.PageRank, nm.In, nm.Out)
			}
		}
	}
	return nil
}
