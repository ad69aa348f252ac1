package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/output"
	"github.com/sloplab/slop/internal/progress"
	"github.com/sloplab/slop/internal/scanner"
	"github.com/sloplab/slop/internal/service/analysis"
	"github.com/sloplab/slop/pkg/config"
	"github.com/sloplab/slop/pkg/models"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig loads the config file named by --config, or searches the
// standard locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// scanPaths collects source files from all given paths. The first path,
// made absolute, becomes the project root that analysis output paths are
// reported against.
func scanPaths(cfg *config.Config, paths []string) (string, []string, error) {
	root, err := filepath.Abs(paths[0])
	if err != nil {
		return "", nil, fmt.Errorf("invalid path %s: %w", paths[0], err)
	}

	sc := scanner.New(cfg)
	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", nil, fmt.Errorf("invalid path %s: %w", path, err)
		}
		found, err := sc.ScanDir(absPath)
		if err != nil {
			return "", nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return root, files, nil
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	return output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
}

// extractRecords scans and extracts fact records with a progress bar.
func extractRecords(c *cli.Context, cfg *config.Config) (string, []models.FileRecord, *analysis.Service, error) {
	root, files, err := scanPaths(cfg, getPaths(c))
	if err != nil {
		return "", nil, nil, err
	}
	if len(files) == 0 {
		return "", nil, nil, fmt.Errorf("no source files found")
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	tracker := progress.NewTracker("Extracting facts...", len(files))
	records, err := svc.ExtractFacts(c.Context, root, files, tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return "", nil, nil, err
	}
	tracker.FinishSuccess()
	return root, records, svc, nil
}

// failMeetsThreshold reports whether the worst issue severity reaches the
// configured fail_on level. An empty threshold disables failure.
func failMeetsThreshold(max models.Severity, failOn string) bool {
	if failOn == "" || max == "" {
		return false
	}
	return max.Weight() >= models.ParseSeverity(failOn).Weight()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
