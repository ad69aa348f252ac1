package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for slop.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Thresholds for the various detectors
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// Entry points for reachability analysis
	EntryPoints []string `koanf:"entry_points"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls which detectors run during a full analysis.
type AnalysisConfig struct {
	DeadCode   bool `koanf:"dead_code"`
	Cycles     bool `koanf:"cycles"`
	Duplicates bool `koanf:"duplicates"`
	Imports    bool `koanf:"imports"`
	Markers    bool `koanf:"markers"`
	Structure  bool `koanf:"structure"`
}

// ThresholdConfig defines detector thresholds.
type ThresholdConfig struct {
	MaxFunctionLines    int `koanf:"max_function_lines"`
	MaxNestingDepth     int `koanf:"max_nesting_depth"`
	MinDuplicateLines   int `koanf:"min_duplicate_lines"`
	TerminalOutputLines int `koanf:"terminal_output_lines"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon, yaml
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
	FailOn  string `koanf:"fail_on"` // severity at which the exit code becomes 1
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			DeadCode:   true,
			Cycles:     true,
			Duplicates: true,
			Imports:    true,
			Markers:    true,
			Structure:  true,
		},
		Thresholds: ThresholdConfig{
			MaxFunctionLines:    50,
			MaxNestingDepth:     4,
			MinDuplicateLines:   5,
			TerminalOutputLines: 100,
		},
		EntryPoints: []string{
			"main.py",
			"index.js",
			"app.py",
			"server.js",
			"__init__.py",
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".slop",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
			FailOn:  "error",
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"slop.toml",
		"slop.yaml",
		"slop.yml",
		"slop.json",
		".slop.toml",
		".slop.yaml",
		".slop.yml",
		".slop.json",
	}

	// Search in current directory and .slop directory
	searchDirs := []string{".", ".slop"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// Validate reports the first invalid setting it finds. A config file that
// parses but carries nonsense thresholds is an error, not a silent fallback.
func (c *Config) Validate() error {
	if c.Thresholds.MinDuplicateLines < 1 {
		return fmt.Errorf("config: min_duplicate_lines must be >= 1, got %d", c.Thresholds.MinDuplicateLines)
	}
	if c.Thresholds.MaxFunctionLines < 1 {
		return fmt.Errorf("config: max_function_lines must be >= 1, got %d", c.Thresholds.MaxFunctionLines)
	}
	if c.Thresholds.MaxNestingDepth < 1 {
		return fmt.Errorf("config: max_nesting_depth must be >= 1, got %d", c.Thresholds.MaxNestingDepth)
	}
	if c.Thresholds.TerminalOutputLines < 1 {
		return fmt.Errorf("config: terminal_output_lines must be >= 1, got %d", c.Thresholds.TerminalOutputLines)
	}
	switch c.Output.Format {
	case "", "text", "json", "markdown", "toon", "yaml":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	if c.Output.FailOn != "" {
		switch c.Output.FailOn {
		case "info", "warning", "error", "critical":
		default:
			return fmt.Errorf("config: unknown fail_on severity %q", c.Output.FailOn)
		}
	}
	return nil
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
