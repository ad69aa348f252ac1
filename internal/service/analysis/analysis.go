// Package analysis orchestrates the slop detection pipeline: fact
// extraction, graph construction, and the individual detectors, feeding
// everything into a single aggregated report.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/sloplab/slop/internal/fileproc"
	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/analyzer/duplicates"
	"github.com/sloplab/slop/pkg/analyzer/imports"
	"github.com/sloplab/slop/pkg/analyzer/issues"
	"github.com/sloplab/slop/pkg/analyzer/markers"
	"github.com/sloplab/slop/pkg/analyzer/reach"
	"github.com/sloplab/slop/pkg/analyzer/structure"
	"github.com/sloplab/slop/pkg/config"
	"github.com/sloplab/slop/pkg/facts"
	"github.com/sloplab/slop/pkg/models"
)

// Service coordinates analysis operations with shared configuration.
type Service struct {
	config *config.Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// New creates an analysis service. Without options it loads configuration
// from the standard locations, falling back to defaults.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// ProjectOptions configures a full project analysis.
type ProjectOptions struct {
	// OnProgress is invoked once per file during fact extraction.
	OnProgress fileproc.ProgressFunc

	// OnStage is invoked as each pipeline stage begins.
	OnStage func(stage string)
}

// ProjectResult holds everything a full analysis produces. The Report
// carries the aggregated issues; the other fields expose the raw
// detector output for callers that want more than the issue list.
type ProjectResult struct {
	Root      string                `json:"root" toon:"root"`
	Records   []models.FileRecord   `json:"records" toon:"records"`
	Build     *depgraph.Result      `json:"-" toon:"-"`
	Reach     *reach.Result         `json:"reach,omitempty" toon:"reach,omitempty"`
	Cycles    []depgraph.Cycle      `json:"cycles,omitempty" toon:"cycles,omitempty"`
	Clones    *models.CloneAnalysis `json:"clones,omitempty" toon:"clones,omitempty"`
	Markers   []markers.Finding     `json:"markers,omitempty" toon:"markers,omitempty"`
	Structure []structure.Finding   `json:"structure,omitempty" toon:"structure,omitempty"`
	Imports   []imports.Finding     `json:"imports,omitempty" toon:"imports,omitempty"`
	Report    *issues.Report        `json:"report" toon:"report"`
}

// AnalyzeProject runs the whole pipeline over the given files. Paths may
// be absolute or relative to root; all output uses root-relative paths.
func (s *Service) AnalyzeProject(ctx context.Context, root string, files []string, opts ProjectOptions) (*ProjectResult, error) {
	stage := func(name string) {
		if opts.OnStage != nil {
			opts.OnStage(name)
		}
	}

	stage("extracting facts")
	records, err := s.ExtractFacts(ctx, root, files, opts.OnProgress)
	if err != nil {
		return nil, err
	}

	stage("building graphs")
	build := s.BuildGraphs(records)

	result := &ProjectResult{
		Root:    root,
		Records: records,
		Build:   build,
	}

	// The graph detectors read the immutable build result; the text
	// detectors read the records or re-read file content. All are
	// independent, so fan out.
	stage("running detectors")
	p := pool.New().WithErrors().WithContext(ctx)
	if s.config.Analysis.DeadCode {
		p.Go(func(ctx context.Context) error {
			result.Reach = s.AnalyzeReachability(build)
			return nil
		})
	}
	if s.config.Analysis.Cycles {
		p.Go(func(ctx context.Context) error {
			result.Cycles = s.DetectCycles(build)
			return nil
		})
	}
	if s.config.Analysis.Duplicates {
		p.Go(func(ctx context.Context) error {
			clones, err := s.AnalyzeDuplicates(root, records)
			if err != nil {
				return err
			}
			result.Clones = clones
			return nil
		})
	}
	if s.config.Analysis.Markers {
		p.Go(func(ctx context.Context) error {
			findings, err := s.AnalyzeMarkers(ctx, records)
			if err != nil {
				return err
			}
			result.Markers = findings
			return nil
		})
	}
	if s.config.Analysis.Structure {
		p.Go(func(ctx context.Context) error {
			result.Structure = s.AnalyzeStructure(records)
			return nil
		})
	}
	if s.config.Analysis.Imports {
		p.Go(func(ctx context.Context) error {
			findings, err := s.AnalyzeImports(records)
			if err != nil {
				return err
			}
			result.Imports = findings
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	stage("aggregating issues")
	result.Report = issues.Aggregate(issues.Inputs{
		Build:     build,
		Reach:     result.Reach,
		Cycles:    result.Cycles,
		Clones:    result.Clones,
		Markers:   result.Markers,
		Structure: result.Structure,
		Imports:   result.Imports,
	})
	return result, nil
}

// ExtractFacts parses the given files in parallel and returns their fact
// records sorted by path. Files that fail to read or parse come back as
// Unparsed records rather than errors; only context cancellation fails
// the whole extraction.
func (s *Service) ExtractFacts(ctx context.Context, root string, files []string, onProgress fileproc.ProgressFunc) ([]models.FileRecord, error) {
	relPaths, err := relativePaths(root, files)
	if err != nil {
		return nil, err
	}

	records, procErrs := fileproc.MapFilesWithContextAndProgress(ctx, relPaths,
		func(ext *facts.Extractor, relPath string) (models.FileRecord, error) {
			return ext.ExtractFile(root, relPath), nil
		}, onProgress)
	if procErrs != nil && procErrs.HasErrors() {
		return nil, fmt.Errorf("extracting facts: %w", procErrs)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
	return records, nil
}

// BuildGraphs constructs the file and entity dependency graphs from fact
// records.
func (s *Service) BuildGraphs(records []models.FileRecord) *depgraph.Result {
	return depgraph.New().Build(records)
}

// AnalyzeReachability finds stranded files and unused entities using the
// configured entry points.
func (s *Service) AnalyzeReachability(build *depgraph.Result) *reach.Result {
	return reach.New(s.config.EntryPoints).Analyze(build)
}

// DetectCycles finds circular import chains in the file graph.
func (s *Service) DetectCycles(build *depgraph.Result) []depgraph.Cycle {
	return depgraph.New().DetectCycles(build.FileGraph)
}

// AnalyzeDuplicates runs clone detection over the records. Content is
// read relative to root so the clone spans carry root-relative paths.
func (s *Service) AnalyzeDuplicates(root string, records []models.FileRecord) (*models.CloneAnalysis, error) {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	analyzer := duplicates.New(duplicates.WithConfig(s.config.Thresholds))
	return analyzer.AnalyzeProjectFromSource(paths, dirSource{root: root})
}

// AnalyzeMarkers scans record content for slop comment markers.
func (s *Service) AnalyzeMarkers(ctx context.Context, records []models.FileRecord) ([]markers.Finding, error) {
	absPaths := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.AbsPath != "" {
			absPaths[rec.Path] = rec.AbsPath
		}
	}

	analyzer := markers.New()
	perFile, procErrs := fileproc.ForEachFileWithContext(ctx, recordPaths(records),
		func(relPath string) ([]markers.Finding, error) {
			abs, ok := absPaths[relPath]
			if !ok {
				return nil, nil
			}
			content, err := os.ReadFile(abs)
			if err != nil {
				return nil, nil // unreadable files already surfaced as Unparsed
			}
			return analyzer.AnalyzeContent(relPath, content), nil
		})
	if procErrs != nil && procErrs.HasErrors() {
		return nil, fmt.Errorf("scanning markers: %w", procErrs)
	}

	var findings []markers.Finding
	for _, fs := range perFile {
		findings = append(findings, fs...)
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings, nil
}

// AnalyzeStructure checks entity sizes and nesting against the
// configured thresholds.
func (s *Service) AnalyzeStructure(records []models.FileRecord) []structure.Finding {
	return structure.New(structure.WithConfig(s.config.Thresholds)).Analyze(records)
}

// AnalyzeImports finds imports whose bound names are never used.
func (s *Service) AnalyzeImports(records []models.FileRecord) ([]imports.Finding, error) {
	return imports.New().AnalyzeProject(records)
}

// dirSource reads file content relative to a root directory.
type dirSource struct {
	root string
}

func (d dirSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, path))
}

func relativePaths(root string, files []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	relPaths := make([]string, 0, len(files))
	for _, f := range files {
		if !filepath.IsAbs(f) {
			relPaths = append(relPaths, filepath.ToSlash(f))
			continue
		}
		rel, err := filepath.Rel(absRoot, f)
		if err != nil {
			return nil, fmt.Errorf("relativizing %s: %w", f, err)
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
	}
	return relPaths, nil
}

func recordPaths(records []models.FileRecord) []string {
	paths := make([]string, 0, len(records))
	for _, rec := range records {
		paths = append(paths, rec.Path)
	}
	return paths
}
