package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/sloplab/slop/internal/output"
	"github.com/sloplab/slop/internal/scanner"
	"github.com/sloplab/slop/internal/service/analysis"
	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/config"
	"github.com/sloplab/slop/pkg/models"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Project root to analyze. Defaults to current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

// ProjectInput configures the full pipeline.
type ProjectInput struct {
	AnalyzeInput
	EntryPoints []string `json:"entry_points,omitempty" jsonschema:"Entry point patterns for reachability. Defaults to configured entry points."`
}

// DeadCodeInput configures reachability analysis.
type DeadCodeInput struct {
	AnalyzeInput
	EntryPoints []string `json:"entry_points,omitempty" jsonschema:"Entry point patterns for reachability. Defaults to configured entry points."`
}

// DuplicatesInput configures clone detection.
type DuplicatesInput struct {
	AnalyzeInput
	MinLines int `json:"min_lines,omitempty" jsonschema:"Minimum normalized lines for a duplicate block. Default 5."`
}

// GraphInput configures dependency graph output.
type GraphInput struct {
	AnalyzeInput
	IncludeStats bool `json:"include_stats,omitempty" jsonschema:"Include PageRank and component statistics."`
	Mermaid      bool `json:"mermaid,omitempty" jsonschema:"Include a Mermaid diagram of the file graph."`
}

func formatOutput(data any, format string) (string, error) {
	if format == "json" {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// toolResultTokenLimit caps tool output so a single result cannot swamp
// the caller's context window.
const toolResultTokenLimit = output.Budget64K

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	if tokens := output.EstimateTokens(text); tokens > toolResultTokenLimit {
		return toolError(fmt.Sprintf(
			"result too large (~%s tokens, limit %s); analyze a narrower path or use a more specific tool",
			output.FormatTokenCount(tokens), output.FormatTokenCount(toolResultTokenLimit)))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// scanProject resolves the project root and collects its source files.
func scanProject(cfg *config.Config, path string) (string, []string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}

	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	sc := scanner.New(cfg)
	if !info.IsDir() {
		ok, err := sc.ScanFile(path)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return root, nil, nil
		}
		return root, []string{path}, nil
	}

	files, err := sc.ScanDir(root)
	return root, files, err
}

func projectService(entryPoints []string) *analysis.Service {
	cfg := config.LoadOrDefault()
	if len(entryPoints) > 0 {
		cfg.EntryPoints = entryPoints
	}
	return analysis.New(analysis.WithConfig(cfg))
}

func handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, any, error) {
	svc := projectService(input.EntryPoints)
	root, files, err := scanProject(svc.Config(), input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	result, err := svc.AnalyzeProject(ctx, root, files, analysis.ProjectOptions{})
	if err != nil {
		return toolError(err.Error())
	}

	out := struct {
		Files  int            `json:"files" toon:"files"`
		Report *issuesPayload `json:"report" toon:"report"`
	}{len(result.Records), newIssuesPayload(result)}
	return toolResult(out, input.Format)
}

func handleFindDeadCode(ctx context.Context, req *mcp.CallToolRequest, input DeadCodeInput) (*mcp.CallToolResult, any, error) {
	svc := projectService(input.EntryPoints)
	root, files, err := scanProject(svc.Config(), input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	records, err := svc.ExtractFacts(ctx, root, files, nil)
	if err != nil {
		return toolError(err.Error())
	}
	build := svc.BuildGraphs(records)
	reachResult := svc.AnalyzeReachability(build)

	out := struct {
		EntryFiles     []string `json:"entry_files" toon:"entry_files"`
		StrandedFiles  []string `json:"stranded_files" toon:"stranded_files"`
		UnusedEntities []string `json:"unused_entities" toon:"unused_entities"`
	}{reachResult.EntryFiles, reachResult.StrandedFiles, reachResult.UnusedEntities}
	return toolResult(out, input.Format)
}

func handleFindDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	cfg := config.LoadOrDefault()
	if input.MinLines > 0 {
		cfg.Thresholds.MinDuplicateLines = input.MinLines
	}
	svc := analysis.New(analysis.WithConfig(cfg))

	root, files, err := scanProject(cfg, input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	records, err := svc.ExtractFacts(ctx, root, files, nil)
	if err != nil {
		return toolError(err.Error())
	}
	clones, err := svc.AnalyzeDuplicates(root, records)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(clones, input.Format)
}

func handleDependencyGraph(ctx context.Context, req *mcp.CallToolRequest, input GraphInput) (*mcp.CallToolResult, any, error) {
	svc := projectService(nil)
	root, files, err := scanProject(svc.Config(), input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no source files found")
	}

	records, err := svc.ExtractFacts(ctx, root, files, nil)
	if err != nil {
		return toolError(err.Error())
	}
	build := svc.BuildGraphs(records)
	cycles := svc.DetectCycles(build)

	out := struct {
		Graph   *models.DependencyGraph `json:"graph" toon:"graph"`
		Cycles  []depgraph.Cycle        `json:"cycles,omitempty" toon:"cycles,omitempty"`
		Stats   *depgraph.GraphStats    `json:"stats,omitempty" toon:"stats,omitempty"`
		Mermaid string                  `json:"mermaid,omitempty" toon:"mermaid,omitempty"`
	}{Graph: build.FileGraph, Cycles: cycles}

	if input.IncludeStats {
		stats := depgraph.Stats(build.FileGraph, 10)
		out.Stats = &stats
	}
	if input.Mermaid {
		highlight := make(map[string]bool)
		for _, c := range cycles {
			for _, m := range c.Members {
				highlight[m] = true
			}
		}
		out.Mermaid = build.FileGraph.ToMermaid(highlight)
	}
	return toolResult(out, input.Format)
}

// issuesPayload trims the aggregated report to what an agent needs.
type issuesPayload struct {
	Issues      []models.Issue          `json:"issues" toon:"issues"`
	Summary     models.IssueSummary     `json:"summary" toon:"summary"`
	Annotations []models.NodeAnnotation `json:"annotations,omitempty" toon:"annotations,omitempty"`
	Diagnostics []models.Diagnostic     `json:"diagnostics,omitempty" toon:"diagnostics,omitempty"`
}

func newIssuesPayload(result *analysis.ProjectResult) *issuesPayload {
	if result.Report == nil {
		return &issuesPayload{}
	}
	return &issuesPayload{
		Issues:      result.Report.Issues,
		Summary:     result.Report.Summary,
		Annotations: result.Report.Annotations,
		Diagnostics: result.Report.Diagnostics,
	}
}
