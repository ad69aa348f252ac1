// Package issues folds every analyzer's findings into one canonical
// issue list with per-node severity rollups.
package issues

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/analyzer/imports"
	"github.com/sloplab/slop/pkg/analyzer/markers"
	"github.com/sloplab/slop/pkg/analyzer/reach"
	"github.com/sloplab/slop/pkg/analyzer/structure"
	"github.com/sloplab/slop/pkg/models"
)

// Inputs carries the analyzer outputs to aggregate. Nil or empty fields
// are skipped, so a partial run (single-detector CLI commands) uses the
// same path.
type Inputs struct {
	Build     *depgraph.Result
	Reach     *reach.Result
	Cycles    []depgraph.Cycle
	Clones    *models.CloneAnalysis
	Markers   []markers.Finding
	Structure []structure.Finding
	Imports   []imports.Finding
}

// Report is the aggregated result handed to reporters and the MCP
// server.
type Report struct {
	Issues      []models.Issue          `json:"issues" toon:"issues"`
	Annotations []models.NodeAnnotation `json:"annotations,omitempty" toon:"annotations,omitempty"`
	Summary     models.IssueSummary     `json:"summary" toon:"summary"`
	Diagnostics []models.Diagnostic     `json:"diagnostics,omitempty" toon:"diagnostics,omitempty"`
}

// Aggregate builds the canonical issue list: severity descending, then
// file, line, category, node.
func Aggregate(in Inputs) *Report {
	report := &Report{Summary: models.NewIssueSummary()}

	if in.Build != nil {
		report.Diagnostics = in.Build.Diagnostics
		report.Issues = append(report.Issues, unparsedIssues(in.Build)...)
	}
	if in.Reach != nil {
		report.Issues = append(report.Issues, reachIssues(in.Build, in.Reach)...)
	}
	report.Issues = append(report.Issues, cycleIssues(in.Cycles)...)
	if in.Clones != nil {
		report.Issues = append(report.Issues, cloneIssues(in.Clones)...)
	}
	report.Issues = append(report.Issues, markerIssues(in.Markers)...)
	report.Issues = append(report.Issues, structureIssues(in.Structure)...)
	report.Issues = append(report.Issues, importIssues(in.Imports)...)

	models.SortIssues(report.Issues)
	for _, issue := range report.Issues {
		report.Summary.Add(issue)
	}
	report.Annotations = annotate(report.Issues)
	return report
}

func unparsedIssues(build *depgraph.Result) []models.Issue {
	var issues []models.Issue
	for _, node := range build.FileGraph.Nodes {
		if !node.Unparsed {
			continue
		}
		msg := "file could not be parsed"
		for _, d := range build.Diagnostics {
			if d.File == node.ID && d.Message != "" {
				msg = fmt.Sprintf("file could not be parsed: %s", d.Message)
				break
			}
		}
		issues = append(issues, models.Issue{
			Node:     node.ID,
			Category: models.CategoryUnparsedFile,
			Severity: models.SeverityWarning,
			Message:  msg,
			Evidence: []models.Location{{File: node.ID}},
		})
	}
	return issues
}

func reachIssues(build *depgraph.Result, r *reach.Result) []models.Issue {
	var issues []models.Issue
	for _, file := range r.StrandedFiles {
		issues = append(issues, models.Issue{
			Node:     file,
			Category: models.CategoryStrandedFile,
			Severity: models.SeverityError,
			Message:  "file is unreachable from any entry point",
			Evidence: []models.Location{{File: file}},
		})
	}
	for _, id := range r.UnusedEntities {
		issue := models.Issue{
			Node:     id,
			Category: models.CategoryUnusedEntity,
			Severity: models.SeverityWarning,
			Message:  "declared but never called from reachable code",
		}
		if build != nil {
			if node := build.EntityGraph.NodeByID(id); node != nil {
				issue.Message = fmt.Sprintf("%s is declared but never called from reachable code", node.Name)
				issue.Evidence = []models.Location{{File: node.File, Line: node.Line}}
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

func cycleIssues(cycles []depgraph.Cycle) []models.Issue {
	var issues []models.Issue
	for _, c := range cycles {
		evidence := make([]models.Location, len(c.Members))
		for i, m := range c.Members {
			evidence[i] = models.Location{File: m}
		}
		chain := strings.Join(c.Path, " -> ")
		if len(c.Path) > 0 {
			chain += " -> " + c.Path[0]
		}
		issues = append(issues, models.Issue{
			Node:     c.Members[0],
			Category: models.CategoryCircularDep,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("circular import chain: %s", chain),
			Evidence: evidence,
		})
	}
	return issues
}

func cloneIssues(analysis *models.CloneAnalysis) []models.Issue {
	var issues []models.Issue
	for _, c := range analysis.Clusters {
		evidence := make([]models.Location, len(c.Spans))
		for i, s := range c.Spans {
			evidence[i] = models.Location{File: s.File, Line: s.StartLine, EndLine: s.EndLine}
		}
		issues = append(issues, models.Issue{
			Node:     c.Spans[0].File,
			Category: models.CategoryDuplicateCode,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("block of %d lines duplicated in %d locations", c.Length, len(c.Spans)),
			Evidence: evidence,
		})
	}
	return issues
}

func markerIssues(findings []markers.Finding) []models.Issue {
	var issues []models.Issue
	for _, f := range findings {
		issues = append(issues, models.Issue{
			Node:     f.File,
			Category: models.CategoryMarker,
			Severity: f.Severity,
			Message:  fmt.Sprintf("%s: %s", f.Marker, f.Text),
			Evidence: []models.Location{{File: f.File, Line: f.Line}},
		})
	}
	return issues
}

func structureIssues(findings []structure.Finding) []models.Issue {
	var issues []models.Issue
	for _, f := range findings {
		issues = append(issues, models.Issue{
			Node:     f.Entity,
			Category: f.Category,
			Severity: f.Severity,
			Message:  f.Message,
			Evidence: []models.Location{{File: f.File, Line: f.Line}},
		})
	}
	return issues
}

func importIssues(findings []imports.Finding) []models.Issue {
	var issues []models.Issue
	for _, f := range findings {
		issues = append(issues, models.Issue{
			Node:     f.File,
			Category: models.CategoryUnusedImport,
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("%s imported from %s but never used", f.Name, f.Module),
			Evidence: []models.Location{{File: f.File, Line: f.Line}},
		})
	}
	return issues
}

// annotate rolls issues up per node for graph coloring.
func annotate(issues []models.Issue) []models.NodeAnnotation {
	byNode := make(map[string]*models.NodeAnnotation)
	categories := make(map[string]map[string]bool)
	for _, issue := range issues {
		ann, ok := byNode[issue.Node]
		if !ok {
			ann = &models.NodeAnnotation{Node: issue.Node}
			byNode[issue.Node] = ann
			categories[issue.Node] = make(map[string]bool)
		}
		ann.IssueCount++
		if issue.Severity.Weight() > ann.Severity.Weight() {
			ann.Severity = issue.Severity
		}
		categories[issue.Node][string(issue.Category)] = true
	}

	annotations := make([]models.NodeAnnotation, 0, len(byNode))
	for node, ann := range byNode {
		for c := range categories[node] {
			ann.Categories = append(ann.Categories, c)
		}
		sort.Strings(ann.Categories)
		annotations = append(annotations, *ann)
	}
	sort.Slice(annotations, func(i, j int) bool { return annotations[i].Node < annotations[j].Node })
	return annotations
}
