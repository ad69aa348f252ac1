// Package report renders aggregated analysis results for humans: a
// terminal summary for small issue lists and a markdown document, with
// an embedded Mermaid dependency graph, for everything else.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sloplab/slop/internal/output"
	"github.com/sloplab/slop/internal/service/analysis"
	"github.com/sloplab/slop/pkg/models"
)

// DefaultFileName is where the markdown report lands when terminal
// output would be too long.
const DefaultFileName = "slop-report.md"

// Terminal renders a plain-text summary of the analysis result. Colors
// are applied per severity when colored is true.
func Terminal(result *analysis.ProjectResult, colored bool) string {
	var b strings.Builder
	report := result.Report

	fmt.Fprintf(&b, "Analyzed %d files in %s\n", len(result.Records), result.Root)
	if report == nil || report.Summary.Total == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d issues (%s)\n\n", report.Summary.Total, severityCounts(report.Summary))

	for _, issue := range report.Issues {
		sev := string(issue.Severity)
		if colored {
			sev = output.SeverityColor(sev, sev)
		}
		fmt.Fprintf(&b, "  [%s] %s: %s\n", sev, issueLocation(issue), issue.Message)
	}

	if len(report.Diagnostics) > 0 {
		b.WriteString("\nDiagnostics:\n")
		for _, d := range report.Diagnostics {
			fmt.Fprintf(&b, "  %s (%s): %s\n", d.File, d.Stage, d.Message)
		}
	}

	return b.String()
}

// Markdown renders the full report document: summary tables, issues
// grouped by category, diagnostics, and the dependency graph as a
// Mermaid diagram with cycle members highlighted.
func Markdown(result *analysis.ProjectResult) string {
	var b strings.Builder
	report := result.Report

	b.WriteString("# Slop Report\n\n")
	fmt.Fprintf(&b, "Analyzed %d files in `%s`.\n\n", len(result.Records), result.Root)

	if report == nil || report.Summary.Total == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	writeSummary(&b, report.Summary)
	writeIssuesByCategory(&b, report.Issues)
	writeDiagnostics(&b, report.Diagnostics)
	writeGraph(&b, result)

	return b.String()
}

// WriteAuto writes the terminal summary to w when it fits within
// maxLines, and otherwise writes the markdown report to
// DefaultFileName under dir, printing a pointer to w instead. It
// returns the report path when a file was written.
func WriteAuto(w io.Writer, result *analysis.ProjectResult, dir string, maxLines int, colored bool) (string, error) {
	text := Terminal(result, colored)
	if maxLines <= 0 || strings.Count(text, "\n") <= maxLines {
		_, err := io.WriteString(w, text)
		return "", err
	}

	path := DefaultFileName
	if dir != "" {
		path = filepath.Join(dir, DefaultFileName)
	}
	if err := os.WriteFile(path, []byte(Markdown(result)), 0o644); err != nil {
		return "", err
	}

	total := 0
	if result.Report != nil {
		total = result.Report.Summary.Total
	}
	fmt.Fprintf(w, "%d issues found; report written to %s\n", total, path)
	return path, nil
}

func severityCounts(summary models.IssueSummary) string {
	order := []models.Severity{
		models.SeverityCritical,
		models.SeverityError,
		models.SeverityWarning,
		models.SeverityInfo,
	}
	var parts []string
	for _, sev := range order {
		if n := summary.BySeverity[string(sev)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return strings.Join(parts, ", ")
}

func issueLocation(issue models.Issue) string {
	if len(issue.Evidence) > 0 && issue.Evidence[0].Line > 0 {
		return fmt.Sprintf("%s:%d", issue.Evidence[0].File, issue.Evidence[0].Line)
	}
	return issue.Node
}

func writeSummary(b *strings.Builder, summary models.IssueSummary) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Severity | Count |\n| --- | --- |\n")
	for _, sev := range []models.Severity{
		models.SeverityCritical,
		models.SeverityError,
		models.SeverityWarning,
		models.SeverityInfo,
	} {
		if n := summary.BySeverity[string(sev)]; n > 0 {
			fmt.Fprintf(b, "| %s | %d |\n", sev, n)
		}
	}
	b.WriteString("\n| Category | Count |\n| --- | --- |\n")
	for _, cat := range sortedKeys(summary.ByCategory) {
		fmt.Fprintf(b, "| %s | %d |\n", cat, summary.ByCategory[cat])
	}
	b.WriteString("\n")
}

func writeIssuesByCategory(b *strings.Builder, issues []models.Issue) {
	grouped := make(map[models.IssueCategory][]models.Issue)
	for _, issue := range issues {
		grouped[issue.Category] = append(grouped[issue.Category], issue)
	}

	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, string(cat))
	}
	sort.Strings(categories)

	b.WriteString("## Issues\n\n")
	for _, cat := range categories {
		fmt.Fprintf(b, "### %s\n\n", cat)
		for _, issue := range grouped[models.IssueCategory(cat)] {
			fmt.Fprintf(b, "- **%s** `%s`: %s\n", issue.Severity, issueLocation(issue), issue.Message)
			for _, ev := range issue.Evidence[min(1, len(issue.Evidence)):] {
				if ev.EndLine > ev.Line && ev.Line > 0 {
					fmt.Fprintf(b, "  - `%s:%d-%d`\n", ev.File, ev.Line, ev.EndLine)
				} else if ev.Line > 0 {
					fmt.Fprintf(b, "  - `%s:%d`\n", ev.File, ev.Line)
				} else {
					fmt.Fprintf(b, "  - `%s`\n", ev.File)
				}
			}
		}
		b.WriteString("\n")
	}
}

func writeDiagnostics(b *strings.Builder, diags []models.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	b.WriteString("## Diagnostics\n\n")
	for _, d := range diags {
		fmt.Fprintf(b, "- `%s` (%s): %s\n", d.File, d.Stage, d.Message)
	}
	b.WriteString("\n")
}

func writeGraph(b *strings.Builder, result *analysis.ProjectResult) {
	if result.Build == nil || result.Build.FileGraph == nil || len(result.Build.FileGraph.Nodes) == 0 {
		return
	}

	highlight := make(map[string]bool)
	for _, cycle := range result.Cycles {
		for _, member := range cycle.Members {
			highlight[member] = true
		}
	}
	if result.Reach != nil {
		for _, f := range result.Reach.StrandedFiles {
			highlight[f] = true
		}
	}

	b.WriteString("## Dependency Graph\n\n")
	b.WriteString("```mermaid\n")
	b.WriteString(result.Build.FileGraph.ToMermaid(highlight))
	b.WriteString("```\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
