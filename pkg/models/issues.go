package models

import "sort"

// Severity represents how urgently an issue should be addressed.
type Severity string

// String implements fmt.Stringer for toon serialization.
func (s Severity) String() string {
	return string(s)
}

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Weight returns a numeric weight for sorting and threshold comparison.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ParseSeverity converts a string to a Severity, defaulting to info.
func ParseSeverity(s string) Severity {
	switch s {
	case "critical":
		return SeverityCritical
	case "error":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// IssueCategory labels what kind of slop an issue reports.
type IssueCategory string

const (
	CategoryStrandedFile  IssueCategory = "stranded-file"
	CategoryUnusedEntity  IssueCategory = "unused-entity"
	CategoryCircularDep   IssueCategory = "circular-dependency"
	CategoryDuplicateCode IssueCategory = "duplicate-code"
	CategoryUnparsedFile  IssueCategory = "unparsed-file"
	CategoryUnusedImport  IssueCategory = "unused-import"
	CategoryMarker        IssueCategory = "comment-marker"
	CategoryLongFunction  IssueCategory = "long-function"
	CategoryDeepNesting   IssueCategory = "deep-nesting"
	CategoryHandlerHeavy  IssueCategory = "handler-heavy"
)

// Location points at evidence for an issue.
type Location struct {
	File    string `json:"file" toon:"file"`
	Line    uint32 `json:"line,omitempty" toon:"line,omitempty"`
	EndLine uint32 `json:"end_line,omitempty" toon:"end_line,omitempty"`
}

// Issue is one finding attached to a graph node. Many issues may attach to
// the same node.
type Issue struct {
	Node     string        `json:"node" toon:"node"`
	Category IssueCategory `json:"category" toon:"category"`
	Severity Severity      `json:"severity" toon:"severity"`
	Message  string        `json:"message" toon:"message"`
	Evidence []Location    `json:"evidence,omitempty" toon:"evidence,omitempty"`
}

// SortIssues orders issues canonically: severity descending, then file,
// line, category, node. Repeated runs over the same input produce the same
// ordering regardless of which analyzer finished first.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.Weight() != b.Severity.Weight() {
			return a.Severity.Weight() > b.Severity.Weight()
		}
		af, al := a.primaryLocation()
		bf, bl := b.primaryLocation()
		if af != bf {
			return af < bf
		}
		if al != bl {
			return al < bl
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Node < b.Node
	})
}

func (i Issue) primaryLocation() (string, uint32) {
	if len(i.Evidence) > 0 {
		return i.Evidence[0].File, i.Evidence[0].Line
	}
	return i.Node, 0
}

// NodeAnnotation is the per-node severity rollup consumed by the
// visualizer for node coloring.
type NodeAnnotation struct {
	Node       string   `json:"node" toon:"node"`
	Severity   Severity `json:"severity" toon:"severity"`
	Categories []string `json:"categories" toon:"categories"`
	IssueCount int      `json:"issue_count" toon:"issue_count"`
}

// Diagnostic records a per-file degradation (parse failure, skipped file)
// that did not abort the run.
type Diagnostic struct {
	File    string `json:"file" toon:"file"`
	Stage   string `json:"stage" toon:"stage"`
	Message string `json:"message" toon:"message"`
}

// IssueSummary aggregates counts for reporting.
type IssueSummary struct {
	Total      int            `json:"total" toon:"total"`
	BySeverity map[string]int `json:"by_severity" toon:"by_severity"`
	ByCategory map[string]int `json:"by_category" toon:"by_category"`
}

// NewIssueSummary creates an initialized summary.
func NewIssueSummary() IssueSummary {
	return IssueSummary{
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}
}

// Add updates the summary with one issue.
func (s *IssueSummary) Add(issue Issue) {
	s.Total++
	s.BySeverity[string(issue.Severity)]++
	s.ByCategory[string(issue.Category)]++
}

// MaxSeverity returns the highest severity among issues, or empty when the
// list is empty.
func MaxSeverity(issues []Issue) Severity {
	var max Severity
	for _, i := range issues {
		if i.Severity.Weight() > max.Weight() {
			max = i.Severity
		}
	}
	return max
}
