package issues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/analyzer/markers"
	"github.com/sloplab/slop/pkg/analyzer/reach"
	"github.com/sloplab/slop/pkg/models"
)

func build(t *testing.T, records []models.FileRecord) *depgraph.Result {
	t.Helper()
	return depgraph.New().Build(records)
}

func TestAggregateOrdering(t *testing.T) {
	b := build(t, []models.FileRecord{
		{Path: "main.py", Language: "python", Lines: 10},
		{Path: "orphan.py", Language: "python", Lines: 5},
	})
	r := reach.New([]string{"main.py"}).Analyze(b)

	report := Aggregate(Inputs{
		Build: b,
		Reach: r,
		Markers: []markers.Finding{
			{File: "main.py", Line: 3, Marker: "TODO", Text: "later", Severity: models.SeverityInfo},
		},
	})

	require.Len(t, report.Issues, 2)
	// error before info regardless of insertion order
	assert.Equal(t, models.CategoryStrandedFile, report.Issues[0].Category)
	assert.Equal(t, models.CategoryMarker, report.Issues[1].Category)
}

func TestAggregateCycles(t *testing.T) {
	b := build(t, []models.FileRecord{
		{Path: "a.py", Language: "python", References: []models.Reference{{Kind: models.RefImport, Target: "b", Line: 1}}},
		{Path: "b.py", Language: "python", References: []models.Reference{{Kind: models.RefImport, Target: "a", Line: 1}}},
	})
	cycles := depgraph.New().DetectCycles(b.FileGraph)

	report := Aggregate(Inputs{Build: b, Cycles: cycles})

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, models.CategoryCircularDep, issue.Category)
	assert.Equal(t, models.SeverityError, issue.Severity)
	assert.Equal(t, "a.py", issue.Node)
	assert.Contains(t, issue.Message, "a.py -> b.py -> a.py")
	assert.Len(t, issue.Evidence, 2)
}

func TestAggregateUnparsed(t *testing.T) {
	b := build(t, []models.FileRecord{
		{Path: "bad.py", Language: "python", Unparsed: true, ParseError: "syntax error"},
	})

	report := Aggregate(Inputs{Build: b})

	require.Len(t, report.Issues, 1)
	assert.Equal(t, models.CategoryUnparsedFile, report.Issues[0].Category)
	assert.Equal(t, models.SeverityWarning, report.Issues[0].Severity)
	assert.Contains(t, report.Issues[0].Message, "syntax error")
	require.Len(t, report.Diagnostics, 1)
}

func TestAggregateClones(t *testing.T) {
	clones := &models.CloneAnalysis{
		Clusters: []models.CloneCluster{
			{
				ID:     "abc123",
				Length: 6,
				Spans: []models.CloneSpan{
					{File: "a.py", StartLine: 10, EndLine: 15, Lines: 6},
					{File: "b.py", StartLine: 1, EndLine: 6, Lines: 6},
				},
			},
		},
	}

	report := Aggregate(Inputs{Clones: clones})

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, models.CategoryDuplicateCode, issue.Category)
	assert.Equal(t, models.SeverityWarning, issue.Severity)
	assert.Equal(t, "a.py", issue.Node)
	assert.Len(t, issue.Evidence, 2)
	assert.Equal(t, uint32(15), issue.Evidence[0].EndLine)
}

func TestAggregateUnusedEntityEvidence(t *testing.T) {
	deadID := models.EntityID("utils.py", "", "dead")
	b := build(t, []models.FileRecord{
		{Path: "main.py", Language: "python",
			References: []models.Reference{{Kind: models.RefImport, Target: "utils", Line: 1}}},
		{Path: "utils.py", Language: "python",
			Entities: []models.Entity{
				{ID: deadID, Name: "dead", Kind: models.EntityFunction, StartLine: 7, EndLine: 9},
			}},
	})
	r := reach.New([]string{"main.py"}).Analyze(b)

	report := Aggregate(Inputs{Build: b, Reach: r})

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, models.CategoryUnusedEntity, issue.Category)
	assert.Equal(t, deadID, issue.Node)
	require.Len(t, issue.Evidence, 1)
	assert.Equal(t, "utils.py", issue.Evidence[0].File)
	assert.Equal(t, uint32(7), issue.Evidence[0].Line)
}

func TestSummaryAndAnnotations(t *testing.T) {
	b := build(t, []models.FileRecord{
		{Path: "main.py", Language: "python"},
		{Path: "orphan.py", Language: "python"},
	})
	r := reach.New([]string{"main.py"}).Analyze(b)

	report := Aggregate(Inputs{
		Build: b,
		Reach: r,
		Markers: []markers.Finding{
			{File: "orphan.py", Line: 1, Marker: "TODO", Text: "x", Severity: models.SeverityInfo},
		},
	})

	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.BySeverity["error"])
	assert.Equal(t, 1, report.Summary.BySeverity["info"])

	require.Len(t, report.Annotations, 1)
	ann := report.Annotations[0]
	assert.Equal(t, "orphan.py", ann.Node)
	assert.Equal(t, models.SeverityError, ann.Severity)
	assert.Equal(t, 2, ann.IssueCount)
	assert.Equal(t, []string{"comment-marker", "stranded-file"}, ann.Categories)
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(Inputs{})
	assert.Empty(t, report.Issues)
	assert.Equal(t, 0, report.Summary.Total)
	assert.Empty(t, report.Annotations)
}
