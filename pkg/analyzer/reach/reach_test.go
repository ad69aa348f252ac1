package reach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloplab/slop/pkg/analyzer/depgraph"
	"github.com/sloplab/slop/pkg/models"
)

func buildGraphs(t *testing.T, records []models.FileRecord) *depgraph.Result {
	t.Helper()
	return depgraph.New().Build(records)
}

func fileRec(path string, refs ...models.Reference) models.FileRecord {
	return models.FileRecord{Path: path, Language: "python", Lines: 10, References: refs}
}

func imp(target string, line uint32) models.Reference {
	return models.Reference{Kind: models.RefImport, Target: target, Line: line}
}

func TestChainFromEntryPoint(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py", imp("b", 1)),
		fileRec("b.py", imp("c", 1)),
		fileRec("c.py"),
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Equal(t, []string{"main.py"}, result.EntryFiles)
	assert.Empty(t, result.StrandedFiles)
	assert.True(t, result.FileReachable("c.py"))
}

func TestBrokenChainStrandsTail(t *testing.T) {
	// main.py no longer imports b; b and c are both stranded even though
	// c still has an incoming edge.
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py"),
		fileRec("b.py", imp("c", 1)),
		fileRec("c.py"),
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Equal(t, []string{"b.py", "c.py"}, result.StrandedFiles)
}

func TestEntryPointNeverStranded(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py"),
		fileRec("worker.py"),
	})

	result := New([]string{"main.py", "worker.py"}).Analyze(build)

	assert.Empty(t, result.StrandedFiles)
}

func TestFallbackRootsWhenNoEntryMatches(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("launcher.py", imp("lib", 1)),
		fileRec("lib.py"),
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Empty(t, result.EntryFiles)
	assert.Empty(t, result.StrandedFiles)
}

func TestGlobEntryPattern(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("cmd/run_server.py", imp("./shared", 1)),
		fileRec("cmd/shared.py"),
		fileRec("scratch.py"),
	})

	result := New([]string{"run_*.py"}).Analyze(build)

	assert.Equal(t, []string{"cmd/run_server.py"}, result.EntryFiles)
	assert.Equal(t, []string{"scratch.py"}, result.StrandedFiles)
}

func TestSubstringEntryPattern(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("src/app/server.py"),
		fileRec("orphan.py"),
	})

	result := New([]string{"app/"}).Analyze(build)

	assert.Equal(t, []string{"src/app/server.py"}, result.EntryFiles)
	assert.Equal(t, []string{"orphan.py"}, result.StrandedFiles)
}

func TestUnparsedExemptFromStranded(t *testing.T) {
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py"),
		{Path: "legacy.py", Language: "python", Unparsed: true, ParseError: "syntax error"},
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Empty(t, result.StrandedFiles)
	assert.False(t, result.FileReachable("legacy.py"))
}

func TestUnusedEntity(t *testing.T) {
	usedID := models.EntityID("utils.py", "", "used")
	deadID := models.EntityID("utils.py", "", "dead")
	mainID := models.EntityID("main.py", "", "run")
	build := buildGraphs(t, []models.FileRecord{
		{
			Path: "main.py", Language: "python", Lines: 10,
			Entities: []models.Entity{
				{ID: mainID, Name: "run", Kind: models.EntityFunction, StartLine: 2, EndLine: 5},
			},
			References: []models.Reference{
				imp("utils", 1),
				{Kind: models.RefCall, Target: "used", Line: 3, Entity: mainID},
			},
		},
		{
			Path: "utils.py", Language: "python", Lines: 10,
			Entities: []models.Entity{
				{ID: usedID, Name: "used", Kind: models.EntityFunction, StartLine: 1, EndLine: 3},
				{ID: deadID, Name: "dead", Kind: models.EntityFunction, StartLine: 5, EndLine: 7},
			},
		},
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Equal(t, []string{deadID}, result.UnusedEntities)
	assert.True(t, result.EntityReachable(usedID))
	assert.False(t, result.EntityReachable(deadID))
}

func TestReachableEntityRescuesFile(t *testing.T) {
	// plugin.py is never imported but one of its entities is called via a
	// module-level call target seed; the file must not be stranded.
	handlerID := models.EntityID("plugin.py", "", "handle")
	build := &depgraph.Result{
		FileGraph: &models.DependencyGraph{
			Nodes: []models.GraphNode{
				{ID: "main.py", Name: "main.py", Type: models.NodeFile, File: "main.py"},
				{ID: "plugin.py", Name: "plugin.py", Type: models.NodeFile, File: "plugin.py"},
			},
		},
		EntityGraph: &models.DependencyGraph{
			Nodes: []models.GraphNode{
				{ID: handlerID, Name: "handle", Type: models.NodeFunction, File: "plugin.py", Line: 1},
			},
		},
		ModuleCallTargets: []string{handlerID},
	}

	result := New([]string{"main.py"}).Analyze(build)

	assert.Empty(t, result.StrandedFiles)
	assert.True(t, result.EntityReachable(handlerID))
}

func TestStrandedFileEntitiesNotDoubleReported(t *testing.T) {
	deadID := models.EntityID("orphan.py", "", "helper")
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py"),
		{
			Path: "orphan.py", Language: "python", Lines: 5,
			Entities: []models.Entity{
				{ID: deadID, Name: "helper", Kind: models.EntityFunction, StartLine: 1, EndLine: 3},
			},
		},
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.Equal(t, []string{"orphan.py"}, result.StrandedFiles)
	assert.Empty(t, result.UnusedEntities)
}

func TestExemptNames(t *testing.T) {
	// app.py is imported but none of its entities are called; only the
	// plainly named one should be flagged.
	build := buildGraphs(t, []models.FileRecord{
		fileRec("main.py", imp("app", 1)),
		{Path: "app.py", Language: "python", Lines: 20,
			Entities: []models.Entity{
				{ID: models.EntityID("app.py", "", "_private"), Name: "_private", Kind: models.EntityFunction, StartLine: 1, EndLine: 2},
				{ID: models.EntityID("app.py", "C", "__init__"), Name: "__init__", Kind: models.EntityMethod, Parent: "C", StartLine: 4, EndLine: 5},
				{ID: models.EntityID("app.py", "", "test_thing"), Name: "test_thing", Kind: models.EntityFunction, StartLine: 7, EndLine: 8},
				{ID: models.EntityID("app.py", "", "leftover"), Name: "leftover", Kind: models.EntityFunction, StartLine: 10, EndLine: 12},
			},
		},
	})
	require.NotNil(t, build)

	result := New([]string{"main.py"}).Analyze(build)

	assert.Equal(t, []string{models.EntityID("app.py", "", "leftover")}, result.UnusedEntities)
}

func TestEntryFileEntitiesSeeded(t *testing.T) {
	runID := models.EntityID("main.py", "", "run")
	build := buildGraphs(t, []models.FileRecord{
		{
			Path: "main.py", Language: "python", Lines: 10,
			Entities: []models.Entity{
				{ID: runID, Name: "run", Kind: models.EntityFunction, StartLine: 1, EndLine: 5},
			},
		},
	})

	result := New([]string{"main.py"}).Analyze(build)

	assert.True(t, result.EntityReachable(runID))
	assert.Empty(t, result.UnusedEntities)
}
