package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloplab/slop/pkg/models"
)

func record(path string, entities ...models.Entity) models.FileRecord {
	return models.FileRecord{Path: path, Language: "python", Lines: 200, Entities: entities}
}

func entity(name string, start, end uint32) models.Entity {
	return models.Entity{
		ID:        models.EntityID("app.py", "", name),
		Name:      name,
		Kind:      models.EntityFunction,
		StartLine: start,
		EndLine:   end,
	}
}

func TestLongFunction(t *testing.T) {
	findings := New().Analyze([]models.FileRecord{
		record("app.py",
			entity("short", 1, 10),
			entity("long", 20, 120),
		),
	})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, models.CategoryLongFunction, f.Category)
	assert.Equal(t, models.SeverityWarning, f.Severity)
	assert.Equal(t, models.EntityID("app.py", "", "long"), f.Entity)
	assert.Equal(t, 101, f.Value)
	assert.Equal(t, 50, f.Limit)
}

func TestExactLimitNotFlagged(t *testing.T) {
	findings := New().Analyze([]models.FileRecord{
		record("app.py", entity("edge", 1, 50)),
	})
	assert.Empty(t, findings)
}

func TestDeepNesting(t *testing.T) {
	deep := entity("deep", 1, 10)
	deep.NestingDepth = 6

	findings := New().Analyze([]models.FileRecord{record("app.py", deep)})

	require.Len(t, findings, 1)
	assert.Equal(t, models.CategoryDeepNesting, findings[0].Category)
	assert.Equal(t, 6, findings[0].Value)
	assert.Equal(t, 4, findings[0].Limit)
}

func TestThresholdOverrides(t *testing.T) {
	findings := New(WithMaxFunctionLines(5), WithMaxNestingDepth(1)).Analyze([]models.FileRecord{
		record("app.py", entity("six", 1, 6)),
	})

	require.Len(t, findings, 1)
	assert.Equal(t, models.CategoryLongFunction, findings[0].Category)
	assert.Equal(t, 5, findings[0].Limit)
}

func TestHandlerHeavy(t *testing.T) {
	handler := entity("rescuer", 1, 10)
	handler.HandlerSpans = []models.Span{{Start: 3, End: 6}, {Start: 7, End: 9}}

	findings := New().Analyze([]models.FileRecord{record("app.py", handler)})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, models.CategoryHandlerHeavy, f.Category)
	assert.Equal(t, models.SeverityInfo, f.Severity)
	assert.Equal(t, 70, f.Value)
}

func TestHandlerSpansOverlapMerged(t *testing.T) {
	handler := entity("nested", 1, 10)
	// nested rescue blocks over the same lines must not double-count
	handler.HandlerSpans = []models.Span{{Start: 2, End: 5}, {Start: 3, End: 4}}

	findings := New().Analyze([]models.FileRecord{record("app.py", handler)})
	assert.Empty(t, findings)
}

func TestClassesSkipped(t *testing.T) {
	big := models.Entity{
		ID:        models.EntityID("app.py", "", "Big"),
		Name:      "Big",
		Kind:      models.EntityClass,
		StartLine: 1,
		EndLine:   200,
	}

	findings := New().Analyze([]models.FileRecord{record("app.py", big)})
	assert.Empty(t, findings)
}

func TestUnparsedSkipped(t *testing.T) {
	rec := record("app.py", entity("long", 1, 100))
	rec.Unparsed = true

	findings := New().Analyze([]models.FileRecord{rec})
	assert.Empty(t, findings)
}

func TestFindingsSorted(t *testing.T) {
	findings := New().Analyze([]models.FileRecord{
		record("b.py", entity("late", 1, 100)),
		record("a.py", entity("early", 5, 110)),
	})

	require.Len(t, findings, 2)
	assert.Equal(t, "a.py", findings[0].File)
	assert.Equal(t, "b.py", findings[1].File)
}
