package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloplab/slop/pkg/models"
)

func pyRecord(path string, refs ...models.Reference) models.FileRecord {
	return models.FileRecord{Path: path, Language: "python", References: refs}
}

func impRef(target string, line uint32, symbols []string, alias string) models.Reference {
	return models.Reference{Kind: models.RefImport, Target: target, Line: line, Symbols: symbols, Alias: alias}
}

func TestUnusedPlainImport(t *testing.T) {
	src := []byte("import os\nimport sys\nprint(sys.argv)\n")
	rec := pyRecord("app.py",
		impRef("os", 1, nil, ""),
		impRef("sys", 2, nil, ""),
	)

	findings := New().AnalyzeFile(rec, src)

	require.Len(t, findings, 1)
	assert.Equal(t, "os", findings[0].Name)
	assert.Equal(t, "os", findings[0].Module)
	assert.Equal(t, uint32(1), findings[0].Line)
}

func TestDottedImportBindsFirstSegment(t *testing.T) {
	src := []byte("import myproject.db.models\nmyproject.connect()\n")
	rec := pyRecord("app.py", impRef("myproject.db.models", 1, nil, ""))

	findings := New().AnalyzeFile(rec, src)
	assert.Empty(t, findings)
}

func TestUnusedSymbol(t *testing.T) {
	src := []byte("from os import path, sep\nprint(path.join0)\n")
	rec := pyRecord("app.py", impRef("os", 1, []string{"path", "sep"}, ""))

	findings := New().AnalyzeFile(rec, src)

	require.Len(t, findings, 1)
	assert.Equal(t, "sep", findings[0].Name)
}

func TestAliasUsed(t *testing.T) {
	src := []byte("import numpy as np\nnp.zeros(3)\n")
	rec := pyRecord("app.py", impRef("numpy", 1, nil, "np"))

	findings := New().AnalyzeFile(rec, src)
	assert.Empty(t, findings)
}

func TestAliasShadowsSymbolName(t *testing.T) {
	// "from os import path as p" binds p, not path; using p means the
	// import is live even though "path" never appears again.
	src := []byte("from os import path as p\np.join('a')\n")
	rec := pyRecord("app.py", impRef("os", 1, []string{"path"}, "p"))

	findings := New().AnalyzeFile(rec, src)
	assert.Empty(t, findings)
}

func TestUnusedAlias(t *testing.T) {
	src := []byte("import numpy as np\nprint('hello')\n")
	rec := pyRecord("app.py", impRef("numpy", 1, nil, "np"))

	findings := New().AnalyzeFile(rec, src)

	require.Len(t, findings, 1)
	assert.Equal(t, "np", findings[0].Name)
}

func TestWildcardImportSkipped(t *testing.T) {
	src := []byte("from helpers import *\n")
	rec := pyRecord("app.py", impRef("helpers", 1, []string{"*"}, ""))

	findings := New().AnalyzeFile(rec, src)
	assert.Empty(t, findings)
}

func TestRelativeImportWithoutBindingSkipped(t *testing.T) {
	// a JS side-effect import binds nothing
	src := []byte("import './polyfill';\n")
	rec := models.FileRecord{
		Path:       "app.js",
		Language:   "javascript",
		References: []models.Reference{impRef("./polyfill", 1, nil, "")},
	}

	findings := New().AnalyzeFile(rec, src)
	assert.Empty(t, findings)
}

func TestMentionOnImportLineOnlyDoesNotCount(t *testing.T) {
	src := []byte("import os\n# os appears only in this comment and the import\n")
	rec := pyRecord("app.py", impRef("os", 1, nil, ""))

	findings := New().AnalyzeFile(rec, src)

	// comment mention still counts as a textual use; the check is
	// identifier presence, not semantic reference
	assert.Empty(t, findings)
}

func TestSubstringDoesNotCountAsUse(t *testing.T) {
	src := []byte("import os\nosmosis = 1\nprint(osmosis)\n")
	rec := pyRecord("app.py", impRef("os", 1, nil, ""))

	findings := New().AnalyzeFile(rec, src)

	require.Len(t, findings, 1)
	assert.Equal(t, "os", findings[0].Name)
}

func TestUnparsedSkipped(t *testing.T) {
	rec := pyRecord("app.py", impRef("os", 1, nil, ""))
	rec.Unparsed = true

	findings := New().AnalyzeFile(rec, []byte("import os\n"))
	assert.Empty(t, findings)
}
