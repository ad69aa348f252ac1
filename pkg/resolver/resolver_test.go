package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRelative(t *testing.T) {
	r := New([]string{
		"src/app.js",
		"src/utils.js",
		"src/widgets/index.js",
		"lib/helpers.py",
	})

	tests := []struct {
		name     string
		from     string
		target   string
		want     string
		resolved bool
	}{
		{"extension added", "src/app.js", "./utils", "src/utils.js", true},
		{"explicit extension", "src/app.js", "./utils.js", "src/utils.js", true},
		{"quoted target", "src/app.js", `"./utils"`, "src/utils.js", true},
		{"index convention", "src/app.js", "./widgets", "src/widgets/index.js", true},
		{"parent directory", "src/widgets/index.js", "../utils", "src/utils.js", true},
		{"missing", "src/app.js", "./nothing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.from, tt.target)
			assert.Equal(t, tt.resolved, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIndexOrder(t *testing.T) {
	// utils.js beats utils/index.js when both exist
	r := New([]string{"src/app.js", "src/utils.js", "src/utils/index.js"})
	got, ok := r.Resolve("src/app.js", "./utils")
	assert.True(t, ok)
	assert.Equal(t, "src/utils.js", got)

	// without the file, the index fallback kicks in
	r = New([]string{"src/app.js", "src/utils/index.js"})
	got, ok = r.Resolve("src/app.js", "./utils")
	assert.True(t, ok)
	assert.Equal(t, "src/utils/index.js", got)
}

func TestResolveBasename(t *testing.T) {
	r := New([]string{
		"pkg/db/models.py",
		"pkg/web/views.py",
		"app.py",
	})

	tests := []struct {
		target   string
		want     string
		resolved bool
	}{
		{"models", "pkg/db/models.py", true},
		{"myproject.db.models", "pkg/db/models.py", true},
		{"web/views", "pkg/web/views.py", true},
		{"missing_module", "", false},
	}

	for _, tt := range tests {
		got, ok := r.Resolve("app.py", tt.target)
		assert.Equal(t, tt.resolved, ok, "target %q", tt.target)
		assert.Equal(t, tt.want, got, "target %q", tt.target)
	}
}

func TestResolveBasenameDeterministic(t *testing.T) {
	// Two candidates for the same basename: the lexicographically first wins,
	// regardless of construction order.
	r1 := New([]string{"b/utils.py", "a/utils.py"})
	r2 := New([]string{"a/utils.py", "b/utils.py"})

	got1, _ := r1.Resolve("main.py", "utils")
	got2, _ := r2.Resolve("main.py", "utils")
	assert.Equal(t, "a/utils.py", got1)
	assert.Equal(t, got1, got2)
}

func TestResolveEmptyTarget(t *testing.T) {
	r := New([]string{"a.py"})
	_, ok := r.Resolve("a.py", "")
	assert.False(t, ok)
	_, ok = r.Resolve("a.py", `""`)
	assert.False(t, ok)
}
