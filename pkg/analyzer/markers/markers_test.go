package markers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sloplab/slop/pkg/models"
)

func TestAnalyzeContentBasicMarkers(t *testing.T) {
	content := []byte(`# TODO: wire up retries
def handler():
    pass  # FIXME broken on empty input
`)

	findings := New().AnalyzeContent("app.py", content)

	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if findings[0].Marker != "TODO" || findings[0].Line != 1 {
		t.Errorf("first = %+v, want TODO at line 1", findings[0])
	}
	if findings[1].Marker != "FIXME" || findings[1].Line != 3 {
		t.Errorf("second = %+v, want FIXME at line 3", findings[1])
	}
}

func TestSeverityPerMarkerClass(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		marker   string
		severity models.Severity
	}{
		{"todo is info", "# TODO: later", "TODO", models.SeverityInfo},
		{"fixme is warning", "# FIXME: now", "FIXME", models.SeverityWarning},
		{"bug is warning", "# BUG: wrong sign", "BUG", models.SeverityWarning},
		{"hack is info", "# HACK around the cache", "HACK", models.SeverityInfo},
		{"xxx is info", "# XXX revisit", "XXX", models.SeverityInfo},
		{"placeholder is info", "# not implemented yet", "PLACEHOLDER", models.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := New().AnalyzeContent("x.py", []byte(tt.line))
			if len(findings) != 1 {
				t.Fatalf("findings = %d, want 1", len(findings))
			}
			if findings[0].Marker != tt.marker {
				t.Errorf("marker = %s, want %s", findings[0].Marker, tt.marker)
			}
			if findings[0].Severity != tt.severity {
				t.Errorf("severity = %s, want %s", findings[0].Severity, tt.severity)
			}
		})
	}
}

func TestMarkerInCodeIgnored(t *testing.T) {
	content := []byte(`todo_list = fetch_todos()
print(todo_list)
`)

	findings := New().AnalyzeContent("app.py", content)
	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0; identifiers are not markers", len(findings))
	}
}

func TestCaseInsensitive(t *testing.T) {
	findings := New().AnalyzeContent("app.js", []byte("// todo clean this up"))
	if len(findings) != 1 || findings[0].Marker != "TODO" {
		t.Fatalf("findings = %+v, want one TODO", findings)
	}
}

func TestOneFindingPerLine(t *testing.T) {
	// first matching pattern wins when a line carries several markers
	findings := New().AnalyzeContent("app.js", []byte("// FIXME TODO both here"))
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Marker != "FIXME" {
		t.Errorf("marker = %s, want FIXME", findings[0].Marker)
	}
}

func TestCommentStylePerLanguage(t *testing.T) {
	// a # line in JavaScript is not a comment
	findings := New().AnalyzeContent("app.js", []byte("# TODO not a js comment"))
	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0", len(findings))
	}

	findings = New().AnalyzeContent("app.rb", []byte("# TODO ruby comment"))
	if len(findings) != 1 {
		t.Errorf("findings = %d, want 1", len(findings))
	}
}

func TestDescriptionExtracted(t *testing.T) {
	findings := New().AnalyzeContent("app.py", []byte("# TODO: handle unicode paths"))
	if len(findings) != 1 {
		t.Fatal("expected one finding")
	}
	if findings[0].Text != "handle unicode paths" {
		t.Errorf("text = %q", findings[0].Text)
	}
}

func TestAnalyzeProjectSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.py", "# TODO: second file\n")
	writeFile(t, dir, "a.py", "x = 1\n# FIXME: first file\n")

	findings, err := New().AnalyzeProject([]string{
		filepath.Join(dir, "b.py"),
		filepath.Join(dir, "a.py"),
	})
	if err != nil {
		t.Fatalf("AnalyzeProject() error = %v", err)
	}

	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if filepath.Base(findings[0].File) != "a.py" {
		t.Errorf("first finding from %s, want a.py", findings[0].File)
	}
}

func TestMaxFileSizeSkips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.py", "# TODO: huge file\n")

	findings, err := New(WithMaxFileSize(4)).AnalyzeFile(filepath.Join(dir, "big.py"))
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0", len(findings))
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
