// Package imports finds imported names that the rest of the file never
// mentions.
package imports

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/sloplab/slop/internal/fileproc"
	"github.com/sloplab/slop/pkg/models"
	"github.com/sloplab/slop/pkg/parser"
)

// Finding is one imported-but-unreferenced name.
type Finding struct {
	File   string `json:"file" toon:"file"`
	Line   uint32 `json:"line" toon:"line"`
	Name   string `json:"name" toon:"name"`
	Module string `json:"module" toon:"module"`
}

// Analyzer checks import references against identifier usage.
type Analyzer struct{}

// New creates an import analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// AnalyzeProject checks every parsed record, reading source from disk via
// the record's absolute path. Findings come back sorted by file then line.
func (a *Analyzer) AnalyzeProject(records []models.FileRecord) ([]Finding, error) {
	return a.AnalyzeProjectWithProgress(records, nil)
}

// AnalyzeProjectWithProgress checks records with an optional progress
// callback.
func (a *Analyzer) AnalyzeProjectWithProgress(records []models.FileRecord, onProgress fileproc.ProgressFunc) ([]Finding, error) {
	paths := make([]string, 0, len(records))
	byPath := make(map[string]models.FileRecord, len(records))
	for _, rec := range records {
		if rec.Unparsed || rec.AbsPath == "" {
			continue
		}
		paths = append(paths, rec.AbsPath)
		byPath[rec.AbsPath] = rec
	}

	perFile := fileproc.ForEachFileWithProgress(paths, func(path string) ([]Finding, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return a.AnalyzeFile(byPath[path], content), nil
	}, onProgress)

	var findings []Finding
	for _, f := range perFile {
		findings = append(findings, f...)
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Name < findings[j].Name
	})
	return findings, nil
}

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// AnalyzeFile checks one record against its source. A name is used when
// it appears as an identifier on any line other than the import's own.
func (a *Analyzer) AnalyzeFile(rec models.FileRecord, content []byte) []Finding {
	if rec.Unparsed {
		return nil
	}

	usage := make(map[string]map[uint32]bool)
	for i, line := range strings.Split(string(content), "\n") {
		for _, ident := range identifierRe.FindAllString(line, -1) {
			if usage[ident] == nil {
				usage[ident] = make(map[uint32]bool)
			}
			usage[ident][uint32(i+1)] = true
		}
	}

	var findings []Finding
	for _, ref := range rec.Imports() {
		for _, name := range boundNames(rec.Language, ref) {
			if usedBeyondLine(usage[name], ref.Line) {
				continue
			}
			findings = append(findings, Finding{
				File:   rec.Path,
				Line:   ref.Line,
				Name:   name,
				Module: ref.Target,
			})
		}
	}
	return findings
}

// boundNames lists the local identifiers an import reference binds.
// Wildcard imports bind nothing checkable and side-effect imports bind
// nothing at all.
func boundNames(language string, ref models.Reference) []string {
	// a lone aliased symbol binds only its alias
	if ref.Alias != "" && len(ref.Symbols) == 1 {
		return []string{ref.Alias}
	}

	var names []string
	for _, s := range ref.Symbols {
		if s != "*" {
			names = append(names, s)
		}
	}
	if ref.Alias != "" {
		names = append(names, ref.Alias)
	}
	if len(names) > 0 {
		return names
	}
	if len(ref.Symbols) > 0 {
		// every listed symbol was a wildcard; nothing checkable
		return nil
	}

	if parser.Language(language) == parser.LangPython {
		// "import a.b.c" binds the first segment
		seg := ref.Target
		if idx := strings.Index(seg, "."); idx > 0 {
			seg = seg[:idx]
		}
		if seg != "" && !strings.HasPrefix(seg, ".") {
			return []string{seg}
		}
	}
	return nil
}

func usedBeyondLine(lines map[uint32]bool, importLine uint32) bool {
	for line := range lines {
		if line != importLine {
			return true
		}
	}
	return false
}
