// Package markers scans comments for unfinished-work annotations such as
// TODO, FIXME, and placeholder stubs.
package markers

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/sloplab/slop/internal/fileproc"
	"github.com/sloplab/slop/pkg/models"
	"github.com/sloplab/slop/pkg/parser"
)

// Finding is one marker occurrence.
type Finding struct {
	File     string          `json:"file" toon:"file"`
	Line     uint32          `json:"line" toon:"line"`
	Marker   string          `json:"marker" toon:"marker"`
	Text     string          `json:"text" toon:"text"`
	Severity models.Severity `json:"severity" toon:"severity"`
}

type pattern struct {
	regex    *regexp.Regexp
	marker   string
	severity models.Severity
}

// Analyzer detects work markers in comment lines.
type Analyzer struct {
	patterns    []pattern
	maxFileSize int64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// New creates a marker analyzer with the default pattern table.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{patterns: defaultPatterns()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// defaultPatterns maps marker classes to severities. Defect markers
// escalate to warning; everything else stays informational.
func defaultPatterns() []pattern {
	return []pattern{
		{regexp.MustCompile(`(?i)\b(FIXME|FIX\s*ME)\b[:\s]*(.*)`), "FIXME", models.SeverityWarning},
		{regexp.MustCompile(`(?i)\bBUG\b[:\s]*(.*)`), "BUG", models.SeverityWarning},
		{regexp.MustCompile(`(?i)\bBROKEN\b[:\s]*(.*)`), "BROKEN", models.SeverityWarning},
		{regexp.MustCompile(`(?i)\b(HACK|KLUDGE)\b[:\s]*(.*)`), "HACK", models.SeverityInfo},
		{regexp.MustCompile(`(?i)\bXXX\b[:\s]*(.*)`), "XXX", models.SeverityInfo},
		{regexp.MustCompile(`(?i)\bTODO\b[:\s]*(.*)`), "TODO", models.SeverityInfo},
		{regexp.MustCompile(`(?i)\b(not\s+implemented|unimplemented)\b[:\s]*(.*)`), "PLACEHOLDER", models.SeverityInfo},
		{regexp.MustCompile(`(?i)\b(placeholder|stub(bed)?\s+out)\b[:\s]*(.*)`), "PLACEHOLDER", models.SeverityInfo},
	}
}

// AnalyzeProject scans the given files on the worker pool. Findings come
// back sorted by file then line.
func (a *Analyzer) AnalyzeProject(files []string) ([]Finding, error) {
	return a.AnalyzeProjectWithProgress(files, nil)
}

// AnalyzeProjectWithProgress scans files with an optional progress callback.
func (a *Analyzer) AnalyzeProjectWithProgress(files []string, onProgress fileproc.ProgressFunc) ([]Finding, error) {
	perFile := fileproc.ForEachFileWithProgress(files, func(path string) ([]Finding, error) {
		return a.AnalyzeFile(path)
	}, onProgress)

	var findings []Finding
	for _, f := range perFile {
		findings = append(findings, f...)
	}
	sortFindings(findings)
	return findings, nil
}

// AnalyzeFile scans one file from disk.
func (a *Analyzer) AnalyzeFile(path string) ([]Finding, error) {
	if a.maxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > a.maxFileSize {
			return nil, nil
		}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeContent(path, content), nil
}

// AnalyzeContent scans in-memory content. Only comment lines are
// considered; marker words in code identifiers do not count.
func (a *Analyzer) AnalyzeContent(path string, content []byte) []Finding {
	prefixes := commentPrefixes(parser.DetectLanguage(path))

	var findings []Finding
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lineNum uint32
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		comment, ok := commentText(line, prefixes)
		if !ok {
			continue
		}
		for _, pat := range a.patterns {
			m := pat.regex.FindStringSubmatch(comment)
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[len(m)-1])
			if text == "" {
				text = strings.TrimSpace(comment)
			}
			findings = append(findings, Finding{
				File:     path,
				Line:     lineNum,
				Marker:   pat.marker,
				Text:     text,
				Severity: pat.severity,
			})
			break
		}
	}
	return findings
}

// commentPrefixes returns the line-comment prefixes for a language.
// Unknown languages get both common styles so unparsed files still
// surface their markers.
func commentPrefixes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython, parser.LangRuby:
		return []string{"#"}
	case parser.LangGo, parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX:
		return []string{"//", "/*", "*"}
	default:
		return []string{"//", "#", "/*", "*"}
	}
}

// commentText returns the comment portion of a line, whether the line is
// a whole-line comment or has a trailing comment after code. Block
// continuation prefixes only count at line start; "a * b" is not a
// comment.
func commentText(line string, prefixes []string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, p)), true
		}
		if p != "//" && p != "#" {
			continue
		}
		if idx := strings.Index(line, " "+p); idx >= 0 {
			return strings.TrimSpace(line[idx+1+len(p):]), true
		}
	}
	return "", false
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
}
