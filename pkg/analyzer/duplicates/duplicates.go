// Package duplicates finds verbatim-duplicated code blocks, modulo
// whitespace, across and within files.
package duplicates

import (
	"encoding/hex"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sloplab/slop/internal/fileproc"
	"github.com/sloplab/slop/pkg/config"
	"github.com/sloplab/slop/pkg/models"
	"github.com/zeebo/blake3"
)

const (
	defaultMinLines = 5
	maxHotspots     = 10
)

// Analyzer detects duplicated blocks by hashing sliding windows of
// normalized lines and extending matching windows greedily.
type Analyzer struct {
	minLines    int
	maxFileSize int64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinLines sets the minimum normalized-line window for a match.
func WithMinLines(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minLines = n
		}
	}
}

// WithConfig applies the duplicate threshold from project configuration.
func WithConfig(cfg config.ThresholdConfig) Option {
	return WithMinLines(cfg.MinDuplicateLines)
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// New creates a duplicate analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{minLines: defaultMinLines}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ContentSource provides file content.
type ContentSource interface {
	Read(path string) ([]byte, error)
}

type osSource struct{}

func (osSource) Read(path string) ([]byte, error) { return os.ReadFile(path) }

// AnalyzeProject detects duplicated blocks across the given files.
func (a *Analyzer) AnalyzeProject(files []string) (*models.CloneAnalysis, error) {
	return a.AnalyzeProjectWithProgress(files, nil)
}

// AnalyzeProjectWithProgress detects duplicated blocks with an optional
// progress callback. Normalization runs per file on the worker pool;
// results are sorted by path before corpus-wide hashing so output is
// independent of completion order.
func (a *Analyzer) AnalyzeProjectWithProgress(files []string, onProgress fileproc.ProgressFunc) (*models.CloneAnalysis, error) {
	normalized := fileproc.ForEachFileWithProgress(files, func(path string) (normalizedFile, error) {
		if a.maxFileSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				return normalizedFile{}, err
			}
			if info.Size() > a.maxFileSize {
				return normalizedFile{path: path}, nil
			}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return normalizedFile{}, err
		}
		return normalizeFile(path, content), nil
	}, onProgress)

	return a.analyze(normalized, len(files)), nil
}

// AnalyzeProjectFromSource detects duplicated blocks in files read via a
// ContentSource, sequentially.
func (a *Analyzer) AnalyzeProjectFromSource(files []string, src ContentSource) (*models.CloneAnalysis, error) {
	var normalized []normalizedFile
	for _, path := range files {
		content, err := src.Read(path)
		if err != nil {
			continue
		}
		if a.maxFileSize > 0 && int64(len(content)) > a.maxFileSize {
			continue
		}
		normalized = append(normalized, normalizeFile(path, content))
	}
	return a.analyze(normalized, len(files)), nil
}

type normLine struct {
	text   string
	number uint32
}

type normalizedFile struct {
	path  string
	lines []normLine
}

// normalizeFile trims each line, collapses interior whitespace, and drops
// blank and comment-only lines. Original line numbers are retained for
// reporting.
func normalizeFile(path string, content []byte) normalizedFile {
	raw := strings.Split(string(content), "\n")
	nf := normalizedFile{path: path}
	for i, line := range raw {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		text := strings.Join(fields, " ")
		if isComment(text) {
			continue
		}
		nf.lines = append(nf.lines, normLine{text: text, number: uint32(i + 1)})
	}
	return nf
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "//") ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "/*") ||
		strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "*/")
}

// origin is one window start position in the normalized corpus.
type origin struct {
	file int // index into files
	line int // index into files[file].lines
}

func (a *Analyzer) analyze(files []normalizedFile, scanned int) *models.CloneAnalysis {
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	analysis := &models.CloneAnalysis{
		Clusters:          make([]models.CloneCluster, 0),
		Summary:           models.NewCloneSummary(),
		MinLines:          a.minLines,
		TotalFilesScanned: scanned,
	}

	n := a.minLines
	windows := make(map[uint64][]origin)
	var hashes []uint64
	for fi, f := range files {
		for li := 0; li+n <= len(f.lines); li++ {
			h := windowHash(f.lines[li : li+n])
			if _, seen := windows[h]; !seen {
				hashes = append(hashes, h)
			}
			windows[h] = append(windows[h], origin{file: fi, line: li})
		}
	}

	// Seed clusters from hash groups with at least two non-overlapping
	// origins, in first-occurrence order for determinism.
	covered := make(map[origin]int)
	for _, h := range hashes {
		members := dropOverlapping(windows[h], n)
		if len(members) < 2 {
			continue
		}
		if sameCluster(members, covered) {
			continue
		}

		length := a.extend(files, members, n)
		id := len(analysis.Clusters)
		for _, m := range members {
			for off := 0; off+n <= length; off++ {
				covered[origin{file: m.file, line: m.line + off}] = id
			}
		}

		cluster := models.CloneCluster{Length: length}
		var text string
		for i, m := range members {
			span := files[m.file].lines[m.line : m.line+length]
			if i == 0 {
				parts := make([]string, length)
				for j, l := range span {
					parts[j] = l.text
				}
				text = strings.Join(parts, "\n")
			}
			cluster.Spans = append(cluster.Spans, models.CloneSpan{
				File:      files[m.file].path,
				StartLine: span[0].number,
				EndLine:   span[length-1].number,
				Lines:     length,
			})
		}
		sum := blake3.Sum256([]byte(text))
		cluster.Fingerprint = hex.EncodeToString(sum[:])
		cluster.ID = cluster.Fingerprint[:12]
		analysis.Clusters = append(analysis.Clusters, cluster)
	}

	sort.Slice(analysis.Clusters, func(i, j int) bool {
		a, b := analysis.Clusters[i].Spans[0], analysis.Clusters[j].Spans[0]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.StartLine < b.StartLine
	})
	for _, c := range analysis.Clusters {
		analysis.Summary.AddCluster(c)
	}
	analysis.Summary.Hotspots = computeHotspots(analysis.Clusters)

	return analysis
}

// windowHash hashes the joined normalized window, order-sensitive.
func windowHash(lines []normLine) uint64 {
	var d xxhash.Digest
	d.Reset()
	for i, l := range lines {
		if i > 0 {
			_, _ = d.WriteString("\n")
		}
		_, _ = d.WriteString(l.text)
	}
	return d.Sum64()
}

// dropOverlapping removes same-file origins that overlap an earlier
// member of the group, so a run of repeated lines does not pair a window
// with its own shifted copy.
func dropOverlapping(members []origin, n int) []origin {
	var kept []origin
	for _, m := range members {
		overlaps := false
		for _, k := range kept {
			if k.file == m.file && m.line < k.line+n && k.line < m.line+n {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}
	return kept
}

// sameCluster reports whether every member window is already covered by
// one existing cluster, meaning this seed is a sub-window of it.
func sameCluster(members []origin, covered map[origin]int) bool {
	first, ok := covered[members[0]]
	if !ok {
		return false
	}
	for _, m := range members[1:] {
		id, ok := covered[m]
		if !ok || id != first {
			return false
		}
	}
	return true
}

// extend grows the window while the next normalized line matches across
// every member.
func (a *Analyzer) extend(files []normalizedFile, members []origin, n int) int {
	length := n
	for {
		next := ""
		for i, m := range members {
			idx := m.line + length
			if idx >= len(files[m.file].lines) {
				return length
			}
			if i == 0 {
				next = files[m.file].lines[idx].text
			} else if files[m.file].lines[idx].text != next {
				return length
			}
		}
		length++
	}
}

// computeHotspots ranks files by duplicated line volume.
func computeHotspots(clusters []models.CloneCluster) []models.DuplicationHotspot {
	type fileStat struct {
		lines    int
		clusters map[string]bool
	}
	perFile := make(map[string]*fileStat)
	for _, c := range clusters {
		for _, span := range c.Spans {
			st, ok := perFile[span.File]
			if !ok {
				st = &fileStat{clusters: make(map[string]bool)}
				perFile[span.File] = st
			}
			st.lines += span.Lines
			st.clusters[c.ID] = true
		}
	}

	hotspots := make([]models.DuplicationHotspot, 0, len(perFile))
	for file, st := range perFile {
		hotspots = append(hotspots, models.DuplicationHotspot{
			File:           file,
			DuplicateLines: st.lines,
			ClusterCount:   len(st.clusters),
		})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].DuplicateLines != hotspots[j].DuplicateLines {
			return hotspots[i].DuplicateLines > hotspots[j].DuplicateLines
		}
		return hotspots[i].File < hotspots[j].File
	})
	if len(hotspots) > maxHotspots {
		hotspots = hotspots[:maxHotspots]
	}
	return hotspots
}
