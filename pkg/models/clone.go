package models

// CloneSpan is one occurrence of duplicated content. Line numbers refer to
// the original file; Lines counts the normalized (non-blank, non-comment)
// lines the span contributed to the match.
type CloneSpan struct {
	File      string `json:"file" toon:"file"`
	StartLine uint32 `json:"start_line" toon:"start_line"`
	EndLine   uint32 `json:"end_line" toon:"end_line"`
	Lines     int    `json:"lines" toon:"lines"`
}

// CloneCluster groups spans whose normalized content is identical for at
// least the configured minimum window length. Fingerprint is stable across
// runs for the same content.
type CloneCluster struct {
	ID          string      `json:"id" toon:"id"`
	Fingerprint string      `json:"fingerprint" toon:"fingerprint"`
	Length      int         `json:"length" toon:"length"`
	Spans       []CloneSpan `json:"spans" toon:"spans"`
}

// CloneAnalysis is the full duplicate-detection result.
type CloneAnalysis struct {
	Clusters          []CloneCluster `json:"clusters" toon:"clusters"`
	Summary           CloneSummary   `json:"summary" toon:"summary"`
	MinLines          int            `json:"min_lines" toon:"min_lines"`
	TotalFilesScanned int            `json:"total_files_scanned" toon:"total_files_scanned"`
}

// CloneSummary provides aggregate duplication statistics.
type CloneSummary struct {
	TotalClusters   int                  `json:"total_clusters" toon:"total_clusters"`
	TotalSpans      int                  `json:"total_spans" toon:"total_spans"`
	DuplicatedLines int                  `json:"duplicated_lines" toon:"duplicated_lines"`
	FileOccurrences map[string]int       `json:"file_occurrences,omitempty" toon:"file_occurrences,omitempty"`
	Hotspots        []DuplicationHotspot `json:"hotspots,omitempty" toon:"hotspots,omitempty"`
}

// DuplicationHotspot is a file with an outsized share of duplicated lines.
type DuplicationHotspot struct {
	File           string `json:"file" toon:"file"`
	DuplicateLines int    `json:"duplicate_lines" toon:"duplicate_lines"`
	ClusterCount   int    `json:"cluster_count" toon:"cluster_count"`
}

// NewCloneSummary creates an initialized summary.
func NewCloneSummary() CloneSummary {
	return CloneSummary{FileOccurrences: make(map[string]int)}
}

// AddCluster updates the summary with a finalized cluster.
func (s *CloneSummary) AddCluster(c CloneCluster) {
	s.TotalClusters++
	for _, span := range c.Spans {
		s.TotalSpans++
		s.DuplicatedLines += span.Lines
		s.FileOccurrences[span.File]++
	}
}
