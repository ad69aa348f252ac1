// Package structure checks extracted entities against size and shape
// thresholds: overlong functions, deep nesting, and bodies dominated by
// error-handling blocks.
package structure

import (
	"fmt"
	"sort"

	"github.com/sloplab/slop/pkg/config"
	"github.com/sloplab/slop/pkg/models"
)

// handlerRatioThreshold is the share of entity lines covered by handler
// blocks above which a function is reported as handler-heavy.
const handlerRatioThreshold = 0.5

// Finding is one structural threshold violation.
type Finding struct {
	Entity   string               `json:"entity" toon:"entity"`
	File     string               `json:"file" toon:"file"`
	Line     uint32               `json:"line" toon:"line"`
	Category models.IssueCategory `json:"category" toon:"category"`
	Severity models.Severity      `json:"severity" toon:"severity"`
	Value    int                  `json:"value" toon:"value"`
	Limit    int                  `json:"limit" toon:"limit"`
	Message  string               `json:"message" toon:"message"`
}

// Analyzer applies structural thresholds to fact records.
type Analyzer struct {
	maxFunctionLines int
	maxNestingDepth  int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFunctionLines overrides the long-function threshold.
func WithMaxFunctionLines(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFunctionLines = n
		}
	}
}

// WithMaxNestingDepth overrides the deep-nesting threshold.
func WithMaxNestingDepth(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxNestingDepth = n
		}
	}
}

// WithConfig applies both thresholds from project configuration.
func WithConfig(cfg config.ThresholdConfig) Option {
	return func(a *Analyzer) {
		WithMaxFunctionLines(cfg.MaxFunctionLines)(a)
		WithMaxNestingDepth(cfg.MaxNestingDepth)(a)
	}
}

// New creates a structure analyzer with default thresholds.
func New(opts ...Option) *Analyzer {
	defaults := config.DefaultConfig().Thresholds
	a := &Analyzer{
		maxFunctionLines: defaults.MaxFunctionLines,
		maxNestingDepth:  defaults.MaxNestingDepth,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze checks every function and method entity. Classes are skipped;
// their size is the sum of their members. Findings come back sorted by
// file then line.
func (a *Analyzer) Analyze(records []models.FileRecord) []Finding {
	var findings []Finding
	for _, rec := range records {
		if rec.Unparsed {
			continue
		}
		for _, ent := range rec.Entities {
			if ent.Kind == models.EntityClass {
				continue
			}
			findings = append(findings, a.checkEntity(rec.Path, ent)...)
		}
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Category < findings[j].Category
	})
	return findings
}

func (a *Analyzer) checkEntity(path string, ent models.Entity) []Finding {
	var findings []Finding

	lines := int(ent.EndLine-ent.StartLine) + 1
	if lines > a.maxFunctionLines {
		findings = append(findings, Finding{
			Entity:   ent.ID,
			File:     path,
			Line:     ent.StartLine,
			Category: models.CategoryLongFunction,
			Severity: models.SeverityWarning,
			Value:    lines,
			Limit:    a.maxFunctionLines,
			Message:  fmt.Sprintf("%s is %d lines long (limit %d)", ent.Name, lines, a.maxFunctionLines),
		})
	}

	if ent.NestingDepth > a.maxNestingDepth {
		findings = append(findings, Finding{
			Entity:   ent.ID,
			File:     path,
			Line:     ent.StartLine,
			Category: models.CategoryDeepNesting,
			Severity: models.SeverityWarning,
			Value:    ent.NestingDepth,
			Limit:    a.maxNestingDepth,
			Message:  fmt.Sprintf("%s nests %d levels deep (limit %d)", ent.Name, ent.NestingDepth, a.maxNestingDepth),
		})
	}

	if ratio := handlerRatio(ent); ratio >= handlerRatioThreshold {
		findings = append(findings, Finding{
			Entity:   ent.ID,
			File:     path,
			Line:     ent.StartLine,
			Category: models.CategoryHandlerHeavy,
			Severity: models.SeverityInfo,
			Value:    int(ratio * 100),
			Limit:    int(handlerRatioThreshold * 100),
			Message:  fmt.Sprintf("%s spends %d%% of its body in error handlers", ent.Name, int(ratio*100)),
		})
	}

	return findings
}

// handlerRatio measures how much of an entity's span its handler blocks
// cover. Overlapping spans are merged before counting so nested handlers
// do not inflate the ratio past 1.
func handlerRatio(ent models.Entity) float64 {
	total := int(ent.EndLine-ent.StartLine) + 1
	if total <= 0 || len(ent.HandlerSpans) == 0 {
		return 0
	}

	spans := make([]models.Span, len(ent.HandlerSpans))
	copy(spans, ent.HandlerSpans)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	covered := 0
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.Start <= cur.End+1 {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		covered += int(cur.End-cur.Start) + 1
		cur = s
	}
	covered += int(cur.End-cur.Start) + 1

	return float64(covered) / float64(total)
}
