// Package resolver maps raw import targets to concrete files in the
// scanned set. Resolution is static and best-effort: a target that cannot
// be matched comes back unresolved, never as an error.
package resolver

import (
	"path"
	"sort"
	"strings"

	"github.com/sloplab/slop/pkg/parser"
)

// Resolver indexes a scanned file set for import resolution. Paths are
// slash-separated and relative to the scan root. Build once, then resolve;
// the index is immutable and safe for concurrent reads.
type Resolver struct {
	files    map[string]struct{}
	byBase   map[string][]string
	suffixes []string
}

// New builds a resolver over the scanned file set.
func New(files []string) *Resolver {
	r := &Resolver{
		files:    make(map[string]struct{}, len(files)),
		byBase:   make(map[string][]string),
		suffixes: parser.SupportedExtensions(),
	}
	for _, f := range files {
		f = path.Clean(f)
		r.files[f] = struct{}{}
		base := strings.TrimSuffix(path.Base(f), path.Ext(f))
		r.byBase[base] = append(r.byBase[base], f)
	}
	// Deterministic candidate order for basename matches.
	for base := range r.byBase {
		sort.Strings(r.byBase[base])
	}
	return r
}

// Resolve maps an import target, written in fromFile, to a concrete file
// in the set. The second return is false when the target is unresolved.
func (r *Resolver) Resolve(fromFile, target string) (string, bool) {
	target = normalizeTarget(target)
	if target == "" {
		return "", false
	}

	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		return r.resolveRelative(fromFile, target)
	}
	return r.resolveByBase(target)
}

// resolveRelative tries, against the importer's directory: the exact path,
// the path plus each recognized extension, then the package-index
// convention (path/index + each extension).
func (r *Resolver) resolveRelative(fromFile, target string) (string, bool) {
	dir := path.Dir(fromFile)
	base := path.Clean(path.Join(dir, target))

	if r.exists(base) {
		return base, true
	}
	for _, ext := range r.suffixes {
		if candidate := base + ext; r.exists(candidate) {
			return candidate, true
		}
	}
	for _, ext := range r.suffixes {
		if candidate := path.Join(base, "index"+ext); r.exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// resolveByBase matches non-relative targets against scanned basenames.
// The last path segment is the lookup key; dotted Python module paths use
// the last dot segment. This trades path accuracy for recall on aliased
// and absolute imports.
func (r *Resolver) resolveByBase(target string) (string, bool) {
	segment := target
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.LastIndex(segment, "."); i >= 0 {
		segment = segment[i+1:]
	}
	if segment == "" {
		return "", false
	}
	candidates := r.byBase[segment]
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

func (r *Resolver) exists(p string) bool {
	_, ok := r.files[p]
	return ok
}

// normalizeTarget strips quotes and a trailing recognized extension so
// "./utils.js" and "./utils" resolve identically.
func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	target = strings.Trim(target, `"'`+"`")
	for _, ext := range parser.SupportedExtensions() {
		if strings.HasSuffix(target, ext) {
			return strings.TrimSuffix(target, ext)
		}
	}
	return target
}
