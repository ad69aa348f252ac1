package models

// EntityKind classifies a declared code entity.
type EntityKind string

const (
	EntityFunction EntityKind = "function"
	EntityClass    EntityKind = "class"
	EntityMethod   EntityKind = "method"
)

// ReferenceKind classifies a raw, unresolved reference.
type ReferenceKind string

const (
	RefImport ReferenceKind = "import"
	RefCall   ReferenceKind = "call"
)

// Span is an inclusive line range within a file.
type Span struct {
	Start uint32 `json:"start" toon:"start"`
	End   uint32 `json:"end" toon:"end"`
}

// Entity is a function, class, or method declared in a source file.
// ID is file-qualified: "rel/path.py::Parent.name" for members,
// "rel/path.py::name" for top-level declarations.
type Entity struct {
	ID           string     `json:"id" toon:"id"`
	Name         string     `json:"name" toon:"name"`
	Kind         EntityKind `json:"kind" toon:"kind"`
	Parent       string     `json:"parent,omitempty" toon:"parent,omitempty"`
	StartLine    uint32     `json:"start_line" toon:"start_line"`
	EndLine      uint32     `json:"end_line" toon:"end_line"`
	NestingDepth int        `json:"nesting_depth,omitempty" toon:"nesting_depth,omitempty"`
	Parameters   []string   `json:"parameters,omitempty" toon:"parameters,omitempty"`
	HandlerSpans []Span     `json:"handler_spans,omitempty" toon:"handler_spans,omitempty"`
}

// Reference is a raw mention extracted from source: an import statement
// (module-level, Target names a module/file) or a call expression
// (Target names an entity). Entity is the ID of the enclosing declaration
// for call references; empty for module-level references.
type Reference struct {
	Kind    ReferenceKind `json:"kind" toon:"kind"`
	Target  string        `json:"target" toon:"target"`
	Line    uint32        `json:"line" toon:"line"`
	Entity  string        `json:"entity,omitempty" toon:"entity,omitempty"`
	Symbols []string      `json:"symbols,omitempty" toon:"symbols,omitempty"`
	Alias   string        `json:"alias,omitempty" toon:"alias,omitempty"`
}

// FileRecord is the normalized parse output for one source file. Every
// scanned file produces exactly one record; files the parser cannot handle
// are marked Unparsed with empty entities and references so they still
// appear in the graph instead of vanishing from the report.
type FileRecord struct {
	Path       string      `json:"path" toon:"path"`
	AbsPath    string      `json:"-" toon:"-"`
	Language   string      `json:"language" toon:"language"`
	Lines      int         `json:"lines" toon:"lines"`
	CodeLines  int         `json:"code_lines" toon:"code_lines"`
	Entities   []Entity    `json:"entities,omitempty" toon:"entities,omitempty"`
	References []Reference `json:"references,omitempty" toon:"references,omitempty"`
	Unparsed   bool        `json:"unparsed,omitempty" toon:"unparsed,omitempty"`
	ParseError string      `json:"parse_error,omitempty" toon:"parse_error,omitempty"`
}

// Imports returns the import references in declaration order.
func (f *FileRecord) Imports() []Reference {
	var refs []Reference
	for _, r := range f.References {
		if r.Kind == RefImport {
			refs = append(refs, r)
		}
	}
	return refs
}

// Calls returns the call references in declaration order.
func (f *FileRecord) Calls() []Reference {
	var refs []Reference
	for _, r := range f.References {
		if r.Kind == RefCall {
			refs = append(refs, r)
		}
	}
	return refs
}

// ImportedNames returns the set of names this file brings into scope.
func (f *FileRecord) ImportedNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, r := range f.References {
		if r.Kind != RefImport {
			continue
		}
		for _, s := range r.Symbols {
			names[s] = struct{}{}
		}
		if r.Alias != "" {
			names[r.Alias] = struct{}{}
		}
	}
	return names
}

// EntityID builds the qualified identity for an entity declared in file path.
func EntityID(path, parent, name string) string {
	if parent != "" {
		return path + "::" + parent + "." + name
	}
	return path + "::" + name
}
