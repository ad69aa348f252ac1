// Package facts turns raw source files into the normalized fact model:
// declared entities plus unresolved import and call references. Extraction
// is best-effort; files the parser cannot handle come back flagged
// Unparsed instead of failing the batch.
package facts

import (
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/sloplab/slop/pkg/models"
	"github.com/sloplab/slop/pkg/parser"
)

// Extractor produces fact records from source files. Not safe for
// concurrent use; create one per worker.
type Extractor struct {
	parser *parser.Parser
}

// NewExtractor creates an extractor with its own parser instance.
func NewExtractor() *Extractor {
	return &Extractor{parser: parser.New()}
}

// Close releases parser resources.
func (e *Extractor) Close() {
	e.parser.Close()
}

// ExtractFile reads and extracts facts for one file. relPath is the
// identity recorded on the result; the file is read from root/relPath.
func (e *Extractor) ExtractFile(root, relPath string) models.FileRecord {
	absPath := filepath.Join(root, relPath)
	source, err := os.ReadFile(absPath)
	if err != nil {
		return models.FileRecord{
			Path:       relPath,
			AbsPath:    absPath,
			Language:   string(parser.DetectLanguage(relPath)),
			Unparsed:   true,
			ParseError: err.Error(),
		}
	}
	rec := e.Extract(source, relPath)
	rec.AbsPath = absPath
	return rec
}

// Extract builds the fact record for source held in memory. Parse failure,
// syntax errors, and unsupported languages all degrade to an Unparsed
// record; Extract never returns an error.
func (e *Extractor) Extract(source []byte, relPath string) models.FileRecord {
	lang := parser.DetectLanguage(relPath)
	rec := models.FileRecord{
		Path:     relPath,
		Language: string(lang),
	}
	countLines(&rec, source, lang)

	spec, ok := langSpecs[lang]
	if !ok {
		rec.Unparsed = true
		rec.ParseError = "unsupported language"
		return rec
	}

	result, err := e.parser.Parse(source, lang, relPath)
	if err != nil {
		rec.Unparsed = true
		rec.ParseError = err.Error()
		return rec
	}

	root := result.Tree.RootNode()
	if root == nil || root.HasError() {
		rec.Unparsed = true
		rec.ParseError = "syntax error"
		return rec
	}

	w := &walker{spec: spec, lang: lang, path: relPath, source: source}
	w.walk(root, "", false, -1, 0)
	rec.Entities = w.entities
	rec.References = w.references
	return rec
}

// walker accumulates facts during a single pre-order pass.
type walker struct {
	spec   *languageSpec
	lang   parser.Language
	path   string
	source []byte

	entities   []models.Entity
	references []models.Reference
}

// walk descends the AST. parentName is the nearest enclosing named entity,
// owner the index of the innermost function-like entity (-1 at module
// level), nest the control-flow nesting depth inside that entity.
func (w *walker) walk(node *sitter.Node, parentName string, parentIsClass bool, owner int, nest int) {
	t := node.Type()

	switch {
	case w.spec.importTypes[t]:
		w.extractImport(node, t)
		return

	case w.spec.functionTypes[t]:
		name := w.functionName(node)
		if name == "" {
			// Anonymous function: facts inside attribute to the enclosing entity.
			w.walkChildren(node, parentName, parentIsClass, owner, nest)
			return
		}
		kind := models.EntityFunction
		parent := parentName
		if parentIsClass && parent != "" {
			kind = models.EntityMethod
		}
		w.entities = append(w.entities, models.Entity{
			ID:         models.EntityID(w.path, parent, name),
			Name:       name,
			Kind:       kind,
			Parent:     parent,
			StartLine:  node.StartPoint().Row + 1,
			EndLine:    node.EndPoint().Row + 1,
			Parameters: w.parameters(node),
		})
		w.walkChildren(node, name, false, len(w.entities)-1, 0)
		return

	case w.spec.classTypes[t]:
		name := w.className(node)
		if name == "" {
			w.walkChildren(node, parentName, parentIsClass, owner, nest)
			return
		}
		w.entities = append(w.entities, models.Entity{
			ID:        models.EntityID(w.path, "", name),
			Name:      name,
			Kind:      models.EntityClass,
			StartLine: node.StartPoint().Row + 1,
			EndLine:   node.EndPoint().Row + 1,
		})
		w.walkChildren(node, name, true, owner, nest)
		return

	case w.spec.callTypes[t]:
		w.extractCall(node, owner)
		// Descend for nested calls in arguments.
		w.walkChildren(node, parentName, parentIsClass, owner, nest)
		return

	case w.spec.handlerTypes[t]:
		if owner >= 0 {
			w.entities[owner].HandlerSpans = append(w.entities[owner].HandlerSpans, models.Span{
				Start: node.StartPoint().Row + 1,
				End:   node.EndPoint().Row + 1,
			})
		}
		w.walkChildren(node, parentName, parentIsClass, owner, nest)
		return

	case w.spec.nestingTypes[t]:
		if owner >= 0 && nest+1 > w.entities[owner].NestingDepth {
			w.entities[owner].NestingDepth = nest + 1
		}
		w.walkChildren(node, parentName, parentIsClass, owner, nest+1)
		return
	}

	w.walkChildren(node, parentName, parentIsClass, owner, nest)
}

func (w *walker) walkChildren(node *sitter.Node, parentName string, parentIsClass bool, owner int, nest int) {
	for i := range int(node.ChildCount()) {
		w.walk(node.Child(i), parentName, parentIsClass, owner, nest)
	}
}

func (w *walker) functionName(node *sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.GetNodeText(nameNode, w.source)
	}
	// Arrow functions assigned to variables take the variable's name.
	if node.Type() == "arrow_function" || node.Type() == "function" {
		if p := node.Parent(); p != nil && p.Type() == "variable_declarator" {
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				return parser.GetNodeText(nameNode, w.source)
			}
		}
	}
	return ""
}

func (w *walker) className(node *sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.GetNodeText(nameNode, w.source)
	}
	// Go type declarations carry the name on the inner type_spec.
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() == "type_spec" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				return parser.GetNodeText(nameNode, w.source)
			}
		}
		if child.Type() == "constant" || child.Type() == "identifier" || child.Type() == "type_identifier" {
			return parser.GetNodeText(child, w.source)
		}
	}
	return ""
}

func (w *walker) parameters(node *sitter.Node) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var names []string
	for i := range int(params.NamedChildCount()) {
		child := params.NamedChild(i)
		switch child.Type() {
		case "identifier", "simple_parameter":
			names = append(names, parser.GetNodeText(child, w.source))
		default:
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				names = append(names, parser.GetNodeText(nameNode, w.source))
			} else if child.NamedChildCount() > 0 && child.NamedChild(0).Type() == "identifier" {
				names = append(names, parser.GetNodeText(child.NamedChild(0), w.source))
			}
		}
	}
	return names
}

func (w *walker) extractImport(node *sitter.Node, nodeType string) {
	line := node.StartPoint().Row + 1

	switch w.lang {
	case parser.LangPython:
		w.extractPythonImport(node, nodeType, line)
	case parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX:
		w.extractJSImport(node, line)
	case parser.LangGo:
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			if target := stripQuotes(parser.GetNodeText(pathNode, w.source)); target != "" {
				w.addImport(target, line, nil, "")
			}
		}
	}
}

func (w *walker) extractPythonImport(node *sitter.Node, nodeType string, line uint32) {
	if nodeType == "import_statement" {
		// import a.b, import a.b as c
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				w.addImport(parser.GetNodeText(child, w.source), line, nil, "")
			case "aliased_import":
				target := parser.GetNodeText(child.ChildByFieldName("name"), w.source)
				alias := parser.GetNodeText(child.ChildByFieldName("alias"), w.source)
				if target != "" {
					w.addImport(target, line, nil, alias)
				}
			}
		}
		return
	}

	// from a.b import c, d as e
	moduleNode := node.ChildByFieldName("module_name")
	module := parser.GetNodeText(moduleNode, w.source)
	if module == "" {
		return
	}
	var symbols []string
	alias := ""
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier":
			symbols = append(symbols, parser.GetNodeText(child, w.source))
		case "aliased_import":
			if name := parser.GetNodeText(child.ChildByFieldName("name"), w.source); name != "" {
				symbols = append(symbols, name)
			}
			alias = parser.GetNodeText(child.ChildByFieldName("alias"), w.source)
		case "wildcard_import":
			symbols = append(symbols, "*")
		}
	}
	w.addImport(module, line, symbols, alias)
}

func (w *walker) extractJSImport(node *sitter.Node, line uint32) {
	sourceNode := node.ChildByFieldName("source")
	target := stripQuotes(parser.GetNodeText(sourceNode, w.source))
	if target == "" {
		return
	}
	var symbols []string
	alias := ""
	parser.Walk(node, w.source, func(n *sitter.Node, src []byte) bool {
		switch n.Type() {
		case "import_specifier":
			if name := parser.GetNodeText(n.ChildByFieldName("name"), src); name != "" {
				symbols = append(symbols, name)
			}
			if a := parser.GetNodeText(n.ChildByFieldName("alias"), src); a != "" {
				alias = a
			}
			return false
		case "namespace_import":
			// import * as ns from '...'
			for i := range int(n.NamedChildCount()) {
				if n.NamedChild(i).Type() == "identifier" {
					alias = parser.GetNodeText(n.NamedChild(i), src)
				}
			}
			return false
		case "import_clause":
			for i := range int(n.NamedChildCount()) {
				child := n.NamedChild(i)
				if child.Type() == "identifier" {
					// Default import binds one name.
					symbols = append(symbols, parser.GetNodeText(child, src))
				}
			}
			return true
		}
		return true
	})
	w.addImport(target, line, symbols, alias)
}

func (w *walker) extractCall(node *sitter.Node, owner int) {
	line := node.StartPoint().Row + 1

	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = node.ChildByFieldName("method")
	}
	if fnNode == nil && node.ChildCount() > 0 {
		fnNode = node.Child(0)
	}
	if fnNode == nil {
		return
	}

	callee := ""
	switch fnNode.Type() {
	case "member_expression", "attribute":
		if propNode := fnNode.ChildByFieldName("property"); propNode != nil {
			callee = parser.GetNodeText(propNode, w.source)
		} else if attrNode := fnNode.ChildByFieldName("attribute"); attrNode != nil {
			callee = parser.GetNodeText(attrNode, w.source)
		}
	case "selector_expression":
		if fieldNode := fnNode.ChildByFieldName("field"); fieldNode != nil {
			callee = parser.GetNodeText(fieldNode, w.source)
		}
	default:
		callee = parser.GetNodeText(fnNode, w.source)
	}

	// Ruby parses calls with receiver/method fields on the call node itself.
	if w.lang == parser.LangRuby {
		if methodNode := node.ChildByFieldName("method"); methodNode != nil {
			callee = parser.GetNodeText(methodNode, w.source)
		}
	}

	if callee == "" {
		return
	}

	// require()/require_relative() are imports in disguise.
	if w.isRequire(callee) {
		if target := w.firstStringArgument(node); target != "" {
			w.addImport(target, line, nil, "")
			return
		}
	}

	ref := models.Reference{
		Kind:   models.RefCall,
		Target: callee,
		Line:   line,
	}
	if owner >= 0 {
		ref.Entity = w.entities[owner].ID
	}
	w.references = append(w.references, ref)
}

func (w *walker) isRequire(callee string) bool {
	switch w.lang {
	case parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX:
		return callee == "require"
	case parser.LangRuby:
		return callee == "require" || callee == "require_relative"
	}
	return false
}

func (w *walker) firstStringArgument(node *sitter.Node) string {
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := range int(args.NamedChildCount()) {
		child := args.NamedChild(i)
		if child.Type() == "string" {
			return stripQuotes(parser.GetNodeText(child, w.source))
		}
	}
	return ""
}

func (w *walker) addImport(target string, line uint32, symbols []string, alias string) {
	w.references = append(w.references, models.Reference{
		Kind:    models.RefImport,
		Target:  target,
		Line:    line,
		Symbols: symbols,
		Alias:   alias,
	})
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

func countLines(rec *models.FileRecord, source []byte, lang parser.Language) {
	if len(source) == 0 {
		return
	}
	lines := strings.Split(string(source), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	rec.Lines = len(lines)

	var prefixes []string
	if spec, ok := langSpecs[lang]; ok {
		prefixes = spec.commentPrefix
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		comment := false
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				comment = true
				break
			}
		}
		if !comment {
			rec.CodeLines++
		}
	}
}
