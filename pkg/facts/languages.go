package facts

import (
	"github.com/sloplab/slop/pkg/parser"
)

// languageSpec names the AST node types that carry facts for one language.
// Extraction is table-driven: the walker only ever consults these sets, so
// adding a language means adding a row here, not a new code path.
type languageSpec struct {
	functionTypes map[string]bool
	classTypes    map[string]bool
	importTypes   map[string]bool
	callTypes     map[string]bool
	handlerTypes  map[string]bool
	nestingTypes  map[string]bool
	commentPrefix []string
}

var langSpecs = map[parser.Language]*languageSpec{
	parser.LangPython: {
		functionTypes: set("function_definition"),
		classTypes:    set("class_definition"),
		importTypes:   set("import_statement", "import_from_statement"),
		callTypes:     set("call"),
		handlerTypes:  set("except_clause", "finally_clause"),
		nestingTypes: set("if_statement", "for_statement", "while_statement",
			"try_statement", "with_statement", "match_statement"),
		commentPrefix: []string{"#"},
	},
	parser.LangJavaScript: jsSpec(),
	parser.LangTypeScript: jsSpec(),
	parser.LangTSX:        jsSpec(),
	parser.LangGo: {
		functionTypes: set("function_declaration", "method_declaration"),
		classTypes:    set("type_declaration"),
		importTypes:   set("import_spec"),
		callTypes:     set("call_expression"),
		handlerTypes:  set(),
		nestingTypes: set("if_statement", "for_statement", "expression_switch_statement",
			"type_switch_statement", "select_statement"),
		commentPrefix: []string{"//"},
	},
	parser.LangRuby: {
		functionTypes: set("method", "singleton_method"),
		classTypes:    set("class", "module"),
		importTypes:   set(), // require is a call, handled separately
		callTypes:     set("call", "method_call"),
		handlerTypes:  set("rescue", "ensure"),
		nestingTypes: set("if", "unless", "while", "until", "for", "case",
			"begin"),
		commentPrefix: []string{"#"},
	},
}

func jsSpec() *languageSpec {
	return &languageSpec{
		functionTypes: set("function_declaration", "function", "arrow_function",
			"method_definition", "generator_function_declaration"),
		classTypes:   set("class_declaration", "class"),
		importTypes:  set("import_statement"),
		callTypes:    set("call_expression"),
		handlerTypes: set("catch_clause", "finally_clause"),
		nestingTypes: set("if_statement", "for_statement", "for_in_statement",
			"while_statement", "do_statement", "switch_statement", "try_statement"),
		commentPrefix: []string{"//"},
	}
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
