// Package ast wraps tree-sitter parsing behind a single per-extension
// LanguageSpec: which grammar to load, which node kinds are definitions
// (mapped to a types.Kind) versus call sites, and which node kinds count as
// decision points for complexity. internal/definitions walks the parsed
// tree through this registry instead of hand-rolling one traversal per
// language.
package ast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"

	"github.com/standardbeagle/lci/internal/types"
)

// LanguageSpec binds a grammar to the node-kind tables the walker needs.
type LanguageSpec struct {
	Name string

	// DefKinds maps a tree-sitter node kind to the definition Kind it
	// produces. The node's "name" field (or a language-specific fallback
	// field) supplies the definition's name.
	DefKinds map[string]types.Kind

	// NameField overrides the child field name holding the identifier for
	// specific node kinds; kinds absent here use "name".
	NameField map[string]string

	// CallKinds are node kinds that represent an invocation.
	CallKinds map[string]bool

	// CalleeField is the field holding the callee expression on a call node.
	CalleeField string
	// ArgumentsField is the field holding the argument list.
	ArgumentsField string
	// TypeArgumentsField is the field holding explicit generic type args,
	// when the grammar exposes one.
	TypeArgumentsField string

	// DecisionKinds are node kinds counted as +1 for cyclomatic complexity
	// (if/else-if, case, catch, ternary, &&, ||, ??).
	DecisionKinds map[string]bool
	// NestingKinds are node kinds that add one level of nesting for
	// cognitive complexity and max-nesting-depth (if/for/while/switch/try).
	NestingKinds map[string]bool
	// LambdaKinds are node kinds counted as anonymous-function literals.
	LambdaKinds map[string]bool
	// ReturnKinds / ThrowKinds count return/throw statements.
	ReturnKinds map[string]bool
	ThrowKinds  map[string]bool

	newLanguage func() *tree_sitter.Language
}

func (s *LanguageSpec) Language() *tree_sitter.Language {
	return s.newLanguage()
}

var registry = map[string]*LanguageSpec{}

func register(exts []string, spec *LanguageSpec) {
	for _, e := range exts {
		registry[e] = spec
	}
}

// Lookup returns the LanguageSpec registered for a file extension
// (including the leading dot, e.g. ".go"), or nil if unsupported.
func Lookup(ext string) *LanguageSpec {
	return registry[ext]
}

func init() {
	register([]string{".go"}, &LanguageSpec{
		Name: "go",
		DefKinds: map[string]types.Kind{
			"function_declaration": types.KindFunction,
			"method_declaration":   types.KindMethod,
			"type_spec":            types.KindTypeAlias,
			"func_literal":         types.KindFunction,
		},
		CallKinds:          map[string]bool{"call_expression": true},
		CalleeField:        "function",
		ArgumentsField:     "arguments",
		TypeArgumentsField: "type_arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "expression_case": true, "type_case": true,
			"communication_case": true, "default_case": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "expr_switch_statement": true,
			"type_switch_statement": true, "select_statement": true,
		},
		LambdaKinds: map[string]bool{"func_literal": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	})

	register([]string{".py"}, &LanguageSpec{
		Name: "python",
		DefKinds: map[string]types.Kind{
			"function_definition": types.KindFunction,
			"class_definition":    types.KindClass,
		},
		CallKinds:      map[string]bool{"call": true},
		CalleeField:    "function",
		ArgumentsField: "arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "elif_clause": true, "except_clause": true,
			"conditional_expression": true, "boolean_operator": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "while_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"lambda": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"raise_statement": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	})

	register([]string{".js", ".jsx"}, &LanguageSpec{
		Name: "javascript",
		DefKinds: map[string]types.Kind{
			"function_declaration":  types.KindFunction,
			"generator_function_declaration": types.KindFunction,
			"method_definition":     types.KindMethod,
			"class_declaration":     types.KindClass,
			"arrow_function":        types.KindFunction,
			"function_expression":   types.KindFunction,
		},
		CallKinds:      map[string]bool{"call_expression": true, "new_expression": true},
		CalleeField:    "function",
		ArgumentsField: "arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "switch_case": true, "catch_clause": true,
			"ternary_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "for_in_statement": true,
			"while_statement": true, "switch_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"arrow_function": true, "function_expression": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
	})

	register([]string{".ts", ".tsx"}, &LanguageSpec{
		Name: "typescript",
		DefKinds: map[string]types.Kind{
			"function_declaration":            types.KindFunction,
			"generator_function_declaration":  types.KindFunction,
			"method_definition":               types.KindMethod,
			"class_declaration":                types.KindClass,
			"interface_declaration":            types.KindInterface,
			"type_alias_declaration":           types.KindTypeAlias,
			"enum_declaration":                 types.KindEnum,
			"arrow_function":                   types.KindFunction,
			"function_expression":              types.KindFunction,
		},
		CallKinds:          map[string]bool{"call_expression": true, "new_expression": true},
		CalleeField:        "function",
		ArgumentsField:     "arguments",
		TypeArgumentsField: "type_arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "switch_case": true, "catch_clause": true,
			"ternary_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "for_in_statement": true,
			"while_statement": true, "switch_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"arrow_function": true, "function_expression": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true},
		newLanguage: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
	})

	register([]string{".java"}, &LanguageSpec{
		Name: "java",
		DefKinds: map[string]types.Kind{
			"method_declaration":      types.KindMethod,
			"class_declaration":       types.KindClass,
			"interface_declaration":   types.KindInterface,
			"enum_declaration":        types.KindEnum,
			"record_declaration":      types.KindRecord,
			"constructor_declaration": types.KindConstructor,
		},
		CallKinds:      map[string]bool{"method_invocation": true, "object_creation_expression": true},
		CalleeField:    "name",
		ArgumentsField: "arguments",
		TypeArgumentsField: "type_arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "switch_label": true, "catch_clause": true,
			"ternary_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "enhanced_for_statement": true,
			"while_statement": true, "switch_expression": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"lambda_expression": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_java.Language()) },
	})

	register([]string{".cs"}, &LanguageSpec{
		Name: "csharp",
		DefKinds: map[string]types.Kind{
			"method_declaration":        types.KindMethod,
			"class_declaration":         types.KindClass,
			"interface_declaration":     types.KindInterface,
			"struct_declaration":        types.KindStruct,
			"enum_declaration":          types.KindEnum,
			"record_declaration":        types.KindRecord,
			"constructor_declaration":   types.KindConstructor,
			"local_function_statement":  types.KindFunction,
		},
		CallKinds:          map[string]bool{"invocation_expression": true, "object_creation_expression": true},
		CalleeField:        "function",
		ArgumentsField:     "argument_list",
		TypeArgumentsField: "type_argument_list",
		DecisionKinds: map[string]bool{
			"if_statement": true, "switch_section": true, "catch_clause": true,
			"conditional_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "foreach_statement": true,
			"while_statement": true, "switch_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"lambda_expression": true, "anonymous_method_expression": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true, "throw_expression": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_csharp.Language()) },
	})

	register([]string{".cpp", ".cc", ".cxx", ".hpp", ".h"}, &LanguageSpec{
		Name: "cpp",
		DefKinds: map[string]types.Kind{
			"function_definition": types.KindFunction,
			"class_specifier":      types.KindClass,
			"struct_specifier":     types.KindStruct,
		},
		NameField:      map[string]string{"function_definition": "declarator"},
		CallKinds:      map[string]bool{"call_expression": true},
		CalleeField:    "function",
		ArgumentsField: "arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "case_statement": true, "catch_clause": true,
			"conditional_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "while_statement": true,
			"switch_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"lambda_expression": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_cpp.Language()) },
	})

	register([]string{".php"}, &LanguageSpec{
		Name: "php",
		DefKinds: map[string]types.Kind{
			"function_definition": types.KindFunction,
			"method_declaration":   types.KindMethod,
			"class_declaration":    types.KindClass,
			"interface_declaration": types.KindInterface,
			"enum_declaration":     types.KindEnum,
		},
		CallKinds:      map[string]bool{"function_call_expression": true, "member_call_expression": true, "object_creation_expression": true},
		CalleeField:    "function",
		ArgumentsField: "arguments",
		DecisionKinds: map[string]bool{
			"if_statement": true, "case_statement": true, "catch_clause": true,
			"conditional_expression": true, "binary_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_statement": true, "for_statement": true, "foreach_statement": true,
			"while_statement": true, "switch_statement": true, "try_statement": true,
		},
		LambdaKinds: map[string]bool{"anonymous_function_creation_expression": true, "arrow_function": true},
		ReturnKinds: map[string]bool{"return_statement": true},
		ThrowKinds:  map[string]bool{"throw_statement": true, "throw_expression": true},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_php.Language()) },
	})

	register([]string{".rs"}, &LanguageSpec{
		Name: "rust",
		DefKinds: map[string]types.Kind{
			"function_item":  types.KindFunction,
			"struct_item":    types.KindStruct,
			"enum_item":      types.KindEnum,
			"trait_item":     types.KindInterface,
			"impl_item":      types.KindClass,
		},
		NameField:      map[string]string{"impl_item": "type"},
		CallKinds:      map[string]bool{"call_expression": true},
		CalleeField:    "function",
		ArgumentsField: "arguments",
		DecisionKinds: map[string]bool{
			"if_expression": true, "match_arm": true, "if_let_expression": true,
		},
		NestingKinds: map[string]bool{
			"if_expression": true, "for_expression": true, "while_expression": true, "match_expression": true,
		},
		LambdaKinds: map[string]bool{"closure_expression": true},
		ReturnKinds: map[string]bool{"return_expression": true},
		ThrowKinds:  map[string]bool{},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	})

	register([]string{".zig"}, &LanguageSpec{
		Name: "zig",
		DefKinds: map[string]types.Kind{
			"FnProto":      types.KindFunction,
			"ContainerDecl": types.KindStruct,
		},
		CallKinds:      map[string]bool{"SuffixExpr": true},
		DecisionKinds:  map[string]bool{"IfPrefix": true, "SwitchProng": true},
		NestingKinds:   map[string]bool{"IfPrefix": true, "ForPrefix": true, "WhilePrefix": true},
		LambdaKinds:    map[string]bool{},
		ReturnKinds:    map[string]bool{},
		ThrowKinds:     map[string]bool{},
		newLanguage: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_zig.Language()) },
	})
}
