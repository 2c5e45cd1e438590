package ast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lci/internal/types"
)

// Definition is one named declaration found while walking a syntax tree.
// internal/definitions wraps this with file-level identity (DefID, FileID,
// path) to form a DefinitionEntry.
type Definition struct {
	Kind      types.Kind
	Name      string
	StartLine int // 1-based
	EndLine   int
	StartByte uint
	EndByte   uint

	Cyclomatic  int
	Cognitive   int
	MaxNesting  int
	ParamCount  int
	ReturnCount int
	ThrowCount  int
	CallCount   int
	LambdaCount int
}

// Call is one invocation site found inside a definition's body.
type Call struct {
	CalleeName   string
	Line         int
	GenericArity int
	IsGeneric    bool
	// ReceiverExpr is the raw source text of the call's receiver expression
	// (e.g. "a.b()" in "a.b().c()"), empty for bare calls.
	ReceiverExpr string
	// ReceiverType is filled in by internal/definitions from the per-file
	// local-type environment; ast has no type inference of its own.
	ReceiverType string
}

// Extract parses content with spec's grammar and returns every top-level and
// nested definition together with the call sites found in each definition's
// body. Definitions are returned in a pre-order (outer before inner) so
// callers can build containment relationships (e.g. method inside class) by
// comparing byte ranges.
func Extract(spec *LanguageSpec, content []byte) ([]Definition, map[int][]Call, map[int]map[string]string, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(spec.Language()); err != nil {
		return nil, nil, nil, err
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil, nil, nil
	}
	defer tree.Close()

	root := tree.RootNode()

	var defs []Definition
	callsByDef := make(map[int][]Call)
	localTypesByDef := make(map[int]map[string]string)

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		kind := n.Kind()
		if defKind, ok := spec.DefKinds[kind]; ok {
			d := buildDefinition(spec, n, content, defKind)
			defIdx := len(defs)
			defs = append(defs, d)
			callsByDef[defIdx] = collectCalls(spec, n, content)
			localTypesByDef[defIdx] = collectLocalTypes(n, content)
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child != nil {
				walk(child)
			}
		}
	}
	walk(root)

	return defs, callsByDef, localTypesByDef, nil
}

// collectLocalTypes builds a best-effort variable-name -> declared-type
// environment for def's body: parameters and local declarations whose node
// exposes both a "type" and a "name"/"declarator" field. Pattern-bound
// locals (`obj is Type name`, `case Type name:`) and cast expressions
// `(Type)obj` are picked up the same way since those grammars expose the
// bound name and type as named fields on the pattern/cast node itself.
func collectLocalTypes(def *tree_sitter.Node, content []byte) map[string]string {
	env := make(map[string]string)
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		typeNode := n.ChildByFieldName("type")
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = n.ChildByFieldName("declarator")
		}
		if typeNode != nil && nameNode != nil {
			name := textOf(nameNode, content)
			typ := textOf(typeNode, content)
			if name != "" && typ != "" {
				env[name] = typ
			}
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child != nil {
				walk(child)
			}
		}
	}
	walk(def)
	return env
}

func buildDefinition(spec *LanguageSpec, n *tree_sitter.Node, content []byte, kind types.Kind) Definition {
	field := spec.NameField[n.Kind()]
	if field == "" {
		field = "name"
	}
	name := ""
	if nameNode := n.ChildByFieldName(field); nameNode != nil {
		name = textOf(nameNode, content)
	}

	start := n.StartPosition()
	end := n.EndPosition()

	d := Definition{
		Kind:      kind,
		Name:      name,
		StartLine: int(start.Row) + 1,
		EndLine:   int(end.Row) + 1,
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
	}

	computeMetrics(spec, n, &d)
	return d
}

func textOf(n *tree_sitter.Node, content []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(content) || start > end {
		return ""
	}
	return string(content[start:end])
}

// collectCalls walks every descendant of def for call nodes, recursing into
// a call's own receiver/children (not just its argument list) so chained
// calls like a.b().c() surface both the inner and outer call sites. It stops
// descending at a nested definition boundary (e.g. a method inside the class
// def currently being walked): that nested def gets its own Extract.walk
// visit and its own collectCalls pass, so a call inside it must be
// attributed only to that innermost def, not also to every def enclosing it.
func collectCalls(spec *LanguageSpec, def *tree_sitter.Node, content []byte) []Call {
	var calls []Call
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if _, isNestedDef := spec.DefKinds[n.Kind()]; isNestedDef {
			return
		}
		if spec.CallKinds[n.Kind()] {
			calls = append(calls, buildCall(spec, n, content))
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			child := n.Child(uint(i))
			if child != nil {
				walk(child)
			}
		}
	}
	count := int(def.ChildCount())
	for i := 0; i < count; i++ {
		child := def.Child(uint(i))
		if child != nil {
			walk(child)
		}
	}
	return calls
}

func buildCall(spec *LanguageSpec, n *tree_sitter.Node, content []byte) Call {
	c := Call{Line: int(n.StartPosition().Row) + 1}

	calleeField := spec.CalleeField
	if calleeField == "" {
		calleeField = "function"
	}
	if calleeNode := n.ChildByFieldName(calleeField); calleeNode != nil {
		calleeText := textOf(calleeNode, content)
		c.CalleeName = bareCalleeName(calleeText)
		if idx := strings.LastIndexAny(calleeText, ".:"); idx >= 0 {
			c.ReceiverExpr = strings.TrimRight(calleeText[:idx], ".:")
		}
	}

	if spec.TypeArgumentsField != "" {
		if targs := n.ChildByFieldName(spec.TypeArgumentsField); targs != nil {
			arity := 0
			count := int(targs.NamedChildCount())
			arity = count
			c.GenericArity = arity
			c.IsGeneric = arity > 0
		}
	}

	return c
}

// bareCalleeName strips a receiver/namespace prefix and any explicit
// generic type arguments from a callee expression, leaving the bare
// identifier: "pkg.Foo<int>" -> "Foo", "a.b().c" -> "c".
func bareCalleeName(expr string) string {
	name := expr
	if idx := strings.LastIndexAny(name, ".:"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.IndexByte(name, '<'); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
