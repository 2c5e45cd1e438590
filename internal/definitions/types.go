// Package definitions implements the DefinitionIndex: per-language AST
// extraction via internal/ast, the search_definitions query surface, and
// the search_callers call tree (up/down traversal with fuzzy DI matching).
package definitions

import (
	"github.com/standardbeagle/lci/internal/types"
)

// DefinitionEntry is one named declaration extracted from a source file.
type DefinitionEntry struct {
	ID   types.DefID
	File types.FileID
	Path string

	Kind types.Kind
	Name string

	StartLine int
	EndLine   int
	StartByte uint
	EndByte   uint

	BaseTypes []string // declared supertypes/interfaces, raw names
	Attribute []string // decorators/annotations, raw names

	Cyclomatic  int
	Cognitive   int
	MaxNesting  int
	ParamCount  int
	ReturnCount int
	ThrowCount  int
	CallCount   int
	LambdaCount int

	// ParentID is the enclosing definition (e.g. a method's class), or 0
	// with ParentValid false for top-level definitions.
	ParentID    types.DefID
	ParentValid bool
}

// CallSite is one invocation found inside a DefinitionEntry's body.
type CallSite struct {
	CallerID     types.DefID
	File         types.FileID
	Line         int
	CalleeName   string
	ReceiverType string // resolved local type, "" if unknown
	GenericArity int
	IsGeneric    bool
}
