package definitions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lci/internal/types"
)

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("Up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	d, err = ParseDirection("DOWN")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestFuzzyDIMatch(t *testing.T) {
	assert.True(t, fuzzyDIMatch("IRepository", "Repository"))
	assert.True(t, fuzzyDIMatch("IUserRepository", "UserRepository"))
	assert.True(t, fuzzyDIMatch("IRepository", "SqlRepository"))
	assert.False(t, fuzzyDIMatch("Repository", "Repository"))
	assert.False(t, fuzzyDIMatch("Interface", "face"))
}

func TestBuiltinReceivers(t *testing.T) {
	assert.True(t, builtinReceivers["Promise"])
	assert.True(t, builtinReceivers["Array"])
	assert.False(t, builtinReceivers["UserService"])
}

func TestCallTree_RejectsZeroDepth(t *testing.T) {
	di := New()
	_, err := di.CallTree(CallTreeOptions{Direction: Up, Target: "Foo", Depth: 0})
	assert.Error(t, err)
}

func TestSearch_RejectsNegativeContainsLine(t *testing.T) {
	di := New()
	_, err := di.Search(Filter{HasContainsLine: true, ContainsLine: -1}, nil)
	assert.Error(t, err)
}

// TestCallTree_ScenarioFour mirrors spec scenario 4: `class Foo { void
// Bar(){} } class Baz { void Q(){ new Foo().Bar(); } }`, search_callers for
// Foo.Bar at depth=1 must return a single caller, the method Baz.Q, never
// the enclosing class Baz itself.
func TestCallTree_ScenarioFour(t *testing.T) {
	di := New()

	addEntry := func(name string, kind types.Kind, parent types.DefID, hasParent bool) types.DefID {
		id := types.DefID(len(di.entries))
		di.entries = append(di.entries, DefinitionEntry{ID: id, Name: name, Kind: kind, ParentID: parent, ParentValid: hasParent})
		di.byName[strings.ToLower(name)] = append(di.byName[strings.ToLower(name)], id)
		di.byKind[kind] = append(di.byKind[kind], id)
		return id
	}
	addCall := func(callerID types.DefID, calleeName, receiverType string) {
		idx := len(di.calls)
		di.calls = append(di.calls, CallSite{CallerID: callerID, CalleeName: calleeName, ReceiverType: receiverType, Line: 1})
		key := strings.ToLower(calleeName)
		di.callsByCallee[key] = append(di.callsByCallee[key], idx)
	}

	fooID := addEntry("Foo", types.KindClass, 0, false)
	addEntry("Bar", types.KindMethod, fooID, true)
	bazID := addEntry("Baz", types.KindClass, 0, false)
	qID := addEntry("Q", types.KindMethod, bazID, true)

	// The call site belongs only to Q's body.
	addCall(qID, "Bar", "Foo")

	nodes, err := di.CallTree(CallTreeOptions{Direction: Up, Target: "Bar", ClassFilter: "Foo", Depth: 1})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Q", nodes[0].Entry.Name)
}

// TestCallTree_ExcludesNonMethodCallers guards callersOfLocked's
// defense-in-depth kind filter: even if a call site were (incorrectly)
// attributed to an enclosing class rather than just its innermost method,
// search_callers must still report only method-like callers per §4.4.
func TestCallTree_ExcludesNonMethodCallers(t *testing.T) {
	di := New()

	addEntry := func(name string, kind types.Kind, parent types.DefID, hasParent bool) types.DefID {
		id := types.DefID(len(di.entries))
		di.entries = append(di.entries, DefinitionEntry{ID: id, Name: name, Kind: kind, ParentID: parent, ParentValid: hasParent})
		di.byName[strings.ToLower(name)] = append(di.byName[strings.ToLower(name)], id)
		di.byKind[kind] = append(di.byKind[kind], id)
		return id
	}
	addCall := func(callerID types.DefID, calleeName, receiverType string) {
		idx := len(di.calls)
		di.calls = append(di.calls, CallSite{CallerID: callerID, CalleeName: calleeName, ReceiverType: receiverType, Line: 1})
		key := strings.ToLower(calleeName)
		di.callsByCallee[key] = append(di.callsByCallee[key], idx)
	}

	fooID := addEntry("Foo", types.KindClass, 0, false)
	addEntry("Bar", types.KindMethod, fooID, true)
	bazID := addEntry("Baz", types.KindClass, 0, false)
	qID := addEntry("Q", types.KindMethod, bazID, true)

	addCall(qID, "Bar", "Foo")
	addCall(bazID, "Bar", "Foo") // class-level mis-attribution, must be filtered

	nodes, err := di.CallTree(CallTreeOptions{Direction: Up, Target: "Bar", ClassFilter: "Foo", Depth: 1})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Q", nodes[0].Entry.Name)
}
