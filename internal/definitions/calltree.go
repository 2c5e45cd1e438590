package definitions

import (
	"strings"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
)

// Direction selects search_callers' traversal direction.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up"/"down" case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return "", errors.InvalidInput("definitions.ParseDirection", "direction must be \"up\" or \"down\"")
	}
}

// builtinReceivers blocks calls on well-known built-in types from
// polluting search_callers' "up" results: `.Map()` style calls on these
// receivers are never user DI targets.
var builtinReceivers = buildBuiltinReceivers()

func buildBuiltinReceivers() map[string]bool {
	names := []string{
		"Promise", "Array", "Map", "Set", "String", "Object", "Number", "Boolean",
		"RegExp", "Date", "Error", "WeakMap", "WeakSet", "Symbol", "Proxy", "Reflect",
		"JSON", "Math", "Function", "ArrayBuffer", "DataView", "Int8Array", "Uint8Array",
		"Int16Array", "Uint16Array", "Int32Array", "Uint32Array", "Float32Array", "Float64Array",
		"List", "Dictionary", "HashSet", "IEnumerable", "IEnumerator", "Task", "ValueTask",
		"StringBuilder", "Console", "Convert", "DateTime", "TimeSpan", "Guid", "Nullable",
		"ArrayList", "HashMap", "LinkedList", "TreeMap", "TreeSet", "Optional", "Stream",
		"Collectors", "Objects", "Arrays", "Collections", "Thread", "Runnable",
		"dict", "list", "set", "tuple", "str", "int", "float", "bool", "bytes", "frozenset",
		"Vec", "HashMap", "BTreeMap", "Box", "Rc", "Arc", "Option", "Result",
		"std", "strings", "fmt", "io", "os", "sync", "context", "errors", "bytes",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// CallTreeOptions bounds a search_callers traversal.
type CallTreeOptions struct {
	Direction          Direction
	Target             string // method name M
	ClassFilter        string // optional class filter C
	Depth              int    // must be >= 1
	MaxCallersPerLevel int    // 0 means unlimited
	MaxTotalNodes      int    // 0 means unlimited
}

// CallTreeNode is one entry in a search_callers result: the definition at
// this node and the call site(s) that connected it to its parent.
type CallTreeNode struct {
	Entry    DefinitionEntry
	ViaLine  int
	Children []CallTreeNode
}

// CallTree runs search_callers for opts.
func (di *DefinitionIndex) CallTree(opts CallTreeOptions) ([]CallTreeNode, error) {
	if opts.Depth < 1 {
		return nil, errors.InvalidInput("definitions.CallTree", "depth must be >= 1")
	}

	di.mu.RLock()
	defer di.mu.RUnlock()

	visited := make(map[types.DefID]bool)
	totalNodes := 0

	var expand func(target string, classFilter string, depth int) []CallTreeNode
	expand = func(target string, classFilter string, depth int) []CallTreeNode {
		if depth == 0 {
			return nil
		}
		var nodes []CallTreeNode
		if opts.Direction == Up {
			nodes = di.callersOfLocked(target, classFilter)
		} else {
			nodes = di.calleesOfLocked(target, classFilter)
		}

		if opts.MaxCallersPerLevel > 0 && len(nodes) > opts.MaxCallersPerLevel {
			nodes = nodes[:opts.MaxCallersPerLevel]
		}

		var out []CallTreeNode
		for _, n := range nodes {
			if opts.MaxTotalNodes > 0 && totalNodes >= opts.MaxTotalNodes {
				break
			}
			if visited[n.Entry.ID] {
				continue
			}
			visited[n.Entry.ID] = true
			totalNodes++

			nextClassFilter := classFilter
			if opts.Direction == Down {
				// unqualified calls resolve only within the callee's own
				// class at depth >= 2, to prevent cross-class pollution
				nextClassFilter = enclosingClassName(di, n.Entry)
			}
			n.Children = expand(n.Entry.Name, nextClassFilter, depth-1)
			out = append(out, n)
		}
		return out
	}

	return expand(opts.Target, opts.ClassFilter, opts.Depth), nil
}

// callableKinds is the set of def kinds that can own a call site's body, per
// §4.4: "the set of methods whose body contains a call site." A call is
// attributed to its innermost enclosing def by collectCalls, so this is a
// defense-in-depth filter, not the primary fix for cross-def attribution.
var callableKinds = map[types.Kind]bool{
	types.KindMethod:      true,
	types.KindConstructor: true,
	types.KindFunction:    true,
}

// callersOfLocked finds every method-like definition whose body contains a
// call site matching target (and classFilter, if given).
func (di *DefinitionIndex) callersOfLocked(target, classFilter string) []CallTreeNode {
	key := strings.ToLower(target)
	var out []CallTreeNode
	for _, idx := range di.callsByCallee[key] {
		c := di.calls[idx]
		if c.CalleeName != target {
			continue
		}
		if builtinReceivers[c.ReceiverType] {
			continue
		}
		if classFilter != "" && !di.receiverMatchesClassLocked(c.ReceiverType, classFilter) {
			continue
		}
		caller := di.entries[c.CallerID]
		if caller.Name == "" || !callableKinds[caller.Kind] {
			continue
		}
		out = append(out, CallTreeNode{Entry: caller, ViaLine: c.Line})
	}
	return out
}

// calleesOfLocked expands the callees invoked from within target's own
// body (matched by name, optionally scoped to classFilter's definitions).
func (di *DefinitionIndex) calleesOfLocked(target, classFilter string) []CallTreeNode {
	var callerIDs []types.DefID
	for _, id := range di.byName[strings.ToLower(target)] {
		e := di.entries[id]
		if e.Name == "" {
			continue
		}
		if classFilter != "" && !di.methodBelongsToClassLocked(e, classFilter) {
			continue
		}
		callerIDs = append(callerIDs, id)
	}

	seen := make(map[string]bool)
	var out []CallTreeNode
	for _, cid := range callerIDs {
		for _, c := range di.calls {
			if c.CallerID != cid {
				continue
			}
			if builtinReceivers[c.ReceiverType] {
				continue
			}
			candidates := di.byName[strings.ToLower(c.CalleeName)]
			for _, did := range candidates {
				callee := di.entries[did]
				if callee.Name == "" {
					continue
				}
				if seen[callee.Path+"#"+callee.Name] {
					continue
				}
				seen[callee.Path+"#"+callee.Name] = true
				out = append(out, CallTreeNode{Entry: callee, ViaLine: c.Line})
			}
		}
	}
	return out
}

// receiverMatchesClassLocked implements the class-filter matching rule: the
// receiver type resolves to C directly, to a subtype of C via
// baseTypeIndex, or via fuzzy DI matching (an interface "IFoo" matches an
// implementation named "Foo").
func (di *DefinitionIndex) receiverMatchesClassLocked(receiverType, classFilter string) bool {
	if receiverType == "" {
		return true // unresolved receiver: don't over-filter
	}
	if receiverType == classFilter {
		return true
	}
	for _, sub := range di.baseTypeIndex[classFilter] {
		if sub == receiverType {
			return true
		}
	}
	if fuzzyDIMatch(classFilter, receiverType) || fuzzyDIMatch(receiverType, classFilter) {
		return true
	}
	return false
}

// fuzzyDIMatch reports whether iface is an "IFoo"-style interface name
// matching impl's "Foo" implementation name.
func fuzzyDIMatch(iface, impl string) bool {
	if len(iface) < 2 || iface[0] != 'I' {
		return false
	}
	if iface[1] < 'A' || iface[1] > 'Z' {
		return false
	}
	return iface[1:] == impl || strings.HasSuffix(impl, iface[1:])
}

func (di *DefinitionIndex) methodBelongsToClassLocked(e DefinitionEntry, classFilter string) bool {
	if !e.ParentValid {
		return false
	}
	parent := di.entries[e.ParentID]
	return parent.Name == classFilter
}

func enclosingClassName(di *DefinitionIndex, e DefinitionEntry) string {
	if !e.ParentValid {
		return ""
	}
	parent := di.entries[e.ParentID]
	return parent.Name
}
