package definitions

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/lci/internal/ast"
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
)

// DefinitionIndex holds every extracted definition and call site and the
// secondary maps search_definitions and search_callers query against.
type DefinitionIndex struct {
	mu sync.RWMutex

	entries []DefinitionEntry // DefID -> entry; a tombstoned entry has Name == ""
	calls   []CallSite

	byFile map[types.FileID][]types.DefID
	byName map[string][]types.DefID // lowercase name -> def ids
	byKind map[types.Kind][]types.DefID

	// baseTypeIndex maps a base type name to the names of types that declare
	// it as a supertype/interface, used to resolve subtype matches for
	// search_callers' class filter.
	baseTypeIndex map[string][]string

	callsByCallee map[string][]int // lowercase callee name -> index into calls
	freeDefIDs    []types.DefID
	pathToDefs    map[string][]types.DefID
}

// New returns an empty DefinitionIndex ready for incremental use.
func New() *DefinitionIndex {
	return &DefinitionIndex{
		byFile:        make(map[types.FileID][]types.DefID),
		byName:        make(map[string][]types.DefID),
		byKind:        make(map[types.Kind][]types.DefID),
		baseTypeIndex: make(map[string][]string),
		callsByCallee: make(map[string][]int),
		pathToDefs:    make(map[string][]types.DefID),
	}
}

// SourceFile is one file handed to Build/IndexFile.
type SourceFile struct {
	Path    string
	FileID  types.FileID
	Content []byte
}

// Build extracts definitions from every file whose extension is supported,
// skipping the rest. Unsupported files are not an error: the caller decides
// whether to report them.
func Build(files []SourceFile) *DefinitionIndex {
	di := New()
	for _, f := range files {
		di.indexFileLocked(f)
	}
	return di
}

// IndexFile (re-)extracts definitions for a single file in a mutable index,
// first removing any prior entries for that path.
func (di *DefinitionIndex) IndexFile(f SourceFile) {
	di.mu.Lock()
	defer di.mu.Unlock()
	di.removePathLocked(f.Path)
	di.indexFileLocked(f)
}

func (di *DefinitionIndex) indexFileLocked(f SourceFile) {
	ext := filepath.Ext(f.Path)
	spec := ast.Lookup(ext)
	if spec == nil {
		return
	}

	defs, callsByDef, localTypesByDef, err := ast.Extract(spec, f.Content)
	if err != nil || defs == nil {
		return
	}

	idxToDefID := make([]types.DefID, len(defs))
	for i, d := range defs {
		id := di.allocDefID()
		idxToDefID[i] = id
		entry := DefinitionEntry{
			ID: id, File: f.FileID, Path: f.Path,
			Kind: d.Kind, Name: d.Name,
			StartLine: d.StartLine, EndLine: d.EndLine,
			StartByte: d.StartByte, EndByte: d.EndByte,
			Cyclomatic: d.Cyclomatic, Cognitive: d.Cognitive, MaxNesting: d.MaxNesting,
			ParamCount: d.ParamCount, ReturnCount: d.ReturnCount, ThrowCount: d.ThrowCount,
			CallCount: d.CallCount, LambdaCount: d.LambdaCount,
		}
		di.setEntry(entry)
		di.byFile[f.FileID] = append(di.byFile[f.FileID], id)
		di.byName[strings.ToLower(d.Name)] = append(di.byName[strings.ToLower(d.Name)], id)
		di.byKind[d.Kind] = append(di.byKind[d.Kind], id)
		di.pathToDefs[f.Path] = append(di.pathToDefs[f.Path], id)
	}

	// Containment: a def is the parent of any def nested inside its byte
	// range, assigned to the innermost (last-seen, smallest-range) enclosing
	// candidate since defs is emitted in pre-order.
	for i, d := range defs {
		for j := i - 1; j >= 0; j-- {
			other := defs[j]
			if other.StartByte <= d.StartByte && d.EndByte <= other.EndByte {
				e := di.entries[idxToDefID[i]]
				e.ParentID = idxToDefID[j]
				e.ParentValid = true
				di.entries[idxToDefID[i]] = e
				break
			}
		}
	}

	for i, calls := range callsByDef {
		callerID := idxToDefID[i]
		localTypes := localTypesByDef[i]
		for _, c := range calls {
			receiverType := localTypes[c.ReceiverExpr]
			cs := CallSite{
				CallerID: callerID, File: f.FileID, Line: c.Line,
				CalleeName: c.CalleeName, ReceiverType: receiverType,
				GenericArity: c.GenericArity, IsGeneric: c.IsGeneric,
			}
			idx := len(di.calls)
			di.calls = append(di.calls, cs)
			key := strings.ToLower(c.CalleeName)
			di.callsByCallee[key] = append(di.callsByCallee[key], idx)
		}
	}
}

func (di *DefinitionIndex) allocDefID() types.DefID {
	if n := len(di.freeDefIDs); n > 0 {
		id := di.freeDefIDs[n-1]
		di.freeDefIDs = di.freeDefIDs[:n-1]
		return id
	}
	return types.DefID(len(di.entries))
}

func (di *DefinitionIndex) setEntry(e DefinitionEntry) {
	if int(e.ID) == len(di.entries) {
		di.entries = append(di.entries, e)
		return
	}
	di.entries[e.ID] = e
}

// RemovePath tombstones every definition belonging to path and drops the
// call sites made from those definitions.
func (di *DefinitionIndex) RemovePath(path string) {
	di.mu.Lock()
	defer di.mu.Unlock()
	di.removePathLocked(path)
}

func (di *DefinitionIndex) removePathLocked(path string) {
	ids, ok := di.pathToDefs[path]
	if !ok {
		return
	}
	idSet := make(map[types.DefID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	for _, id := range ids {
		e := di.entries[id]
		di.byName[strings.ToLower(e.Name)] = removeDefID(di.byName[strings.ToLower(e.Name)], id)
		di.byKind[e.Kind] = removeDefID(di.byKind[e.Kind], id)
		di.byFile[e.File] = removeDefID(di.byFile[e.File], id)
		di.entries[id] = DefinitionEntry{} // tombstone
		di.freeDefIDs = append(di.freeDefIDs, id)
	}

	var kept []CallSite
	var keptByCallee = make(map[string][]int)
	for _, c := range di.calls {
		if idSet[c.CallerID] {
			continue
		}
		keptByCallee[strings.ToLower(c.CalleeName)] = append(keptByCallee[strings.ToLower(c.CalleeName)], len(kept))
		kept = append(kept, c)
	}
	di.calls = kept
	di.callsByCallee = keptByCallee

	delete(di.pathToDefs, path)
}

func removeDefID(ids []types.DefID, target types.DefID) []types.DefID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// AddBaseType records that typeName declares baseType as a supertype or
// interface, for search_callers' subtype resolution.
func (di *DefinitionIndex) AddBaseType(typeName, baseType string) {
	di.mu.Lock()
	defer di.mu.Unlock()
	di.baseTypeIndex[baseType] = append(di.baseTypeIndex[baseType], typeName)
}

// Count returns the number of live (non-tombstoned) entries.
func (di *DefinitionIndex) Count() int {
	di.mu.RLock()
	defer di.mu.RUnlock()
	n := 0
	for _, e := range di.entries {
		if e.Name != "" {
			n++
		}
	}
	return n
}

func errInvalidInput(op, msg string) error {
	return errors.InvalidInput(op, msg)
}
