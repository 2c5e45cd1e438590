package definitions

import (
	"strings"

	"github.com/standardbeagle/lci/internal/types"
)

// Snapshot is the gob-serializable form of a DefinitionIndex, used by
// internal/persist as the code-structure index file. The secondary maps
// (byName, byKind, …) are not serialized; Restore rebuilds them from
// Entries and Calls, the same way indexFileLocked would have populated
// them during extraction.
type Snapshot struct {
	Entries       []DefinitionEntry
	Calls         []CallSite
	BaseTypeIndex map[string][]string
}

// Snapshot captures di's entries, call sites, and base-type index for
// persistence.
func (di *DefinitionIndex) Snapshot() Snapshot {
	di.mu.RLock()
	defer di.mu.RUnlock()

	bti := make(map[string][]string, len(di.baseTypeIndex))
	for k, v := range di.baseTypeIndex {
		bti[k] = append([]string(nil), v...)
	}
	return Snapshot{
		Entries:       append([]DefinitionEntry(nil), di.entries...),
		Calls:         append([]CallSite(nil), di.calls...),
		BaseTypeIndex: bti,
	}
}

// Restore rebuilds a queryable DefinitionIndex from a Snapshot loaded from
// disk, without re-running tree-sitter extraction.
func Restore(s Snapshot) *DefinitionIndex {
	di := New()
	di.entries = s.Entries
	di.calls = s.Calls
	if s.BaseTypeIndex != nil {
		di.baseTypeIndex = s.BaseTypeIndex
	}

	for id, e := range di.entries {
		if e.Name == "" {
			continue // tombstone
		}
		defID := types.DefID(id)
		di.byFile[e.File] = append(di.byFile[e.File], defID)
		di.byName[strings.ToLower(e.Name)] = append(di.byName[strings.ToLower(e.Name)], defID)
		di.byKind[e.Kind] = append(di.byKind[e.Kind], defID)
		di.pathToDefs[e.Path] = append(di.pathToDefs[e.Path], defID)
	}
	for idx, c := range di.calls {
		key := strings.ToLower(c.CalleeName)
		di.callsByCallee[key] = append(di.callsByCallee[key], idx)
	}
	return di
}
