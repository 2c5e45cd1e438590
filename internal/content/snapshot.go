package content

import "github.com/standardbeagle/lci/internal/types"

// Snapshot is the gob-serializable form of a ContentIndex, used by
// internal/persist to write and restore the word-search index file. Unlike
// ContentIndex itself, every field here is exported so the standard gob
// encoder can walk it without a custom codec.
type Snapshot struct {
	Paths           []string
	FileTokenCounts []uint32
	Inverted        map[string][]Posting
}

// Snapshot captures ci's queryable state for persistence. The trigram index
// and mutable-mode bookkeeping (forward, pathToID, freeList) are rebuilt by
// Restore rather than serialized, since they are cheap to derive from
// Inverted and Paths.
func (ci *ContentIndex) Snapshot() Snapshot {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	inv := make(map[string][]Posting, len(ci.inverted))
	for tok, postings := range ci.inverted {
		cp := make([]Posting, len(postings))
		copy(cp, postings)
		inv[tok] = cp
	}
	paths := make([]string, len(ci.paths))
	copy(paths, ci.paths)
	counts := make([]uint32, len(ci.fileTokenCounts))
	copy(counts, ci.fileTokenCounts)

	return Snapshot{Paths: paths, FileTokenCounts: counts, Inverted: inv}
}

// Restore rebuilds a mutable ContentIndex from a Snapshot loaded from disk.
func Restore(s Snapshot) *ContentIndex {
	ci := &ContentIndex{
		inverted: s.Inverted,
		mutable:  true,
		forward:  make(map[types.FileID][]string),
		pathToID: make(map[string]types.FileID),
	}
	if ci.inverted == nil {
		ci.inverted = make(map[string][]Posting)
	}
	ci.paths = s.Paths
	ci.fileTokenCounts = s.FileTokenCounts

	fileTokens := make([]map[string]bool, len(ci.paths))
	for i := range fileTokens {
		fileTokens[i] = make(map[string]bool)
	}
	for tok, postings := range ci.inverted {
		for _, p := range postings {
			if int(p.FileID) < len(fileTokens) {
				fileTokens[p.FileID][tok] = true
			}
		}
	}
	for i, path := range ci.paths {
		toks := make([]string, 0, len(fileTokens[i]))
		for tok := range fileTokens[i] {
			toks = append(toks, tok)
		}
		ci.forward[types.FileID(i)] = toks
		if path != "" {
			ci.pathToID[path] = types.FileID(i)
		} else {
			ci.freeList = append(ci.freeList, types.FileID(i))
		}
	}
	for _, c := range ci.fileTokenCounts {
		ci.totalTokens += uint64(c)
	}
	ci.trigramDirty = true
	return ci
}
