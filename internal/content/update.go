package content

import (
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// Upsert (re-)indexes a single file's content. If path was previously
// indexed, its old postings are removed first; otherwise a new file_id is
// assigned from the free list left by a prior Remove, or appended. Requires
// a ContentIndex in mutable mode (New, Build and Restore all return one).
func (ci *ContentIndex) Upsert(path string, contentBytes []byte) error {
	if !ci.mutable {
		return errors.InvalidInput("content.Upsert", "index is not mutable")
	}

	path = pathutil.Normalize(path)

	ci.mu.Lock()
	defer ci.mu.Unlock()

	if fid, ok := ci.pathToID[path]; ok {
		ci.removeLocked(fid)
		ci.insertLocked(path, contentBytes, fid)
		ci.markDirtyLocked()
		return nil
	}

	var fid types.FileID
	if n := len(ci.freeList); n > 0 {
		fid = ci.freeList[n-1]
		ci.freeList = ci.freeList[:n-1]
	} else {
		fid = types.FileID(len(ci.paths))
		ci.paths = append(ci.paths, "")
		ci.fileTokenCounts = append(ci.fileTokenCounts, 0)
	}
	ci.insertLocked(path, contentBytes, fid)
	ci.markDirtyLocked()
	return nil
}

// insertLocked tokenizes contentBytes into file_id fid and records forward
// and inverted entries. Caller must hold ci.mu.
func (ci *ContentIndex) insertLocked(path string, contentBytes []byte, fid types.FileID) {
	ci.paths[fid] = path
	ci.pathToID[path] = fid

	local := make(map[string][]Posting)
	count := tokenizeFile(local, fid, contentBytes)
	ci.fileTokenCounts[fid] = count
	ci.totalTokens += uint64(count)

	tokens := make([]string, 0, len(local))
	for tok, postings := range local {
		ci.inverted[tok] = append(ci.inverted[tok], postings...)
		tokens = append(tokens, tok)
	}
	ci.forward[fid] = tokens
}

// Remove deletes path from the index, freeing its file_id for reuse by a
// later Upsert. Removing an unindexed path is a no-op.
func (ci *ContentIndex) Remove(path string) {
	path = pathutil.Normalize(path)

	ci.mu.Lock()
	defer ci.mu.Unlock()

	fid, ok := ci.pathToID[path]
	if !ok {
		return
	}
	ci.removeLocked(fid)
	ci.paths[fid] = ""
	delete(ci.pathToID, path)
	ci.freeList = append(ci.freeList, fid)
	ci.markDirtyLocked()
}

// removeLocked strips fid's postings out of the inverted index using the
// forward map, and subtracts its token count from totalTokens. It does not
// touch paths/pathToID/freeList bookkeeping, so Upsert can reuse it as the
// first half of a re-index.
func (ci *ContentIndex) removeLocked(fid types.FileID) {
	tokens, ok := ci.forward[fid]
	if !ok {
		return
	}
	for _, tok := range tokens {
		postings := ci.inverted[tok]
		for i, p := range postings {
			if p.FileID == fid {
				postings = append(postings[:i], postings[i+1:]...)
				break
			}
		}
		if len(postings) == 0 {
			delete(ci.inverted, tok)
		} else {
			ci.inverted[tok] = postings
		}
	}
	ci.totalTokens -= uint64(ci.fileTokenCounts[fid])
	ci.fileTokenCounts[fid] = 0
	delete(ci.forward, fid)
}
