// Package content implements the inverted content index: token -> posting
// list, a trigram sub-index over the token vocabulary for substring search,
// and TF-IDF scoring. See trigram.go for the substring path and query.go for
// the term-query path.
package content

import (
	"runtime"
	"sort"
	"sync"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// ContentIndex is the inverted index over tokenized file content.
type ContentIndex struct {
	mu sync.RWMutex

	paths           []string        // file_id -> canonical path
	fileTokenCounts []uint32        // file_id -> total token occurrences
	inverted        map[string][]Posting
	totalTokens     uint64

	trigram      *trigramIndex
	trigramDirty bool

	// Mutable-mode fields used by Upsert/Remove (see Watcher); New, Build
	// and Restore all populate them.
	mutable  bool
	forward  map[types.FileID][]string // file_id -> tokens present (for removal)
	pathToID map[string]types.FileID
	freeList []types.FileID
}

// New returns an empty, mutable ContentIndex ready for incremental use.
func New() *ContentIndex {
	return &ContentIndex{
		inverted: make(map[string][]Posting),
		mutable:  true,
		forward:  make(map[types.FileID][]string),
		pathToID: make(map[string]types.FileID),
	}
}

// FileDoc is one file's content fed to Build.
type FileDoc struct {
	Path    string
	Content []byte
}

// BuildOptions configures a parallel build.
type BuildOptions struct {
	// Workers bounds the number of tokenizing goroutines; 0 picks
	// GOMAXPROCS.
	Workers int
}

// Build constructs a ContentIndex from docs in parallel: the doc list is
// chunked across N worker goroutines, each builds a local token->postings
// map with a per-file token counter, and the chunks are merged sequentially
// by moving (not copying) postings into the shared maps. file_id assignment
// is stable given the order of docs, so builds are deterministic when the
// caller's walk order is.
func Build(docs []FileDoc, opts BuildOptions) *ContentIndex {
	ci := &ContentIndex{
		inverted: make(map[string][]Posting),
		mutable:  true,
		forward:  make(map[types.FileID][]string),
		pathToID: make(map[string]types.FileID),
	}
	ci.paths = make([]string, len(docs))
	ci.fileTokenCounts = make([]uint32, len(docs))
	for i, d := range docs {
		ci.paths[i] = pathutil.Normalize(d.Path)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}

	type chunkResult struct {
		local map[string][]Posting
	}

	chunkSize := (len(docs) + workers - 1) / workers
	if chunkSize == 0 {
		chunkSize = 1
	}

	results := make([]chunkResult, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start >= len(docs) {
			break
		}
		if end > len(docs) {
			end = len(docs)
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			local := make(map[string][]Posting)
			for idx := start; idx < end; idx++ {
				fileID := types.FileID(idx)
				counted := tokenizeFile(local, fileID, docs[idx].Content)
				ci.fileTokenCounts[idx] = counted
			}
			results[w] = chunkResult{local: local}
		}(w, start, end)
	}
	wg.Wait()

	fileTokens := make([]map[string]bool, len(docs))
	for i := range fileTokens {
		fileTokens[i] = make(map[string]bool)
	}
	for _, r := range results {
		for tok, postings := range r.local {
			ci.inverted[tok] = append(ci.inverted[tok], postings...)
			for _, p := range postings {
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
		ci.pathToID[path] = types.FileID(i)
	}

	for _, c := range ci.fileTokenCounts {
		ci.totalTokens += uint64(c)
	}

	ci.trigramDirty = true
	return ci
}

// tokenizeFile tokenizes content and appends one posting per distinct token
// into local, returning the total token occurrence count for the file.
func tokenizeFile(local map[string][]Posting, fileID types.FileID, content []byte) uint32 {
	lineOf := newLineIndex(content)
	tokens := pathutil.Tokenize(string(content))

	byToken := make(map[string]*Posting)
	offset := 0
	text := string(content)
	for _, tok := range tokens {
		// Re-find forward from offset to recover the byte position; tokens
		// come back in order so this is O(n) total, not O(n^2).
		pos := indexFrom(text, tok, offset)
		if pos < 0 {
			pos = offset
		}
		offset = pos + len(tok)

		p, ok := byToken[tok]
		if !ok {
			p = &Posting{FileID: fileID}
			byToken[tok] = p
		}
		p.addLine(uint32(lineOf.lineAt(pos)))
	}

	for tok, p := range byToken {
		local[tok] = append(local[tok], *p)
	}

	return uint32(len(tokens))
}

// indexFrom finds the lowercase token starting no earlier than from. Token
// text is already lowercased; we need the line of its first remaining
// occurrence so we scan the original (mixed-case) text case-insensitively.
func indexFrom(text, tokenLower string, from int) int {
	if from > len(text) {
		from = len(text)
	}
	hay := text[from:]
	n := len(tokenLower)
	for i := 0; i+n <= len(hay); i++ {
		if equalFold(hay[i:i+n], tokenLower) {
			return from + i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// lineIndex maps a byte offset to a 1-based line number.
type lineIndex struct {
	newlineOffsets []int
}

func newLineIndex(content []byte) *lineIndex {
	li := &lineIndex{}
	for i, b := range content {
		if b == '\n' {
			li.newlineOffsets = append(li.newlineOffsets, i)
		}
	}
	return li
}

func (li *lineIndex) lineAt(offset int) int {
	// Binary search for the first newline offset >= offset.
	lo, hi := 0, len(li.newlineOffsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if li.newlineOffsets[mid] < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo + 1
}

// FileCount returns the number of indexed files.
func (ci *ContentIndex) FileCount() int {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return len(ci.paths)
}

// Path returns the canonical path for a file_id.
func (ci *ContentIndex) Path(id types.FileID) (string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	if int(id) >= len(ci.paths) {
		return "", false
	}
	p := ci.paths[id]
	return p, p != ""
}

// FileIDFor returns the file_id assigned to path, if indexed.
func (ci *ContentIndex) FileIDFor(path string) (types.FileID, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	id, ok := ci.pathToID[pathutil.Normalize(path)]
	return id, ok
}

// markDirtyLocked flags the trigram index for lazy rebuild. Caller must hold
// ci.mu for writing.
func (ci *ContentIndex) markDirtyLocked() {
	ci.trigramDirty = true
}

// ensureTrigramLocked rebuilds the trigram index from inverted's keys if
// dirty. Caller must hold ci.mu for writing (SubstringSearch takes the
// write lock around this call).
func (ci *ContentIndex) ensureTrigramLocked() {
	if !ci.trigramDirty && ci.trigram != nil {
		return
	}
	tokens := make([]string, 0, len(ci.inverted))
	for tok := range ci.inverted {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	ci.trigram = buildTrigramIndex(tokens)
	ci.trigramDirty = false
}

// errInvalidInput is a small helper to keep call sites terse.
func errInvalidInput(op, msg string) error {
	return errors.InvalidInput(op, msg)
}
