// Package githist implements the persistent commit-history cache: a
// compact in-memory layout built by streaming `git log`, queried by file
// path, author, and prefix, with diff/blame always answered live. The
// exec.Command/repo-root-resolution pattern is grounded on the teacher's
// internal/git.Provider; the compact binary layout and streaming parser are
// new, built for this cache's own record format.
package githist

import (
	"time"

	"github.com/standardbeagle/lci/internal/types"
)

// recordSeparator is the field delimiter used when invoking git log: a
// control character that, unlike the pipe character, ordinary subject lines
// and author names do not contain. parseHeader rejoins any extra separators
// into the subject, so one that does appear there never truncates it.
const recordSeparator = "\x1f"

// CommitMeta is the fixed-size record stored per commit.
type CommitMeta struct {
	Hash      [20]byte // raw SHA-1
	AuthorID  uint32   // index into the author pool
	SubjectID uint32   // index into the subject pool
	Timestamp int64    // unix seconds, author date
}

// Commit is a CommitMeta resolved against the author and subject pools, for
// callers that don't want to do the lookup themselves.
type Commit struct {
	ID        types.CommitID
	Hash      string
	Author    string
	Subject   string
	Timestamp time.Time
}
