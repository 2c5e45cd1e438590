package githist

import "github.com/standardbeagle/lci/internal/types"

// Snapshot is the gob-serializable form of a Cache, written by
// internal/persist as the git-history index file. Field names mirror
// Cache's own state so Export/Import are a straight copy.
type Snapshot struct {
	Branch       string
	HeadHash     string
	FormatVer    uint32
	Commits      []CommitMeta
	AuthorPool   []string
	SubjectPool  []string
	FileCommits  map[string][]types.CommitID
}

// Export captures c's state for persistence.
func (c *Cache) Export() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fc := make(map[string][]types.CommitID, len(c.fileCommits))
	for k, v := range c.fileCommits {
		cp := make([]types.CommitID, len(v))
		copy(cp, v)
		fc[k] = cp
	}
	return Snapshot{
		Branch: c.Branch, HeadHash: c.HeadHash, FormatVer: c.FormatVer,
		Commits:     append([]CommitMeta(nil), c.commits...),
		AuthorPool:  append([]string(nil), c.authorPool...),
		SubjectPool: append([]string(nil), c.subjectPool...),
		FileCommits: fc,
	}
}

// Import rebuilds a ready Cache bound to provider from a Snapshot loaded
// from disk. Invalidate.Reconcile is still run afterward to catch a stale
// or rebased head.
func Import(provider *Provider, s Snapshot) *Cache {
	c := New(provider)
	c.Branch = s.Branch
	c.HeadHash = s.HeadHash
	c.FormatVer = s.FormatVer
	c.commits = s.Commits
	c.authorPool = s.AuthorPool
	c.subjectPool = s.SubjectPool
	c.fileCommits = s.FileCommits
	if c.fileCommits == nil {
		c.fileCommits = make(map[string][]types.CommitID)
	}
	c.authorByName = make(map[string]uint32, len(c.authorPool))
	for i, name := range c.authorPool {
		c.authorByName[name] = uint32(i)
	}
	c.ready = true
	return c
}
