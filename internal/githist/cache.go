package githist

import (
	"context"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// maxAuthors is the author-pool ceiling; exceeding it aborts the build and
// the cache is marked permanently unavailable for the repository rather
// than silently dropping authors.
const maxAuthors = 65535

// Cache is the persistent commit-history cache for one repository.
type Cache struct {
	mu sync.RWMutex

	provider *Provider

	Branch       string
	HeadHash     string
	FormatVer    uint32
	commits      []CommitMeta
	authorPool   []string
	authorByName map[string]uint32
	subjectPool  []string
	fileCommits  map[string][]types.CommitID

	unavailable bool
	ready       bool
}

// New wires a Cache to provider without building it.
func New(provider *Provider) *Cache {
	return &Cache{
		provider:     provider,
		FormatVer:    1,
		authorByName: make(map[string]uint32),
		fileCommits:  make(map[string][]types.CommitID),
	}
}

// Build performs a full rebuild by streaming the entire log.
func (c *Cache) Build(ctx context.Context) error {
	branch := c.provider.DefaultBranch(ctx)
	head, err := c.provider.HeadHash(ctx, branch)
	if err != nil {
		head, err = c.provider.HeadHash(ctx, "HEAD")
		branch = "HEAD"
		if err != nil {
			return err
		}
	}

	fresh := New(c.provider)
	fresh.Branch = branch
	fresh.HeadHash = head

	if err := fresh.ingest(ctx, ""); err != nil {
		if fresh.unavailable {
			c.mu.Lock()
			c.unavailable = true
			c.mu.Unlock()
		}
		return err
	}

	c.mu.Lock()
	c.Branch, c.HeadHash, c.FormatVer = fresh.Branch, fresh.HeadHash, fresh.FormatVer
	c.commits, c.authorPool, c.authorByName = fresh.commits, fresh.authorPool, fresh.authorByName
	c.subjectPool, c.fileCommits = fresh.subjectPool, fresh.fileCommits
	c.ready = true
	c.mu.Unlock()
	return nil
}

// Append performs an incremental build over old..HeadHash and merges the
// result into the existing cache. Callers must have already verified old
// is an ancestor of the current head.
func (c *Cache) Append(ctx context.Context, old string) error {
	c.mu.RLock()
	branch := c.Branch
	c.mu.RUnlock()

	newHead, err := c.provider.HeadHash(ctx, branch)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ingest(ctx, old+".."+newHead); err != nil {
		return err
	}
	c.HeadHash = newHead
	c.ready = true
	return nil
}

// ingest streams revRange and appends to c's pools. Caller holds no lock
// (fresh cache in Build) or the write lock (Append).
func (c *Cache) ingest(ctx context.Context, revRange string) error {
	return c.provider.StreamLog(ctx, revRange, func(rec LogRecord) error {
		authorID, ok := c.authorByName[rec.Author]
		if !ok {
			if len(c.authorPool) >= maxAuthors {
				c.unavailable = true
				return errors.ResourceExhausted("githist.ingest", "author pool exceeded 65535 entries")
			}
			authorID = uint32(len(c.authorPool))
			c.authorPool = append(c.authorPool, rec.Author)
			c.authorByName[rec.Author] = authorID
		}

		subjectID := uint32(len(c.subjectPool))
		c.subjectPool = append(c.subjectPool, rec.Subject)

		var hashBytes [20]byte
		if decoded, err := hex.DecodeString(rec.Hash); err == nil && len(decoded) == 20 {
			copy(hashBytes[:], decoded)
		}

		commitID := types.CommitID(len(c.commits))
		c.commits = append(c.commits, CommitMeta{
			Hash: hashBytes, AuthorID: authorID, SubjectID: subjectID, Timestamp: rec.Timestamp,
		})

		for _, f := range rec.Files {
			norm := pathutil.Normalize(f)
			c.fileCommits[norm] = append(c.fileCommits[norm], commitID)
		}
		return nil
	})
}

// Unavailable reports whether the cache is permanently disabled for this
// repository (author pool overflow).
func (c *Cache) Unavailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unavailable
}

// Ready reports whether a build has completed.
func (c *Cache) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

func (c *Cache) resolve(id types.CommitID) Commit {
	m := c.commits[id]
	return Commit{
		ID: id, Hash: hex.EncodeToString(m.Hash[:]),
		Author: c.authorPool[m.AuthorID], Subject: c.subjectPool[m.SubjectID],
		Timestamp: time.Unix(m.Timestamp, 0).UTC(),
	}
}

// FileHistoryFilter configures QueryFileHistory.
type FileHistoryFilter struct {
	From, To      time.Time // zero value means unbounded
	Author        string    // substring match, case-insensitive
	Message       string    // substring match, case-insensitive
	MaxResults    int       // 0 means unlimited
}

// QueryFileHistory returns path's matching commits, newest first, and the
// total count before truncation.
func (c *Cache) QueryFileHistory(path string, f FileHistoryFilter) ([]Commit, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path = pathutil.Normalize(path)
	ids, ok := c.fileCommits[path]
	if !ok {
		return nil, 0, errors.NotFound("githist.QueryFileHistory", path)
	}

	var matched []Commit
	for _, id := range ids {
		commit := c.resolve(id)
		if !f.From.IsZero() && commit.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && commit.Timestamp.After(f.To) {
			continue
		}
		if f.Author != "" && !strings.Contains(strings.ToLower(commit.Author), strings.ToLower(f.Author)) {
			continue
		}
		if f.Message != "" && !strings.Contains(strings.ToLower(commit.Subject), strings.ToLower(f.Message)) {
			continue
		}
		matched = append(matched, commit)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	total := len(matched)
	if f.MaxResults > 0 && len(matched) > f.MaxResults {
		matched = matched[:f.MaxResults]
	}
	return matched, total, nil
}

// AuthorStats aggregates one author's commit activity.
type AuthorStats struct {
	Author      string
	CommitCount int
	First, Last time.Time
}

// QueryAuthors aggregates distinct commits per author, optionally scoped to
// a single path.
func (c *Cache) QueryAuthors(path string) ([]AuthorStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []types.CommitID
	if path != "" {
		var ok bool
		ids, ok = c.fileCommits[pathutil.Normalize(path)]
		if !ok {
			return nil, errors.NotFound("githist.QueryAuthors", path)
		}
	} else {
		for i := range c.commits {
			ids = append(ids, types.CommitID(i))
		}
	}

	byAuthor := make(map[string]*AuthorStats)
	for _, id := range ids {
		commit := c.resolve(id)
		st, ok := byAuthor[commit.Author]
		if !ok {
			st = &AuthorStats{Author: commit.Author, First: commit.Timestamp, Last: commit.Timestamp}
			byAuthor[commit.Author] = st
		}
		st.CommitCount++
		if commit.Timestamp.Before(st.First) {
			st.First = commit.Timestamp
		}
		if commit.Timestamp.After(st.Last) {
			st.Last = commit.Timestamp
		}
	}

	out := make([]AuthorStats, 0, len(byAuthor))
	for _, st := range byAuthor {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommitCount > out[j].CommitCount })
	return out, nil
}

// QueryActivity scans file_commits keys matching prefix (the key itself or
// anything rooted under prefix/), unions their commit ids, and returns the
// deduplicated, filtered set.
func (c *Cache) QueryActivity(prefix string, f FileHistoryFilter) ([]Commit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prefix = pathutil.Normalize(prefix)
	seen := make(map[types.CommitID]bool)
	var out []Commit
	for key, ids := range c.fileCommits {
		if prefix != "" && key != prefix && !strings.HasPrefix(key, prefix+"/") {
			continue
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			commit := c.resolve(id)
			if f.Author != "" && !strings.Contains(strings.ToLower(commit.Author), strings.ToLower(f.Author)) {
				continue
			}
			if f.Message != "" && !strings.Contains(strings.ToLower(commit.Subject), strings.ToLower(f.Message)) {
				continue
			}
			out = append(out, commit)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
