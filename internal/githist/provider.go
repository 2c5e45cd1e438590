package githist

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lci/internal/errors"
)

// Provider wraps read-only git commit-log, diff, and blame invocations
// scoped to a single repository root.
type Provider struct {
	repoRoot string
}

// NewProvider resolves root to its containing repository's top level via
// `git rev-parse --show-toplevel`, so the cache works from any subdirectory.
func NewProvider(root string) (*Provider, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.IO("githist.NewProvider", root, err)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.NotFound("githist.NewProvider", fmt.Sprintf("not a git repository: %s", absRoot))
	}
	return &Provider{repoRoot: strings.TrimSpace(string(out))}, nil
}

func (p *Provider) RepoRoot() string { return p.repoRoot }

// DefaultBranch probes main/master/develop/trunk in order, falling back to
// the symbolic HEAD ref.
func (p *Provider) DefaultBranch(ctx context.Context) string {
	for _, name := range []string{"main", "master", "develop", "trunk"} {
		cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "--quiet", name)
		cmd.Dir = p.repoRoot
		if err := cmd.Run(); err == nil {
			return name
		}
	}
	return "HEAD"
}

// HeadHash returns the commit hash ref currently resolves to.
func (p *Provider) HeadHash(ctx context.Context, ref string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", ref)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", errors.NotFound("githist.HeadHash", ref)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsAncestor reports whether old is an ancestor of new (old..new is a valid
// incremental range), or false (with no error) if git cannot determine it
// (e.g. old is unknown after a re-clone).
func (p *Provider) IsAncestor(ctx context.Context, old, new string) bool {
	cmd := exec.CommandContext(ctx, "git", "merge-base", "--is-ancestor", old, new)
	cmd.Dir = p.repoRoot
	return cmd.Run() == nil
}

// ObjectExists probes whether hash still names a reachable object, used to
// detect a re-clone where the stored head hash is simply unknown.
func (p *Provider) ObjectExists(ctx context.Context, hash string) bool {
	cmd := exec.CommandContext(ctx, "git", "cat-file", "-e", hash)
	cmd.Dir = p.repoRoot
	return cmd.Run() == nil
}

// StreamLog runs `git log` over revRange (e.g. "" for the full history, or
// "OLD..NEW" for an incremental window) and invokes onRecord once per
// parsed commit as output streams in, never buffering the full log.
//
// Each log entry starts with a header line
// recordMarker<RS>hash<RS>author<RS>unixtime<RS>subject, followed by the
// commit's touched paths one per line (--name-only), up to the next header
// line or EOF. core.quotePath=false keeps non-ASCII paths unquoted.
func (p *Provider) StreamLog(ctx context.Context, revRange string, onRecord func(rec LogRecord) error) error {
	args := []string{
		"-c", "core.quotePath=false",
		"log", "--no-renames", "-c", "--date=unix",
		"--pretty=format:__REC__" + recordSeparator + "%H" + recordSeparator + "%an" + recordSeparator + "%at" + recordSeparator + "%s",
		"--name-only", "-c",
	}
	if revRange != "" {
		args = append(args, revRange)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoRoot
	return streamLogOutput(cmd, onRecord)
}

// LogRecord is one parsed commit from StreamLog.
type LogRecord struct {
	Hash      string
	Author    string
	Timestamp int64
	Subject   string
	Files     []string
}

// Diff answers a live diff request; diff content is never cached.
func (p *Provider) Diff(ctx context.Context, from, to, path string) (string, error) {
	args := []string{"diff", from, to}
	if path != "" {
		args = append(args, "--", path)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", errors.NotFound("githist.Diff", path)
	}
	return string(out), nil
}

// Blame answers a live blame request for path at rev (empty rev means
// working tree / HEAD).
func (p *Provider) Blame(ctx context.Context, rev, path string) (string, error) {
	args := []string{"blame", "--line-porcelain"}
	if rev != "" {
		args = append(args, rev)
	}
	args = append(args, "--", path)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return "", errors.NotFound("githist.Blame", path)
	}
	return string(out), nil
}
