package server

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/githist"
)

func (s *Server) gitReady() (*githist.Cache, *githist.Provider, bool) {
	if s.gitSt.isUnavailable() {
		return nil, nil, false
	}
	if s.gitSt.get() != StateReady {
		return nil, nil, false
	}
	s.gitMu.RLock()
	c := s.gitCache
	s.gitMu.RUnlock()
	return c, s.gitProvider, true
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

// handleSearchGitHistory implements search_git_history per §4.5.
func (s *Server) handleSearchGitHistory(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Path       string `json:"path"`
		From       string `json:"from"`
		To         string `json:"to"`
		Author     string `json:"author"`
		Message    string `json:"message"`
		MaxResults int    `json:"maxResults"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_git_history", err)
	}
	cache, _, ok := s.gitReady()
	if !ok {
		return s.notReadyResult("git")
	}

	from, err := parseOptionalTime(p.From)
	if err != nil {
		return s.errorResult("search_git_history", errors.InvalidInput("search_git_history", "invalid from: "+err.Error()))
	}
	to, err := parseOptionalTime(p.To)
	if err != nil {
		return s.errorResult("search_git_history", errors.InvalidInput("search_git_history", "invalid to: "+err.Error()))
	}

	commits, total, err := cache.QueryFileHistory(p.Path, githist.FileHistoryFilter{
		From: from, To: to, Author: p.Author, Message: p.Message, MaxResults: p.MaxResults,
	})
	if err != nil {
		return s.errorResult("search_git_history", err)
	}

	return s.jsonResult(toolResult{
		"summary": formatCount(len(commits), "commit"),
		"commits": commits,
		"total":   total,
	})
}

// handleSearchGitDiff implements search_git_diff: always a live command,
// never served from the cache per §4.5.
func (s *Server) handleSearchGitDiff(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		From string `json:"from"`
		To   string `json:"to"`
		Path string `json:"path"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_git_diff", err)
	}
	_, provider, ok := s.gitReady()
	if !ok || provider == nil {
		return s.notReadyResult("git")
	}

	diff, err := provider.Diff(ctx, p.From, p.To, p.Path)
	if err != nil {
		return s.errorResult("search_git_diff", err)
	}

	return s.jsonResult(toolResult{
		"summary": "diff " + p.From + ".." + p.To,
		"diff":    diff,
	})
}

// handleSearchGitAuthors implements search_git_authors.
func (s *Server) handleSearchGitAuthors(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Path string `json:"path"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_git_authors", err)
	}
	cache, _, ok := s.gitReady()
	if !ok {
		return s.notReadyResult("git")
	}

	stats, err := cache.QueryAuthors(p.Path)
	if err != nil {
		return s.errorResult("search_git_authors", err)
	}

	return s.jsonResult(toolResult{
		"summary": formatCount(len(stats), "author"),
		"authors": stats,
	})
}

// handleSearchGitActivity implements search_git_activity.
func (s *Server) handleSearchGitActivity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Prefix     string `json:"prefix"`
		Author     string `json:"author"`
		Message    string `json:"message"`
		MaxResults int    `json:"maxResults"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_git_activity", err)
	}
	cache, _, ok := s.gitReady()
	if !ok {
		return s.notReadyResult("git")
	}

	commits, err := cache.QueryActivity(p.Prefix, githist.FileHistoryFilter{Author: p.Author, Message: p.Message})
	if err != nil {
		return s.errorResult("search_git_activity", err)
	}

	total := len(commits)
	if p.MaxResults > 0 && len(commits) > p.MaxResults {
		commits = commits[:p.MaxResults]
	}

	return s.jsonResult(toolResult{
		"summary": formatCount(len(commits), "commit"),
		"commits": commits,
		"total":   total,
	})
}

// handleSearchGitBlame implements search_git_blame: always a live command.
func (s *Server) handleSearchGitBlame(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Path string `json:"path"`
		Rev  string `json:"rev"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_git_blame", err)
	}
	_, provider, ok := s.gitReady()
	if !ok || provider == nil {
		return s.notReadyResult("git")
	}

	blame, err := provider.Blame(ctx, p.Rev, p.Path)
	if err != nil {
		return s.errorResult("search_git_blame", err)
	}

	return s.jsonResult(toolResult{
		"summary": "blame " + p.Path,
		"blame":   blame,
	})
}

// handleSearchBranchStatus implements search_branch_status.
func (s *Server) handleSearchBranchStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cache, provider, ok := s.gitReady()
	if !ok {
		return s.notReadyResult("git")
	}

	out := toolResult{
		"summary": "branch " + cache.Branch,
		"branch":  cache.Branch,
	}
	if provider != nil {
		out["defaultBranch"] = provider.DefaultBranch(ctx)
	}
	if s.branchWarning != "" {
		out["warnings"] = []string{s.branchWarning}
	}
	return s.jsonResult(out)
}
