package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// handleSearchInfo reports readiness and entry counts for every index, the
// teacher's handleInfo pattern generalized to this engine's four indexes.
func (s *Server) handleSearchInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.fileMu.RLock()
	var fileCount int
	if s.fileIdx != nil {
		fileCount = s.fileIdx.Len()
	}
	s.fileMu.RUnlock()

	s.contentMu.RLock()
	var tokenFiles int
	if s.contentIx != nil {
		tokenFiles = s.contentIx.FileCount()
	}
	s.contentMu.RUnlock()

	defReady := s.cfg.Server.Definitions

	out := toolResult{
		"summary": "lci index status",
		"root":    s.root,
		"indexes": map[string]interface{}{
			"file": map[string]interface{}{
				"state":   s.fileSt.get().String(),
				"entries": fileCount,
			},
			"content": map[string]interface{}{
				"state":   s.contentSt.get().String(),
				"entries": tokenFiles,
			},
			"definitions": map[string]interface{}{
				"state":   s.defSt.get().String(),
				"enabled": defReady,
			},
			"git": map[string]interface{}{
				"state":       s.gitSt.get().String(),
				"unavailable": s.gitSt.isUnavailable(),
			},
		},
	}
	return s.jsonResult(out)
}

var searchHelpTips = map[string]string{
	"search_find":                "Use for filename/path lookups: substrings, regex, or the directory list (empty pattern + dirsOnly).",
	"search_fast":                "Use for full-text term queries ranked by TF-IDF; mode=phrase requires co-occurrence on one line.",
	"search_grep":                "Use for exact substrings inside file content with grep-style context lines; slower than search_fast but exact.",
	"search_definitions":         "Use to find classes/functions/methods by name, kind, attribute, or base type, or the definition enclosing a given line.",
	"search_callers":             "Use to build a caller (direction=up) or callee (direction=down) tree from a method name.",
	"search_git_history":         "Use for one file's commit history, newest first.",
	"search_git_diff":            "Use for a live diff between two refs; never cached.",
	"search_git_authors":         "Use for per-author commit counts and activity span, optionally scoped to a file.",
	"search_git_activity":        "Use for commit activity rooted under a path prefix.",
	"search_git_blame":           "Use for a live line-porcelain blame of a file at an optional revision.",
	"search_branch_status":       "Use to check whether the indexed branch matches the repository's default branch.",
	"search_reindex":             "Use to force a fresh walk of the working tree for the file and content indexes.",
	"search_reindex_definitions": "Use to force a fresh AST extraction pass for the definition index.",
}

// handleSearchHelp implements search_help.
func (s *Server) handleSearchHelp(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Tool string `json:"tool"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_help", err)
	}

	if p.Tool != "" {
		tip, ok := searchHelpTips[p.Tool]
		if !ok {
			return s.jsonResult(toolResult{
				"summary": "unknown tool \"" + p.Tool + "\"",
				"tools":   searchHelpTips,
			})
		}
		return s.jsonResult(toolResult{"summary": tip, "tool": p.Tool})
	}

	return s.jsonResult(toolResult{
		"summary": "search_* tool overview",
		"tools":   searchHelpTips,
	})
}

// handleSearchReindex implements search_reindex: forces a fresh walk of the
// working tree for the file and content indexes.
func (s *Server) handleSearchReindex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	go s.buildFileAndContentIndexForce(ctx, true)
	return s.jsonResult(toolResult{"summary": "reindex started"})
}
