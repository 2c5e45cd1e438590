package server

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools declares the closed set of search_* tools from §6 against
// their JSON schemas and binds each to its handler. Schema shape mirrors
// the teacher's mcp.Tool{InputSchema: &jsonschema.Schema{...}} pattern; the
// tool set and parameters are this spec's own.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_find",
		Description: "Search file paths by substring, case-insensitive substring, or regex. Empty pattern with dirsOnly lists directories.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"pattern":         strProp("Substring or regex to match against canonical repo-relative paths"),
			"caseInsensitive": boolProp("Case-insensitive substring match"),
			"regex":           boolProp("Treat pattern as a regular expression"),
			"dirsOnly":        boolProp("With an empty pattern, return the distinct directory set instead of files"),
			"maxResults":      intProp("Cap on returned entries, 0 means unlimited"),
		}),
	}, s.handleSearchFind)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_fast",
		Description: "TF-IDF ranked full-text term search over the content index. terms are tokenized and lowercased; mode selects any/all/phrase combination.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"terms":      &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Search terms"},
			"mode":       strProp("any | all | phrase (default any)"),
			"maxResults": intProp("Cap on returned files, 0 means unlimited"),
		}, "terms"),
	}, s.handleSearchFast)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_grep",
		Description: "Substring search over tokens via the trigram index, with grep-style line output and before/after context.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"pattern":         strProp("Substring (or, with regex, a regular expression) to find inside indexed tokens"),
			"caseInsensitive": boolProp("Case-insensitive match"),
			"regex":           boolProp("Treat pattern as a regular expression instead of a literal substring"),
			"before":          intProp("Lines of context before each match"),
			"after":           intProp("Lines of context after each match"),
			"context":         intProp("Lines of context on both sides (overrides before/after when set)"),
			"showLines":       boolProp("Include 1-based line numbers in output"),
			"count":           boolProp("Return match counts per file instead of line text"),
			"maxResults":      intProp("Cap on returned files, 0 means unlimited"),
			"excludeDir":      strProp("Comma-separated directory name substrings to exclude"),
			"ext":             strProp("Comma-separated extension filter, e.g. \"go,ts\""),
		}, "pattern"),
	}, s.handleSearchGrep)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_definitions",
		Description: "Query extracted definitions (classes, methods, functions, ...) by name, kind, attribute, base type, file, or containing line.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"name":              strProp("Name filter"),
			"nameMatch":         strProp("exact | prefix | contains (default contains when name is set)"),
			"kind":              strProp("Definition kind filter, e.g. class, method, function"),
			"attribute":         strProp("Attribute/annotation filter"),
			"baseType":          strProp("Base type/interface filter"),
			"path":              strProp("File path substring filter; with containsLine, the exact repo-relative path"),
			"containsLine":      intProp("Find the innermost definition containing this 1-based line in the exact path given; the other filters are not applied"),
			"minComplexity":     intProp("Minimum cyclomatic complexity"),
			"minParams":         intProp("Minimum parameter count"),
			"includeBody":       boolProp("Inline each result's source range"),
			"maxBodyLines":      intProp("Per-entry body line cap when includeBody is set"),
			"maxTotalBodyLines": intProp("Response-wide body line cap when includeBody is set"),
			"maxResults":        intProp("Cap on returned entries, 0 means unlimited"),
		}),
	}, s.handleSearchDefinitions)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_callers",
		Description: "Build a caller/callee tree for a method name: direction=up finds callers, direction=down expands callees.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"target":             strProp("Method/function name to anchor the tree on"),
			"classFilter":        strProp("Optional receiver class/interface filter, with fuzzy DI matching"),
			"direction":          strProp("up or down"),
			"depth":              intProp("Recursion depth, must be >= 1"),
			"maxCallersPerLevel": intProp("Cap per tree level, 0 means unlimited"),
			"maxTotalNodes":      intProp("Cap on total nodes, 0 means unlimited"),
		}, "target", "direction"),
	}, s.handleSearchCallers)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_info",
		Description: "Report readiness for every index, entry counts for the file and content indexes, and whether the definition index is enabled and the git cache unavailable.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{}),
	}, s.handleSearchInfo)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_help",
		Description: "Usage tips for the search_* tool set: when to use find vs fast vs grep vs definitions vs callers.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"tool": strProp("Tool name to get focused tips for; omit for the full overview"),
		}),
	}, s.handleSearchHelp)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_reindex",
		Description: "Force a full rebuild of the file and content indexes from the current working tree.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{}),
	}, s.handleSearchReindex)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_reindex_definitions",
		Description: "Force a full rebuild of the definition index from the current working tree.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{}),
	}, s.handleSearchReindexDefinitions)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_git_history",
		Description: "Commit history for one file: newest first, optionally filtered by date range, author, or message substring.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"path":       strProp("Repo-relative file path"),
			"from":       strProp("RFC3339 lower bound on commit timestamp"),
			"to":         strProp("RFC3339 upper bound on commit timestamp"),
			"author":     strProp("Author substring filter"),
			"message":    strProp("Subject substring filter"),
			"maxResults": intProp("Cap on returned commits, 0 means unlimited"),
		}, "path"),
	}, s.handleSearchGitHistory)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_git_diff",
		Description: "Live diff between two refs for an optional path. Never served from cache.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"from": strProp("Base ref"),
			"to":   strProp("Target ref"),
			"path": strProp("Optional path scope"),
		}, "from", "to"),
	}, s.handleSearchGitDiff)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_git_authors",
		Description: "Aggregate commit counts and first/last activity per author, optionally scoped to one file.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"path": strProp("Optional repo-relative file path to scope to"),
		}),
	}, s.handleSearchGitAuthors)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_git_activity",
		Description: "Commit activity under a path prefix (the prefix itself or anything rooted under it), deduplicated across files.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"prefix":     strProp("Path prefix; empty means the whole repository"),
			"author":     strProp("Author substring filter"),
			"message":    strProp("Subject substring filter"),
			"maxResults": intProp("Cap on returned commits, 0 means unlimited"),
		}),
	}, s.handleSearchGitActivity)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_git_blame",
		Description: "Live line-porcelain blame for a file at an optional revision. Never served from cache.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{
			"path": strProp("Repo-relative file path"),
			"rev":  strProp("Revision; empty means working tree/HEAD"),
		}, "path"),
	}, s.handleSearchGitBlame)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "search_branch_status",
		Description: "Report the branch the indexes were built from and whether it differs from the repository's detected default branch.",
		InputSchema: toolSchema(map[string]*jsonschema.Schema{}),
	}, s.handleSearchBranchStatus)
}
