package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lci/internal/content"
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/semantic"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// findSuggestionThreshold is the Jaro-Winkler similarity a basename must
// clear to be offered as a "did you mean" suggestion on a zero-result
// search_find.
const findSuggestionThreshold = 0.75

func decodeParams(req *mcp.CallToolRequest, v interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

// handleSearchFind implements search_find: FileIndex path search per §4.2.
func (s *Server) handleSearchFind(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Pattern         string `json:"pattern"`
		CaseInsensitive bool   `json:"caseInsensitive"`
		Regex           bool   `json:"regex"`
		DirsOnly        bool   `json:"dirsOnly"`
		MaxResults      int    `json:"maxResults"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_find", err)
	}

	if s.fileSt.get() != StateReady {
		return s.notReadyResult("file")
	}

	s.fileMu.RLock()
	fi := s.fileIdx
	s.fileMu.RUnlock()

	entries, err := fi.Search(p.Pattern, fileindex.SearchOptions{
		CaseInsensitive: p.CaseInsensitive,
		Regex:           p.Regex,
		DirsOnly:        p.DirsOnly,
	})
	if err != nil {
		return s.errorResult("search_find", err)
	}

	total := len(entries)
	truncated := false
	if p.MaxResults > 0 && len(entries) > p.MaxResults {
		entries = entries[:p.MaxResults]
		truncated = true
	}

	out := toolResult{
		"summary": formatCount(len(entries), "file"),
		"files":   entries,
		"total":   total,
	}
	var warnings []string
	if truncated {
		warnings = append(warnings, "result set truncated by maxResults")
	}
	if total == 0 && p.Pattern != "" && !p.Regex {
		if sugg := suggestFileNames(fi, p.Pattern); len(sugg) > 0 {
			out["suggestions"] = sugg
			warnings = append(warnings, "no exact matches; see suggestions")
		}
	}
	if len(warnings) > 0 {
		out["warnings"] = warnings
	}
	return s.jsonResult(out)
}

// suggestFileNames offers near-miss basenames on a zero-result search_find,
// the same Jaro-Winkler pass search_definitions uses for name filters.
func suggestFileNames(fi *fileindex.FileIndex, pattern string) []string {
	matcher := semantic.NewFuzzyMatcher(true, findSuggestionThreshold, "jaro-winkler")
	candidates := make([]string, 0, fi.Len())
	for _, e := range fi.Entries {
		candidates = append(candidates, filepath.Base(e.Path))
	}
	matches := matcher.FindMatches(filepath.Base(pattern), candidates)
	if len(matches) > 5 {
		matches = matches[:5]
	}
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		if !seen[m.Term] {
			seen[m.Term] = true
			out = append(out, m.Term)
		}
	}
	return out
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return itoa(n) + " " + noun + "s"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// readFileText is content.LineReader bound to the server's root; it backs
// search_fast's punctuated-phrase branch, which needs raw line text that
// ContentIndex itself never stores.
func (s *Server) readFileText(path string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, path))
	if err != nil {
		return "", err
	}
	return pathutil.DecodeText(raw), nil
}

// handleSearchFast implements search_fast: TF-IDF scored term search over
// the content index per §4.3's Query path.
func (s *Server) handleSearchFast(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Terms      []string `json:"terms"`
		Mode       string   `json:"mode"`
		MaxResults int      `json:"maxResults"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_fast", err)
	}

	if s.contentSt.get() != StateReady {
		return s.notReadyResult("content")
	}
	if len(p.Terms) == 0 {
		return s.errorResult("search_fast", errors.InvalidInput("search_fast", "terms must not be empty"))
	}

	mode := content.Mode(p.Mode)
	if mode == "" {
		mode = content.ModeAny
	}

	s.contentMu.RLock()
	ci := s.contentIx
	s.contentMu.RUnlock()

	hits, err := ci.Query(p.Terms, mode, s.readFileText)
	if err != nil {
		return s.errorResult("search_fast", err)
	}

	total := len(hits)
	var warnings []string
	if total == 0 {
		warnings = append(warnings, "no files matched "+strings.Join(p.Terms, ", ")+"; check spelling or try mode=any")
	}
	if p.MaxResults > 0 && len(hits) > p.MaxResults {
		hits = hits[:p.MaxResults]
	}

	out := toolResult{
		"summary": formatCount(len(hits), "file"),
		"hits":    hits,
		"total":   total,
	}
	if len(warnings) > 0 {
		out["warnings"] = warnings
	}
	return s.jsonResult(out)
}

// handleSearchGrep implements search_grep: trigram-narrowed substring (or
// regex) search with grep-style line output and before/after context, per
// §4.3's substring search path plus the CLI's -B/-A/-C flags.
func (s *Server) handleSearchGrep(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Pattern         string `json:"pattern"`
		CaseInsensitive bool   `json:"caseInsensitive"`
		Regex           bool   `json:"regex"`
		Before          int    `json:"before"`
		After           int    `json:"after"`
		Context         int    `json:"context"`
		ShowLines       bool   `json:"showLines"`
		Count           bool   `json:"count"`
		MaxResults      int    `json:"maxResults"`
		ExcludeDir      string `json:"excludeDir"`
		Ext             string `json:"ext"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_grep", err)
	}
	if p.Pattern == "" {
		return s.errorResult("search_grep", errors.InvalidInput("search_grep", "pattern must not be empty"))
	}
	if s.contentSt.get() != StateReady {
		return s.notReadyResult("content")
	}
	if p.Context > 0 {
		p.Before, p.After = p.Context, p.Context
	}

	var re *regexp.Regexp
	if p.Regex {
		pat := p.Pattern
		if p.CaseInsensitive {
			pat = "(?i)" + pat
		}
		var err error
		re, err = regexp.Compile(pat)
		if err != nil {
			return s.errorResult("search_grep", errors.InvalidInput("search_grep", "invalid regex: "+err.Error()))
		}
	}

	s.contentMu.RLock()
	ci := s.contentIx
	s.contentMu.RUnlock()

	fileIDs := make(map[string]bool)
	matchedTokens := []string{}
	if !p.Regex {
		needle := p.Pattern
		if p.CaseInsensitive {
			needle = strings.ToLower(needle)
		}
		for tok, postings := range ci.SubstringSearch(needle) {
			used := false
			for _, post := range postings {
				if path, ok := ci.Path(post.FileID); ok && pathPasses(path, p.ExcludeDir, p.Ext) {
					fileIDs[path] = true
					used = true
				}
			}
			if used {
				matchedTokens = append(matchedTokens, tok)
			}
		}
	} else {
		n := ci.FileCount()
		for i := 0; i < n; i++ {
			path, ok := ci.Path(types.FileID(i))
			if !ok || !pathPasses(path, p.ExcludeDir, p.Ext) {
				continue
			}
			fileIDs[path] = true
		}
	}
	sort.Strings(matchedTokens)

	type fileResult struct {
		Path    string   `json:"path"`
		Count   int      `json:"count,omitempty"`
		Matches []string `json:"matches,omitempty"`
	}

	paths := make([]string, 0, len(fileIDs))
	for path := range fileIDs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var results []fileResult
	for _, path := range paths {
		raw, err := os.ReadFile(filepath.Join(s.root, path))
		if err != nil {
			continue
		}
		text := pathutil.DecodeText(raw)
		lines := strings.Split(text, "\n")

		var matchLines []int
		for i, line := range lines {
			if lineMatches(line, p.Pattern, p.CaseInsensitive, re) {
				matchLines = append(matchLines, i)
			}
		}
		if len(matchLines) == 0 {
			continue
		}

		if p.Count {
			results = append(results, fileResult{Path: path, Count: len(matchLines)})
			continue
		}

		var out []string
		for _, ln := range matchLines {
			start := ln - p.Before
			if start < 0 {
				start = 0
			}
			end := ln + p.After
			if end >= len(lines) {
				end = len(lines) - 1
			}
			for i := start; i <= end; i++ {
				if p.ShowLines {
					out = append(out, itoa(i+1)+": "+lines[i])
				} else {
					out = append(out, lines[i])
				}
			}
		}
		results = append(results, fileResult{Path: path, Matches: out})
	}

	total := len(results)
	if p.MaxResults > 0 && len(results) > p.MaxResults {
		results = results[:p.MaxResults]
	}

	out := toolResult{
		"summary":       formatCount(len(results), "file"),
		"results":       results,
		"total":         total,
		"matchedTokens": matchedTokens,
	}
	if total == 0 {
		out["warnings"] = []string{"no files matched \"" + p.Pattern + "\""}
	}
	return s.jsonResult(out)
}

func pathPasses(path, excludeDir, ext string) bool {
	if excludeDir != "" {
		for _, d := range strings.Split(excludeDir, ",") {
			d = strings.TrimSpace(d)
			if d != "" && strings.Contains(path, d) {
				return false
			}
		}
	}
	if ext != "" {
		matched := false
		for _, e := range strings.Split(ext, ",") {
			e = strings.TrimSpace(strings.TrimPrefix(e, "."))
			if e != "" && strings.HasSuffix(path, "."+e) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func lineMatches(line, pattern string, caseInsensitive bool, re *regexp.Regexp) bool {
	if re != nil {
		return re.MatchString(line)
	}
	if caseInsensitive {
		return strings.Contains(strings.ToLower(line), strings.ToLower(pattern))
	}
	return strings.Contains(line, pattern)
}
