package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lci/internal/definitions"
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/semantic"
	"github.com/standardbeagle/lci/internal/types"
)

// defSuggestionThreshold mirrors findSuggestionThreshold for definition-name
// "did you mean" suggestions.
const defSuggestionThreshold = 0.75

func (s *Server) readSource(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, path))
}

// handleSearchDefinitions implements search_definitions per §4.4.
func (s *Server) handleSearchDefinitions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Name              string `json:"name"`
		NameMatch         string `json:"nameMatch"`
		Kind              string `json:"kind"`
		Attribute         string `json:"attribute"`
		BaseType          string `json:"baseType"`
		Path              string `json:"path"`
		ContainsLine      int    `json:"containsLine"`
		MinComplexity     int    `json:"minComplexity"`
		MinParams         int    `json:"minParams"`
		IncludeBody       bool   `json:"includeBody"`
		MaxBodyLines      int    `json:"maxBodyLines"`
		MaxTotalBodyLines int    `json:"maxTotalBodyLines"`
		MaxResults        int    `json:"maxResults"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_definitions", err)
	}
	if !s.cfg.Server.Definitions {
		return s.errorResult("search_definitions", errors.InvalidInput("search_definitions", "definition index disabled for this server"))
	}
	if s.defSt.get() != StateReady {
		return s.notReadyResult("definitions")
	}

	f := definitions.Filter{
		Name:              p.Name,
		NameMatch:         definitions.NameMatch(p.NameMatch),
		Kind:              types.Kind(p.Kind),
		Attribute:         p.Attribute,
		BaseType:          p.BaseType,
		Path:              p.Path,
		ContainsLine:      p.ContainsLine,
		HasContainsLine:   p.ContainsLine != 0,
		MinComplexity:     p.MinComplexity,
		MinParams:         p.MinParams,
		IncludeBody:       p.IncludeBody,
		MaxBodyLines:      p.MaxBodyLines,
		MaxTotalBodyLines: p.MaxTotalBodyLines,
	}

	s.defMu.RLock()
	di := s.defIx
	s.defMu.RUnlock()

	results, err := di.Search(f, s.readSource)
	if err != nil {
		return s.errorResult("search_definitions", err)
	}

	total := len(results)
	if p.MaxResults > 0 && len(results) > p.MaxResults {
		results = results[:p.MaxResults]
	}

	out := toolResult{
		"summary": formatCount(len(results), "definition"),
		"results": results,
		"total":   total,
	}
	if total == 0 {
		warnings := []string{"no definitions matched this filter"}
		if p.Name != "" {
			if sugg := suggestDefNames(di, p.Name); len(sugg) > 0 {
				out["suggestions"] = sugg
				warnings = append(warnings, "no exact name matches; see suggestions")
			}
		}
		out["warnings"] = warnings
	}
	return s.jsonResult(out)
}

// suggestDefNames offers near-miss definition names on a zero-result
// name-filtered search_definitions, reusing the same fuzzy matcher as
// search_find's suggestions.
func suggestDefNames(di *definitions.DefinitionIndex, name string) []string {
	matcher := semantic.NewFuzzyMatcher(true, defSuggestionThreshold, "jaro-winkler")
	snap := di.Snapshot()
	seen := make(map[string]bool, len(snap.Entries))
	candidates := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		if !seen[e.Name] {
			seen[e.Name] = true
			candidates = append(candidates, e.Name)
		}
	}
	matches := matcher.FindMatches(name, candidates)
	if len(matches) > 5 {
		matches = matches[:5]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Term)
	}
	return out
}

// handleSearchCallers implements search_callers per §4.4's call tree.
func (s *Server) handleSearchCallers(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		Target             string `json:"target"`
		ClassFilter        string `json:"classFilter"`
		Direction          string `json:"direction"`
		Depth              int    `json:"depth"`
		MaxCallersPerLevel int    `json:"maxCallersPerLevel"`
		MaxTotalNodes      int    `json:"maxTotalNodes"`
	}
	if err := decodeParams(req, &p); err != nil {
		return s.errorResult("search_callers", err)
	}
	if !s.cfg.Server.Definitions {
		return s.errorResult("search_callers", errors.InvalidInput("search_callers", "definition index disabled for this server"))
	}
	if s.defSt.get() != StateReady {
		return s.notReadyResult("definitions")
	}

	dir, err := definitions.ParseDirection(p.Direction)
	if err != nil {
		return s.errorResult("search_callers", err)
	}
	depth := p.Depth
	if depth < 1 {
		depth = 1
	}

	s.defMu.RLock()
	di := s.defIx
	s.defMu.RUnlock()

	tree, err := di.CallTree(definitions.CallTreeOptions{
		Direction:          dir,
		Target:             p.Target,
		ClassFilter:        p.ClassFilter,
		Depth:              depth,
		MaxCallersPerLevel: p.MaxCallersPerLevel,
		MaxTotalNodes:      p.MaxTotalNodes,
	})
	if err != nil {
		return s.errorResult("search_callers", err)
	}

	out := toolResult{
		"summary": formatCount(countTreeNodes(tree), "node"),
		"tree":    tree,
	}
	if len(tree) == 0 {
		out["warnings"] = []string{"no " + string(dir) + " relationships found for \"" + p.Target + "\""}
	}
	return s.jsonResult(out)
}

func countTreeNodes(nodes []definitions.CallTreeNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countTreeNodes(node.Children)
	}
	return n
}

// handleSearchReindexDefinitions forces a full rebuild of the definition
// index from the current working tree.
func (s *Server) handleSearchReindexDefinitions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.cfg.Server.Definitions {
		return s.errorResult("search_reindex_definitions", errors.InvalidInput("search_reindex_definitions", "definition index disabled for this server"))
	}
	go s.buildDefinitionIndexForce(ctx, true)
	return s.jsonResult(toolResult{"summary": "definition reindex started"})
}
