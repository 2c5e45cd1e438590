package definitions

import (
	"sort"
	"strings"

	"github.com/standardbeagle/lci/internal/types"
)

// NameMatch selects how Filter.Name is compared against an entry's name.
type NameMatch string

const (
	NameExact    NameMatch = "exact"
	NamePrefix   NameMatch = "prefix"
	NameContains NameMatch = "contains"
)

// Filter describes a search_definitions query.
type Filter struct {
	Name      string
	NameMatch NameMatch // ignored when Name == ""

	Kind      types.Kind // "" means no filter
	Attribute string     // "" means no filter
	BaseType  string      // "" means no filter
	Path      string      // "" means no filter, else substring match; with HasContainsLine, the exact indexed path

	ContainsLine    int  // 0 (and HasContainsLine false) means unset
	HasContainsLine bool

	MinComplexity int
	MinParams     int

	IncludeBody       bool
	MaxBodyLines      int
	MaxTotalBodyLines int
}

// Result is one search_definitions hit, with its source body attached when
// Filter.IncludeBody was set.
type Result struct {
	Entry DefinitionEntry
	Body  string // only set when requested and within the body-line budget
}

// Search returns entries matching f, ranked by exact > prefix > contains
// name match, ties broken by kind priority then ascending name length.
func (di *DefinitionIndex) Search(f Filter, source func(path string) ([]byte, error)) ([]Result, error) {
	if f.HasContainsLine && f.ContainsLine < 0 {
		return nil, errInvalidInput("definitions.Search", "containsLine must not be negative")
	}

	di.mu.RLock()
	defer di.mu.RUnlock()

	type scored struct {
		entry DefinitionEntry
		rank  int // 0 exact, 1 prefix, 2 contains
	}

	var candidates []scored
	nameLower := strings.ToLower(f.Name)

	if f.HasContainsLine {
		best, ok := di.innermostContainingLocked(f.Path, f.ContainsLine)
		if ok {
			candidates = append(candidates, scored{entry: best, rank: 0})
		}
	} else {
		for _, e := range di.entries {
			if e.Name == "" {
				continue // tombstone
			}
			if !di.matchesLocked(e, f) {
				continue
			}
			rank := 2
			if f.Name == "" {
				rank = 0
			} else {
				en := strings.ToLower(e.Name)
				switch {
				case en == nameLower:
					rank = 0
				case strings.HasPrefix(en, nameLower):
					rank = 1
				case strings.Contains(en, nameLower):
					rank = 2
				default:
					continue
				}
				if (f.NameMatch == NameExact && rank > 0) || (f.NameMatch == NamePrefix && rank > 1) {
					continue
				}
			}
			candidates = append(candidates, scored{entry: e, rank: rank})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		pa, pb := types.KindPriority(a.entry.Kind), types.KindPriority(b.entry.Kind)
		if pa != pb {
			return pa < pb
		}
		return len(a.entry.Name) < len(b.entry.Name)
	})

	totalBodyLines := 0
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		r := Result{Entry: c.entry}
		if f.IncludeBody && source != nil {
			body, lines := readBody(c.entry, source, f.MaxBodyLines)
			if f.MaxTotalBodyLines <= 0 || totalBodyLines+lines <= f.MaxTotalBodyLines {
				r.Body = body
				totalBodyLines += lines
			}
		}
		results = append(results, r)
	}
	return results, nil
}

func (di *DefinitionIndex) matchesLocked(e DefinitionEntry, f Filter) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Path != "" && !strings.Contains(e.Path, f.Path) {
		return false
	}
	if f.Attribute != "" && !containsFold(e.Attribute, f.Attribute) {
		return false
	}
	if f.BaseType != "" && !containsFold(e.BaseTypes, f.BaseType) {
		return false
	}
	if f.MinComplexity > 0 && e.Cyclomatic < f.MinComplexity {
		return false
	}
	if f.MinParams > 0 && e.ParamCount < f.MinParams {
		return false
	}
	return true
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// innermostContainingLocked finds the definition in path with the smallest
// line range that contains line.
func (di *DefinitionIndex) innermostContainingLocked(path string, line int) (DefinitionEntry, bool) {
	var best DefinitionEntry
	found := false
	for _, id := range di.pathToDefs[path] {
		e := di.entries[id]
		if e.Name == "" {
			continue
		}
		if e.StartLine <= line && line <= e.EndLine {
			if !found || (e.EndLine-e.StartLine) < (best.EndLine-best.StartLine) {
				best = e
				found = true
			}
		}
	}
	return best, found
}

func readBody(e DefinitionEntry, source func(path string) ([]byte, error), maxBodyLines int) (string, int) {
	content, err := source(e.Path)
	if err != nil {
		return "", 0
	}
	if int(e.EndByte) > len(content) || e.StartByte > e.EndByte {
		return "", 0
	}
	body := string(content[e.StartByte:e.EndByte])
	if maxBodyLines <= 0 {
		lines := strings.Count(body, "\n") + 1
		return body, lines
	}
	lines := strings.SplitN(body, "\n", maxBodyLines+1)
	truncated := len(lines) > maxBodyLines
	if truncated {
		lines = lines[:maxBodyLines]
	}
	return strings.Join(lines, "\n"), len(lines)
}
