package content

import (
	"math"
	"sort"
	"strings"

	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// Mode selects how a multi-term Query combines per-term postings.
type Mode string

const (
	ModeAny    Mode = "any"    // union, scored by summed TF-IDF
	ModeAll    Mode = "all"    // intersection, scored by summed TF-IDF
	ModePhrase Mode = "phrase" // terms must co-occur on the same line
)

// Hit is one scored, per-file query result.
type Hit struct {
	Path  string
	Score float64
	Lines []uint32
}

// LineReader returns the decoded text of a canonical path. It is supplied
// by callers that have disk access (the server, the CLI) so that Query's
// punctuated-phrase branch can substring-match raw line text; ContentIndex
// itself stores only tokens and postings, never file content.
type LineReader func(path string) (string, error)

// Query scores files against terms under mode and returns hits sorted by
// descending score, ties broken by ascending path. read is only consulted
// for ModePhrase when a term contains non-alphanumeric characters (§4.3);
// it may be omitted for every other query.
func (ci *ContentIndex) Query(terms []string, mode Mode, read ...LineReader) ([]Hit, error) {
	if len(terms) == 0 {
		return nil, errInvalidInput("content.Query", "terms must not be empty")
	}

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if mode == ModePhrase {
		punctuated := false
		for _, t := range terms {
			if !isAlnumOnly(t) {
				punctuated = true
				break
			}
		}
		if punctuated {
			var r LineReader
			if len(read) > 0 {
				r = read[0]
			}
			return ci.queryRawPhraseLocked(terms, r)
		}
	}

	norm := make([]string, len(terms))
	for i, t := range terms {
		if toks := pathutil.Tokenize(t); len(toks) > 0 {
			norm[i] = toks[0]
		} else {
			norm[i] = t
		}
	}

	switch mode {
	case ModePhrase:
		return ci.queryPhraseLocked(norm)
	case ModeAll:
		return ci.queryCombineLocked(norm, true)
	default:
		return ci.queryCombineLocked(norm, false)
	}
}

// isAlnumOnly reports whether s is entirely ASCII letters/digits (and
// non-empty); a false result marks a phrase term that §4.3 says must bypass
// tokenization entirely.
func isAlnumOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

// queryRawPhraseLocked implements §4.3's punctuated-phrase branch: "bypass
// tokenization and substring-match the raw phrase against line text on the
// candidate file set." The candidate set is narrowed using whatever alnum
// sub-tokens the phrase's terms contain (the same postings the tokenized
// path would have used); a phrase with no alnum runs at all falls back to
// every indexed file. read fetches each candidate's text for the literal
// substring check; without one, matches cannot be verified against line
// text, so candidates are reported unscored.
func (ci *ContentIndex) queryRawPhraseLocked(terms []string, read LineReader) ([]Hit, error) {
	phrase := strings.Join(terms, " ")

	subTokens := make(map[string]bool)
	for _, t := range terms {
		for _, tok := range pathutil.Tokenize(t) {
			subTokens[tok] = true
		}
	}

	candidates := make(map[types.FileID]bool)
	if len(subTokens) > 0 {
		for tok := range subTokens {
			for _, p := range ci.inverted[tok] {
				candidates[p.FileID] = true
			}
		}
	} else {
		for fid := range ci.paths {
			candidates[types.FileID(fid)] = true
		}
	}

	var hits []Hit
	for fid := range candidates {
		path := ci.paths[fid]
		if read == nil {
			hits = append(hits, Hit{Path: path})
			continue
		}
		text, err := read(path)
		if err != nil {
			continue
		}
		var matchLines []uint32
		for i, line := range strings.Split(text, "\n") {
			if strings.Contains(line, phrase) {
				matchLines = append(matchLines, uint32(i+1))
			}
		}
		if len(matchLines) > 0 {
			hits = append(hits, Hit{Path: path, Score: float64(len(matchLines)), Lines: matchLines})
		}
	}
	sortHits(hits)
	return hits, nil
}

func (ci *ContentIndex) queryCombineLocked(terms []string, requireAll bool) ([]Hit, error) {
	type acc struct {
		score float64
		lines map[uint32]bool
	}
	perFile := make(map[types.FileID]*acc)
	matchedTerms := make(map[types.FileID]int)

	for _, term := range terms {
		postings, ok := ci.inverted[term]
		if !ok {
			continue
		}
		df := len(postings)
		idf := math.Log(float64(len(ci.paths)) / float64(df))
		for _, p := range postings {
			tf := float64(len(p.Lines)) / float64(max32(ci.fileTokenCounts[p.FileID], 1))
			a, exists := perFile[p.FileID]
			if !exists {
				a = &acc{lines: make(map[uint32]bool)}
				perFile[p.FileID] = a
			}
			a.score += tf * idf
			for _, l := range p.Lines {
				a.lines[l] = true
			}
			matchedTerms[p.FileID]++
		}
	}

	var hits []Hit
	for fid, a := range perFile {
		if requireAll && matchedTerms[fid] < len(terms) {
			continue
		}
		path := ci.paths[fid]
		hits = append(hits, Hit{Path: path, Score: a.score, Lines: sortedLines(a.lines)})
	}
	sortHits(hits)
	return hits, nil
}

// queryPhraseLocked requires every term to appear on the same line for a
// file to match; word order within the line is not checked. The score is
// the sum of the terms' IDF values, and Lines lists the matching lines.
func (ci *ContentIndex) queryPhraseLocked(terms []string) ([]Hit, error) {
	postingsByTerm := make([][]Posting, len(terms))
	for i, term := range terms {
		postingsByTerm[i] = ci.inverted[term]
	}
	if len(postingsByTerm[0]) == 0 {
		return nil, nil
	}

	linesByFile := make(map[types.FileID]map[uint32]bool)
	for i, postings := range postingsByTerm {
		fileLines := make(map[types.FileID]map[uint32]bool, len(postings))
		for _, p := range postings {
			m := make(map[uint32]bool, len(p.Lines))
			for _, l := range p.Lines {
				m[l] = true
			}
			fileLines[p.FileID] = m
		}
		if i == 0 {
			for fid, m := range fileLines {
				linesByFile[fid] = m
			}
			continue
		}
		for fid, m := range linesByFile {
			other, ok := fileLines[fid]
			if !ok {
				delete(linesByFile, fid)
				continue
			}
			for l := range m {
				if !other[l] {
					delete(m, l)
				}
			}
			if len(m) == 0 {
				delete(linesByFile, fid)
			}
		}
	}

	var hits []Hit
	for fid, lines := range linesByFile {
		if len(lines) == 0 {
			continue
		}
		score := 0.0
		for _, term := range terms {
			postings := ci.inverted[term]
			df := len(postings)
			if df == 0 {
				continue
			}
			idf := math.Log(float64(len(ci.paths)) / float64(df))
			score += idf
		}
		hits = append(hits, Hit{Path: ci.paths[fid], Score: score, Lines: sortedLines(lines)})
	}
	sortHits(hits)
	return hits, nil
}

func sortedLines(m map[uint32]bool) []uint32 {
	out := make([]uint32, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Path < hits[j].Path
	})
}

func max32(v uint32, floor uint32) uint32 {
	if v < floor {
		return floor
	}
	return v
}
