package content

import (
	"sort"

	"github.com/standardbeagle/lci/pkg/pathutil"
)

// trigramIndex maps a 3-byte trigram to the sorted, deduplicated list of
// vocabulary tokens that contain it. It exists purely to narrow substring
// search to a small candidate token set before a literal Contains check,
// the same three-step plan (candidates -> verify -> postings) the teacher's
// trigram sub-index uses for its byte-offset index, adapted here over the
// token vocabulary instead of raw file bytes.
type trigramIndex struct {
	postings map[string][]string // trigram -> sorted token list
}

func buildTrigramIndex(sortedTokens []string) *trigramIndex {
	ti := &trigramIndex{postings: make(map[string][]string)}
	for _, tok := range sortedTokens {
		for _, tri := range pathutil.Trigrams(tok) {
			if l := ti.postings[tri]; len(l) > 0 && l[len(l)-1] == tok {
				continue // trigram repeats within tok
			}
			ti.postings[tri] = append(ti.postings[tri], tok)
		}
	}
	return ti
}

// candidateTokens returns the tokens that could possibly contain substr,
// found by intersecting the token lists of substr's trigrams. Substrings
// shorter than 3 bytes fall back to a full vocabulary scan by the caller.
func (ti *trigramIndex) candidateTokens(substr string) []string {
	trigrams := pathutil.Trigrams(substr)
	if len(trigrams) == 0 {
		return nil
	}

	var result []string
	for i, tri := range trigrams {
		toks := ti.postings[tri]
		if i == 0 {
			result = toks
			continue
		}
		result = intersectSorted(result, toks)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

// intersectSorted returns the sorted intersection of two sorted, deduped
// string slices.
func intersectSorted(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// SubstringSearch returns postings for every vocabulary token containing
// substr (case-insensitive; tokens are already lowercased). A substr under 3
// bytes bypasses the trigram filter and scans the whole vocabulary directly.
func (ci *ContentIndex) SubstringSearch(substr string) map[string][]Posting {
	ci.mu.Lock()
	ci.ensureTrigramLocked()
	ci.mu.Unlock()

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	out := make(map[string][]Posting)
	if len(substr) < 3 {
		for tok, postings := range ci.inverted {
			if containsFold(tok, substr) {
				out[tok] = postings
			}
		}
		return out
	}

	for _, tok := range ci.trigram.candidateTokens(substr) {
		if containsFold(tok, substr) {
			out[tok] = ci.inverted[tok]
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if equalFold(s[i:i+n], substr) {
			return true
		}
	}
	return false
}

// vocabSorted returns the sorted token vocabulary, the same list
// ensureTrigramLocked builds inline for its rebuild.
func (ci *ContentIndex) vocabSorted() []string {
	toks := make([]string, 0, len(ci.inverted))
	for t := range ci.inverted {
		toks = append(toks, t)
	}
	sort.Strings(toks)
	return toks
}
