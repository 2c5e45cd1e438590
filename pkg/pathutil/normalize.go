package pathutil

import "strings"

// Normalize canonicalizes a path for use as an index key: backslashes become
// forward slashes, a leading "./" is stripped, repeated slashes collapse, and
// surrounding whitespace is trimmed. A "." or empty input normalizes to the
// empty string, meaning "whole tree". Normalize is idempotent: Normalize(Normalize(p)) == Normalize(p).
//
// This same function must run on both user-supplied paths and git log output
// before either is used as a map key, so that "A.RS" and "a.rs" (case aside)
// and "./a.rs" and "a.rs" land on the same entry.
func Normalize(p string) string {
	for {
		q := strings.ReplaceAll(p, "\\", "/")
		q = strings.TrimPrefix(q, "./")
		q = collapseSlashes(q)
		q = strings.TrimSpace(q)
		if q == p {
			break // repeat until stable, e.g. "././a" -> "a"
		}
		p = q
	}

	if p == "." || p == "" {
		return ""
	}
	return p
}

func collapseSlashes(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for _, r := range p {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
