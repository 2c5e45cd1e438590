package fileindex

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignoreMatcher matches repo-relative paths against the patterns of a
// root-level .gitignore, using the same glob semantics git itself uses:
// "**" matches any number of path segments, and a pattern with no slash
// matches the basename at any depth. A trailing slash is dropped before
// matching, so such a pattern also matches a file of that name. Negated
// ("!") patterns are not supported.
type gitignoreMatcher struct {
	patterns []string
}

func loadGitignore(root string) *gitignoreMatcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &gitignoreMatcher{}
	}

	m := &gitignoreMatcher{}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		line = strings.TrimSuffix(line, "/")
		if !strings.Contains(line, "/") {
			line = "**/" + line
		}
		m.patterns = append(m.patterns, line, line+"/**")
	}
	return m
}

// Match reports whether relPath (forward-slash, repo-relative) is ignored.
func (m *gitignoreMatcher) Match(relPath string) bool {
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}
