// Package pathutil provides path canonicalization, tokenization, and text
// decoding utilities shared by every index in the search engine.
//
// Architecture pattern: indexes store canonical, repo-relative, forward-slash
// paths internally so that map lookups never depend on the caller's working
// directory or platform. User-facing output converts back to a path relative
// to the indexed root for readability.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or the path is already
// relative or falls outside rootDir.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go"
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}
