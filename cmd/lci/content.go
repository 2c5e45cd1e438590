package main

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/content"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// buildContentIndexAt walks root once and builds a ContentIndex in memory;
// the standalone content-index/fast/grep commands each perform
// their own pass rather than sharing the server's persisted state.
func buildContentIndexAt(root string, extFilter string, excludeDirs []string) (*content.ContentIndex, error) {
	fi, err := fileindex.Build(root, fileindex.BuildOptions{ExtFilter: extFilter, ExcludeDirs: excludeDirs})
	if err != nil {
		return nil, err
	}

	docs := make([]content.FileDoc, 0, len(fi.Entries))
	for _, e := range fi.Entries {
		raw, err := os.ReadFile(filepath.Join(root, e.Path))
		if err != nil {
			continue
		}
		docs = append(docs, content.FileDoc{Path: e.Path, Content: []byte(pathutil.DecodeText(raw))})
	}
	return content.Build(docs, content.BuildOptions{}), nil
}

var contentIndexCommand = &cli.Command{
	Name:  "content-index",
	Usage: "Build the content index and print a summary",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := resolveRoot(c)
		if err != nil {
			return err
		}
		ci, err := buildContentIndexAt(cfg.Project.Root, c.String("ext"), cfg.Index.ExcludeDirs)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"files": ci.FileCount()})
	},
}

var fastCommand = &cli.Command{
	Name:      "fast",
	Usage:     "TF-IDF ranked full-text term search over the content index",
	ArgsUsage: "<term...>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "mode", Usage: "any | all | phrase", Value: "any"},
		&cli.IntFlag{Name: "max-results", Usage: "Cap on returned files, 0 means unlimited"},
		&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := resolveRoot(c)
		if err != nil {
			return err
		}
		ci, err := buildContentIndexAt(cfg.Project.Root, c.String("ext"), cfg.Index.ExcludeDirs)
		if err != nil {
			return err
		}

		readLine := func(path string) (string, error) {
			raw, err := os.ReadFile(filepath.Join(cfg.Project.Root, path))
			if err != nil {
				return "", err
			}
			return pathutil.DecodeText(raw), nil
		}
		hits, err := ci.Query(c.Args().Slice(), content.Mode(c.String("mode")), readLine)
		if err != nil {
			return err
		}

		total := len(hits)
		if max := c.Int("max-results"); max > 0 && len(hits) > max {
			hits = hits[:max]
		}
		return printJSON(map[string]interface{}{"hits": hits, "total": total})
	},
}

var grepCommand = &cli.Command{
	Name:      "grep",
	Usage:     "Substring search over indexed tokens, with grep-style line output",
	ArgsUsage: "<pattern>",
	Flags:     commonSearchFlags,
	Action: func(c *cli.Context) error {
		cfg, err := resolveRoot(c)
		if err != nil {
			return err
		}
		ci, err := buildContentIndexAt(cfg.Project.Root, c.String("ext"), cfg.Index.ExcludeDirs)
		if err != nil {
			return err
		}

		pattern := c.Args().First()
		before, after := c.Int("before"), c.Int("after")
		if ctxLines := c.Int("context"); ctxLines > 0 {
			before, after = ctxLines, ctxLines
		}

		var re *regexp.Regexp
		if c.Bool("regex") {
			pat := pattern
			if c.Bool("case-insensitive") {
				pat = "(?i)" + pat
			}
			re, err = regexp.Compile(pat)
			if err != nil {
				return err
			}
		}

		paths := candidatePathsForGrep(ci, pattern, c.Bool("regex"), c.Bool("case-insensitive"), c.String("exclude-dir"), c.String("ext"))

		type fileResult struct {
			Path    string   `json:"path"`
			Count   int      `json:"count,omitempty"`
			Matches []string `json:"matches,omitempty"`
		}

		var results []fileResult
		for _, path := range paths {
			raw, err := os.ReadFile(filepath.Join(cfg.Project.Root, path))
			if err != nil {
				continue
			}
			lines := strings.Split(pathutil.DecodeText(raw), "\n")

			var matchLines []int
			for i, line := range lines {
				if lineMatchesCLI(line, pattern, c.Bool("case-insensitive"), re) {
					matchLines = append(matchLines, i)
				}
			}
			if len(matchLines) == 0 {
				continue
			}
			if c.Bool("count") {
				results = append(results, fileResult{Path: path, Count: len(matchLines)})
				continue
			}

			var out []string
			for _, ln := range matchLines {
				start, end := ln-before, ln+after
				if start < 0 {
					start = 0
				}
				if end >= len(lines) {
					end = len(lines) - 1
				}
				for i := start; i <= end; i++ {
					if c.Bool("show-lines") {
						out = append(out, itoaCLI(i+1)+": "+lines[i])
					} else {
						out = append(out, lines[i])
					}
				}
			}
			results = append(results, fileResult{Path: path, Matches: out})
		}

		total := len(results)
		if max := c.Int("max-results"); max > 0 && len(results) > max {
			results = results[:max]
		}
		return printJSON(map[string]interface{}{"results": results, "total": total})
	},
}

func candidatePathsForGrep(ci *content.ContentIndex, pattern string, useRegex, caseInsensitive bool, excludeDir, ext string) []string {
	seen := make(map[string]bool)
	if !useRegex {
		needle := pattern
		if caseInsensitive {
			needle = strings.ToLower(needle)
		}
		for _, postings := range ci.SubstringSearch(needle) {
			for _, post := range postings {
				if path, ok := ci.Path(post.FileID); ok && pathPassesCLI(path, excludeDir, ext) {
					seen[path] = true
				}
			}
		}
	} else {
		n := ci.FileCount()
		for i := 0; i < n; i++ {
			if path, ok := ci.Path(types.FileID(i)); ok && pathPassesCLI(path, excludeDir, ext) {
				seen[path] = true
			}
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func pathPassesCLI(path, excludeDir, ext string) bool {
	if excludeDir != "" {
		for _, d := range strings.Split(excludeDir, ",") {
			if d = strings.TrimSpace(d); d != "" && strings.Contains(path, d) {
				return false
			}
		}
	}
	if ext != "" {
		matched := false
		for _, e := range strings.Split(ext, ",") {
			if e = strings.TrimSpace(strings.TrimPrefix(e, ".")); e != "" && strings.HasSuffix(path, "."+e) {
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

func lineMatchesCLI(line, pattern string, caseInsensitive bool, re *regexp.Regexp) bool {
	if re != nil {
		return re.MatchString(line)
	}
	if caseInsensitive {
		return strings.Contains(strings.ToLower(line), strings.ToLower(pattern))
	}
	return strings.Contains(line, pattern)
}

func itoaCLI(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
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
