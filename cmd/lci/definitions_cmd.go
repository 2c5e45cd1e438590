package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/definitions"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

var defIndexCommand = &cli.Command{
	Name:  "def-index",
	Usage: "Build the definition index and print a summary, or query it with --name",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter"},
		&cli.StringFlag{Name: "name", Usage: "Name filter for a search_definitions-style query"},
		&cli.StringFlag{Name: "kind", Usage: "Definition kind filter"},
		&cli.StringFlag{Name: "path", Usage: "File path substring filter"},
		&cli.IntFlag{Name: "max-results", Usage: "Cap on returned entries, 0 means unlimited"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := resolveRoot(c)
		if err != nil {
			return err
		}

		fi, err := fileindex.Build(cfg.Project.Root, fileindex.BuildOptions{
			ExtFilter:   c.String("ext"),
			ExcludeDirs: cfg.Index.ExcludeDirs,
		})
		if err != nil {
			return err
		}

		files := make([]definitions.SourceFile, 0, len(fi.Entries))
		for i, e := range fi.Entries {
			raw, err := os.ReadFile(filepath.Join(cfg.Project.Root, e.Path))
			if err != nil {
				continue
			}
			files = append(files, definitions.SourceFile{
				Path: e.Path, FileID: types.FileID(i), Content: []byte(pathutil.DecodeText(raw)),
			})
		}

		di := definitions.Build(files)

		if c.String("name") == "" && c.String("kind") == "" && c.String("path") == "" {
			return printJSON(map[string]interface{}{"definitions": di.Count()})
		}

		source := func(path string) ([]byte, error) {
			return os.ReadFile(filepath.Join(cfg.Project.Root, path))
		}
		results, err := di.Search(definitions.Filter{
			Name:      c.String("name"),
			NameMatch: definitions.NameContains,
			Kind:      types.Kind(c.String("kind")),
			Path:      c.String("path"),
		}, source)
		if err != nil {
			return err
		}

		total := len(results)
		if max := c.Int("max-results"); max > 0 && len(results) > max {
			results = results[:max]
		}
		return printJSON(map[string]interface{}{"results": results, "total": total})
	},
}
