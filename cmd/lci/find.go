package main

import (
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/fileindex"
)

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "Build the file index and print a summary",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter"},
		&cli.BoolFlag{Name: "list", Usage: "Print every indexed path instead of just the summary"},
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

		if c.Bool("list") {
			return printJSON(fi.Entries)
		}
		return printJSON(map[string]interface{}{
			"root":  fi.RootDir,
			"files": fi.Len(),
		})
	},
}

var findCommand = &cli.Command{
	Name:      "find",
	Usage:     "Search file paths by substring, case-insensitive substring, or regex",
	ArgsUsage: "<pattern>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter"},
		&cli.BoolFlag{Name: "case-insensitive", Aliases: []string{"i"}, Usage: "Case-insensitive match"},
		&cli.BoolFlag{Name: "regex", Usage: "Treat pattern as a regular expression"},
		&cli.BoolFlag{Name: "dirs-only", Usage: "With an empty pattern, list directories instead of files"},
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

		entries, err := fi.Search(c.Args().First(), fileindex.SearchOptions{
			CaseInsensitive: c.Bool("case-insensitive"),
			Regex:           c.Bool("regex"),
			DirsOnly:        c.Bool("dirs-only"),
		})
		if err != nil {
			return err
		}

		total := len(entries)
		if max := c.Int("max-results"); max > 0 && len(entries) > max {
			entries = entries[:max]
		}
		return printJSON(map[string]interface{}{"files": entries, "total": total})
	},
}
