// Command lci is the CLI front end for the code search and intelligence
// engine: one-shot file/content/definition queries over the working tree,
// and a long-running search_* tool server for editor/agent integration.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "lci",
		Usage:                  "Lightning fast code search and intelligence engine",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Project root directory to operate on",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			findCommand,
			indexCommand,
			fastCommand,
			contentIndexCommand,
			grepCommand,
			defIndexCommand,
			serveCommand,
			infoCommand,
			tipsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lci: "+err.Error())
		os.Exit(1)
	}
}

// commonSearchFlags is the grep command's flag set:
// -i/--regex/--show-lines/-B/-A/-C/--max-results/--exclude-dir/-e/-c.
// There is no --phrase flag, and find does not use this set.
var commonSearchFlags = []cli.Flag{
	&cli.BoolFlag{Name: "case-insensitive", Aliases: []string{"i"}, Usage: "Case-insensitive match"},
	&cli.BoolFlag{Name: "regex", Usage: "Treat pattern as a regular expression"},
	&cli.BoolFlag{Name: "show-lines", Usage: "Include 1-based line numbers in output"},
	&cli.IntFlag{Name: "before", Aliases: []string{"B"}, Usage: "Lines of context before each match"},
	&cli.IntFlag{Name: "after", Aliases: []string{"A"}, Usage: "Lines of context after each match"},
	&cli.IntFlag{Name: "context", Aliases: []string{"C"}, Usage: "Lines of context on both sides"},
	&cli.IntFlag{Name: "max-results", Usage: "Cap on returned entries, 0 means unlimited"},
	&cli.StringFlag{Name: "exclude-dir", Usage: "Comma-separated directory name substrings to exclude"},
	&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Comma-separated extension filter, e.g. \"go,ts\""},
	&cli.BoolFlag{Name: "count", Aliases: []string{"c"}, Usage: "Print match counts instead of lines"},
}
