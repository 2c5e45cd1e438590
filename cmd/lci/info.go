package main

import (
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/version"
)

var infoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print build and version information",
	Action: func(c *cli.Context) error {
		return printJSON(map[string]interface{}{
			"version": version.Version,
			"full":    version.FullInfo(),
		})
	},
}

// cliHelpTips holds one usage tip per CLI subcommand, the CLI-side
// counterpart of the server's search_help tips; the two maps are kept
// separately and their keys and texts differ.
var cliHelpTips = map[string]string{
	"find":          "Search file paths by substring, case-insensitive substring, or regex.",
	"index":         "Build the file index and print a summary, or --list every path.",
	"fast":          "Full-text term search ranked by TF-IDF; mode=phrase requires co-occurrence on one line.",
	"content-index": "Build the content index and print a summary.",
	"grep":          "Exact substring search over file content with grep-style context lines.",
	"def-index":     "Build the definition index, or query it by --name/--kind/--path.",
	"serve":         "Run the search_* tool server over JSON-RPC on stdio, for editor/agent integration.",
	"info":          "Print build and version information.",
}

var tipsCommand = &cli.Command{
	Name:  "tips",
	Usage: "Print a one-line usage tip for each command",
	Action: func(c *cli.Context) error {
		return printJSON(cliHelpTips)
	},
}
