package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lci/internal/config"
)

// printJSON writes v to stdout as indented JSON, the CLI's one output
// format across every one-shot command.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveRoot loads the project config for the --dir flag's directory,
// applying .lci.kdl overrides the same way the server does.
func resolveRoot(c *cli.Context) (*config.Config, error) {
	root, err := filepath.Abs(c.String("dir"))
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return config.LoadKDL(root)
}
