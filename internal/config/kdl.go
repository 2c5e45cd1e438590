package config

import (
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/lci/internal/errors"
)

// LoadKDL reads "{projectRoot}/.lci.kdl" and overlays it onto a
// Default(projectRoot) config. A missing file is not an error: it returns
// the defaults unchanged.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".lci.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(projectRoot), nil
	}
	if err != nil {
		return nil, errors.IO("config.LoadKDL", path, err)
	}

	cfg := Default(projectRoot)
	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, errors.Decode("config.LoadKDL", "malformed .lci.kdl", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) {
					if filepath.IsAbs(v) {
						cfg.Project.Root = v
					} else {
						cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, v))
					}
				})
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "ext_filter":
					if s, ok := firstStringArg(cn); ok {
						cfg.Index.ExtFilter = s
					}
				case "exclude_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Index.ExcludeDirs = append(cfg.Index.ExcludeDirs, s)
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.FollowSymlinks = b
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				case "bulk_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.BulkThreshold = v
					}
				}
			}
		case "server":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "definitions":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Server.Definitions = b
					}
				case "memory_log":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Server.MemoryLog = b
					}
				case "metrics":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Server.Metrics = b
					}
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
