package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DetectBuildArtifactDirs scans common language manifests under root for
// custom build-output directories and returns their names, to be merged
// into Index.ExcludeDirs before a walk so generated output never pollutes
// the indexes.
func DetectBuildArtifactDirs(root string) []string {
	var dirs []string
	dirs = append(dirs, detectRustOutputs(root)...)
	dirs = append(dirs, detectNodeOutputs(root)...)
	return dirs
}

// detectRustOutputs reads Cargo.toml's [build] target-dir (if customized)
// and always includes the conventional "target" directory.
func detectRustOutputs(root string) []string {
	path := filepath.Join(root, "Cargo.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var manifest struct {
		Build struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"build"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return []string{"target"}
	}

	out := []string{"target"}
	if manifest.Build.TargetDir != "" {
		out = append(out, filepath.Base(manifest.Build.TargetDir))
	}
	return out
}

// detectNodeOutputs reads package.json's "directories.build" hint, if
// present, alongside the conventional "dist"/"build" directories.
func detectNodeOutputs(root string) []string {
	path := filepath.Join(root, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var pkg struct {
		Directories struct {
			Build string `json:"build"`
		} `json:"directories"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}

	out := []string{"dist", "build"}
	if pkg.Directories.Build != "" {
		out = append(out, filepath.Base(pkg.Directories.Build))
	}
	return out
}
