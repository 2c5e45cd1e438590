// Package config loads project settings from an optional .lci.kdl file
// (grounded on the teacher's kdl_config.go) and detects language-specific
// build output directories to exclude from indexing (grounded on the
// teacher's build_artifact_detector.go).
package config

// Config is the resolved, defaulted project configuration.
type Config struct {
	Project Project
	Index   Index
	Watch   Watch
	Server  Server
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	ExtFilter        string
	ExcludeDirs      []string
	RespectGitignore bool
	FollowSymlinks   bool
}

type Watch struct {
	Enabled       bool
	DebounceMs    int
	BulkThreshold int
}

type Server struct {
	Definitions bool
	MemoryLog   bool
	Metrics     bool
}

// Default returns a Config with the same defaults the teacher's KDL loader
// falls back to absent a config file.
func Default(projectRoot string) *Config {
	return &Config{
		Project: Project{Root: projectRoot},
		Index: Index{
			RespectGitignore: true,
			ExcludeDirs:      nil,
		},
		Watch: Watch{
			Enabled:       false,
			DebounceMs:    500,
			BulkThreshold: 100,
		},
	}
}
