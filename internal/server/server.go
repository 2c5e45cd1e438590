package server

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/content"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/definitions"
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/githist"
	"github.com/standardbeagle/lci/internal/persist"
	"github.com/standardbeagle/lci/internal/version"
	"github.com/standardbeagle/lci/internal/watch"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const formatVersion = 1

// Server owns every in-memory index and the MCP tool surface over them. It
// mirrors the teacher's Server in shape (one struct threading every handler,
// no package-level singletons) but backs the spec's own four indexes rather
// than the teacher's single core.Indexer.
type Server struct {
	cfg  *config.Config
	root string

	persistDir string

	fileMu  sync.RWMutex
	fileIdx *fileindex.FileIndex
	fileSt  readiness

	contentMu sync.RWMutex
	contentIx *content.ContentIndex
	contentSt readiness
	contentDirtyOnDisk bool

	defMu  sync.RWMutex
	defIx  *definitions.DefinitionIndex
	defSt  readiness
	defDirtyOnDisk bool

	gitProvider *githist.Provider
	gitMu       sync.RWMutex
	gitCache    *githist.Cache
	gitSt       readiness

	branchWarning string // set once at startup if the repo is not on its default branch

	watcher *watch.Watcher

	mcpServer *mcp.Server
}

// New constructs a Server for cfg.Project.Root and spawns the background
// builders for the content index, definition index, and git history cache.
// The handshake (tools/list) is answerable immediately; handlers consult
// each index's readiness flag until its builder finishes.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	absRoot, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		return nil, errors.IO("server.New", cfg.Project.Root, err)
	}
	cfg.Project.Root = absRoot

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	persistDir := filepath.Join(cacheDir, "lci")
	_ = os.MkdirAll(persistDir, 0o755)

	s := &Server{cfg: cfg, root: absRoot, persistDir: persistDir}

	go s.buildFileAndContentIndex(ctx)
	go s.buildDefinitionIndex(ctx)
	go s.buildGitCache(ctx)

	if cfg.Watch.Enabled {
		w, err := watch.New(absRoot, watch.Options{DebounceMs: cfg.Watch.DebounceMs, BulkThreshold: cfg.Watch.BulkThreshold}, s.onWatchBatch)
		if err != nil {
			debug.Printf("server: watcher disabled: %v", err)
		} else {
			s.watcher = w
		}
	}

	return s, nil
}

// Run registers every search_* tool and blocks on the stdio JSON-RPC event
// loop, matching the teacher's mcp.NewServer + AddTool + StdioTransport
// pattern.
func (s *Server) Run(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "lci-search-server",
		Version: version.Version,
	}, nil)
	s.mcpServer = srv
	s.registerTools()
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown closes the watcher, then saves the content and definition
// indexes when they were freshly built or have mutated since they were
// loaded (a loaded, unchanged index is left on disk untouched), and saves
// the git history cache whenever it is ready.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Close()
	}

	s.contentMu.RLock()
	ci := s.contentIx
	dirty := s.contentDirtyOnDisk
	s.contentMu.RUnlock()
	if ci != nil && dirty {
		name := persist.FileName(s.root, persist.KindWordSearch)
		if err := persist.Save(s.persistDir, name, formatVersion, ci.Snapshot()); err != nil {
			debug.Printf("server: shutdown save content index: %v", err)
		}
	}

	s.defMu.RLock()
	di := s.defIx
	defDirty := s.defDirtyOnDisk
	s.defMu.RUnlock()
	if di != nil && defDirty {
		name := persist.FileName(s.root, persist.KindCodeStruct)
		if err := persist.Save(s.persistDir, name, formatVersion, di.Snapshot()); err != nil {
			debug.Printf("server: shutdown save definition index: %v", err)
		}
	}

	s.gitMu.RLock()
	gc := s.gitCache
	s.gitMu.RUnlock()
	if gc != nil && gc.Ready() {
		name := persist.FileName(s.root, persist.KindGitHistory)
		if err := persist.Save(s.persistDir, name, formatVersion, gc.Export()); err != nil {
			debug.Printf("server: shutdown save git history cache: %v", err)
		}
	}

	return nil
}

func toolSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func strProp(desc string) *jsonschema.Schema    { return &jsonschema.Schema{Type: "string", Description: desc} }
func intProp(desc string) *jsonschema.Schema    { return &jsonschema.Schema{Type: "integer", Description: desc} }
func boolProp(desc string) *jsonschema.Schema   { return &jsonschema.Schema{Type: "boolean", Description: desc} }
