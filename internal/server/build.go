package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/standardbeagle/lci/internal/config"
	"github.com/standardbeagle/lci/internal/content"
	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/definitions"
	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/githist"
	"github.com/standardbeagle/lci/internal/persist"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// buildFileAndContentIndex walks the project root once, producing both the
// FileIndex (path metadata) and the ContentIndex (tokenized, TF-IDF scored
// content) from the same file list. A persisted word-search index is tried
// first; it is discarded (not fatal) on any decode failure, per §4.6.
func (s *Server) buildFileAndContentIndex(ctx context.Context) {
	s.buildFileAndContentIndexForce(ctx, false)
}

// buildFileAndContentIndexForce is buildFileAndContentIndex with the
// persisted-snapshot fast path skipped when force is true, used by
// search_reindex to guarantee a fresh walk of the working tree.
func (s *Server) buildFileAndContentIndexForce(ctx context.Context, force bool) {
	s.fileSt.set(StateBuilding)
	s.contentSt.set(StateBuilding)

	artifactDirs := config.DetectBuildArtifactDirs(s.root)
	excludeDirs := append(append([]string(nil), s.cfg.Index.ExcludeDirs...), artifactDirs...)

	fi, err := fileindex.Build(s.root, fileindex.BuildOptions{
		ExtFilter:   s.cfg.Index.ExtFilter,
		ExcludeDirs: excludeDirs,
	})
	if err != nil {
		debug.Printf("server: file index build failed: %v", err)
		s.fileSt.set(StateEmpty)
		s.contentSt.set(StateEmpty)
		return
	}

	s.fileMu.Lock()
	s.fileIdx = fi
	s.fileMu.Unlock()
	s.fileSt.set(StateReady)

	if !force {
		if ci := s.tryLoadContentIndex(); ci != nil {
			s.contentMu.Lock()
			s.contentIx = ci
			s.contentMu.Unlock()
			s.contentSt.set(StateReady)
			return
		}
	}

	docs := make([]content.FileDoc, 0, len(fi.Entries))
	for _, e := range fi.Entries {
		raw, err := os.ReadFile(filepath.Join(s.root, e.Path))
		if err != nil {
			continue
		}
		docs = append(docs, content.FileDoc{Path: e.Path, Content: []byte(pathutil.DecodeText(raw))})
	}

	ci := content.Build(docs, content.BuildOptions{})
	s.contentMu.Lock()
	s.contentIx = ci
	s.contentDirtyOnDisk = true
	s.contentMu.Unlock()
	s.contentSt.set(StateReady)
}

func (s *Server) tryLoadContentIndex() *content.ContentIndex {
	name := persist.FileName(s.root, persist.KindWordSearch)
	var snap content.Snapshot
	if err := persist.Load(s.persistDir, name, formatVersion, &snap); err != nil {
		return nil
	}
	return content.Restore(snap)
}

// buildDefinitionIndex extracts every definition and call site under root.
// Disabled entirely when cfg.Server.Definitions is false, mirroring the
// CLI's --definitions flag.
func (s *Server) buildDefinitionIndex(ctx context.Context) {
	s.buildDefinitionIndexForce(ctx, false)
}

// buildDefinitionIndexForce is buildDefinitionIndex with the
// persisted-snapshot fast path skipped when force is true, used by
// search_reindex_definitions.
func (s *Server) buildDefinitionIndexForce(ctx context.Context, force bool) {
	if !s.cfg.Server.Definitions {
		return
	}
	s.defSt.set(StateBuilding)

	if !force {
		if di := s.tryLoadDefinitionIndex(); di != nil {
			s.defMu.Lock()
			s.defIx = di
			s.defMu.Unlock()
			s.defSt.set(StateReady)
			return
		}
	}

	// Wait for the file index so the same file list drives both builds.
	for s.fileSt.get() != StateReady {
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
	s.fileMu.RLock()
	entries := append([]fileindex.FileEntry(nil), s.fileIdx.Entries...)
	s.fileMu.RUnlock()

	files := make([]definitions.SourceFile, 0, len(entries))
	for i, e := range entries {
		raw, err := os.ReadFile(filepath.Join(s.root, e.Path))
		if err != nil {
			continue
		}
		files = append(files, definitions.SourceFile{
			Path: e.Path, FileID: types.FileID(i), Content: []byte(pathutil.DecodeText(raw)),
		})
	}

	di := definitions.Build(files)
	s.defMu.Lock()
	s.defIx = di
	s.defDirtyOnDisk = true
	s.defMu.Unlock()
	s.defSt.set(StateReady)
}

func (s *Server) tryLoadDefinitionIndex() *definitions.DefinitionIndex {
	name := persist.FileName(s.root, persist.KindCodeStruct)
	var snap definitions.Snapshot
	if err := persist.Load(s.persistDir, name, formatVersion, &snap); err != nil {
		return nil
	}
	return definitions.Restore(snap)
}

// buildGitCache loads (or builds) the commit-history cache and reconciles
// it against the current HEAD, per §4.5's invalidation rules. A non-main
// branch is recorded once so every derived tool result can carry
// branchWarning.
func (s *Server) buildGitCache(ctx context.Context) {
	s.gitSt.set(StateBuilding)

	provider, err := githist.NewProvider(s.root)
	if err != nil {
		// Not a git repository: the git_* tools report NotReady/unavailable
		// forever, nothing else in the server depends on this.
		s.gitSt.markUnavailable()
		s.gitSt.set(StateEmpty)
		return
	}
	s.gitProvider = provider

	cache := s.tryLoadGitCache(provider)
	if cache == nil {
		cache = githist.New(provider)
		if err := cache.Build(ctx); err != nil {
			debug.Printf("server: git cache build failed: %v", err)
			if errors.Is(err, errors.KindResourceExhausted) {
				s.gitSt.markUnavailable()
			}
			s.gitSt.set(StateEmpty)
			return
		}
	} else if action, err := cache.Reconcile(ctx); err == nil && action != githist.ActionNone {
		if err := cache.Apply(ctx, action); err != nil {
			debug.Printf("server: git cache reconcile failed: %v", err)
		}
	}

	s.recordBranchWarning(ctx, provider, cache.Branch)

	s.gitMu.Lock()
	s.gitCache = cache
	s.gitMu.Unlock()
	s.gitSt.set(StateReady)
}

func (s *Server) tryLoadGitCache(provider *githist.Provider) *githist.Cache {
	name := persist.FileName(s.root, persist.KindGitHistory)
	var snap githist.Snapshot
	if err := persist.Load(s.persistDir, name, formatVersion, &snap); err != nil {
		return nil
	}
	return githist.Import(provider, snap)
}

func (s *Server) recordBranchWarning(ctx context.Context, provider *githist.Provider, branch string) {
	def := provider.DefaultBranch(ctx)
	if branch != def && branch != "HEAD" {
		s.branchWarning = "repository is on branch \"" + branch + "\", not the default branch \"" + def + "\""
	}
}
