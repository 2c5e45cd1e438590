package server

import (
	"context"
	"os"

	"github.com/standardbeagle/lci/internal/debug"
	"github.com/standardbeagle/lci/internal/definitions"
	"github.com/standardbeagle/lci/internal/fileindex"
	"github.com/standardbeagle/lci/internal/types"
	"github.com/standardbeagle/lci/internal/watch"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// onWatchBatch applies one debounced fsnotify batch to the file, content,
// and definition indexes per §4.7. A bulk batch (size over BulkThreshold)
// falls back to a full rebuild of the file, content and definition indexes
// instead of applying paths one by one; content is mutated before definitions, not as one atomic step,
// matching buildFileAndContentIndex/buildDefinitionIndex's own sequencing.
func (s *Server) onWatchBatch(batch watch.Batch) {
	ctx := context.Background()

	if batch.Bulk {
		debug.Printf("server: watch batch exceeded bulk threshold (%d dirty, %d removed), rebuilding", len(batch.Dirty), len(batch.Removed))
		go s.buildFileAndContentIndexForce(ctx, true)
		if s.cfg.Server.Definitions {
			go s.buildDefinitionIndexForce(ctx, true)
		}
		return
	}

	for _, abs := range batch.Removed {
		rel := pathutil.Normalize(pathutil.ToRelative(abs, s.root))
		s.removePath(rel)
	}
	for _, abs := range batch.Dirty {
		rel := pathutil.Normalize(pathutil.ToRelative(abs, s.root))
		s.upsertPath(abs, rel)
	}
}

func (s *Server) removePath(rel string) {
	if s.fileSt.get() == StateReady {
		s.fileMu.Lock()
		if s.fileIdx != nil {
			s.fileIdx.Remove(rel)
		}
		s.fileMu.Unlock()
	}

	if s.contentSt.beginMutation() {
		s.contentMu.Lock()
		s.contentIx.Remove(rel)
		s.contentDirtyOnDisk = true
		s.contentMu.Unlock()
		s.contentSt.endMutation()
	}

	if s.cfg.Server.Definitions && s.defSt.beginMutation() {
		s.defMu.Lock()
		s.defIx.RemovePath(rel)
		s.defDirtyOnDisk = true
		s.defMu.Unlock()
		s.defSt.endMutation()
	}
}

func (s *Server) upsertPath(abs, rel string) {
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		// Deleted between the fsnotify event and this flush, or a directory
		// event; either way there is nothing to index.
		if err != nil {
			s.removePath(rel)
		}
		return
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		debug.Printf("server: watch read %s: %v", abs, err)
		return
	}
	text := []byte(pathutil.DecodeText(raw))

	if s.fileSt.get() == StateReady {
		s.fileMu.Lock()
		if s.fileIdx != nil {
			s.fileIdx.Upsert(fileindex.FileEntry{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		}
		s.fileMu.Unlock()
	}

	var fileID types.FileID
	if s.contentSt.beginMutation() {
		s.contentMu.Lock()
		if err := s.contentIx.Upsert(rel, text); err != nil {
			debug.Printf("server: watch upsert content %s: %v", rel, err)
		}
		if id, ok := s.contentIx.FileIDFor(rel); ok {
			fileID = id
		}
		s.contentDirtyOnDisk = true
		s.contentMu.Unlock()
		s.contentSt.endMutation()
	}

	if s.cfg.Server.Definitions && s.defSt.beginMutation() {
		s.defMu.Lock()
		s.defIx.IndexFile(definitions.SourceFile{Path: rel, FileID: fileID, Content: text})
		s.defDirtyOnDisk = true
		s.defMu.Unlock()
		s.defSt.endMutation()
	}
}
