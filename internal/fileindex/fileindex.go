// Package fileindex implements the flat file-name index: the list of files
// under a root, their size and modification time, and substring/regex
// filtering over paths. It is the cheapest of the three persistent indexes
// and the one every other build starts from.
package fileindex

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/lci/internal/errors"
	"github.com/standardbeagle/lci/pkg/pathutil"
)

// FileEntry describes one indexed file.
type FileEntry struct {
	Path     string    `json:"path"` // canonical, repo-relative
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
}

// FileIndex owns the ordered, unique-by-path sequence of FileEntry built from
// a single walk of RootDir.
type FileIndex struct {
	mu sync.RWMutex

	RootDir                   string
	StalenessThresholdSeconds int64
	Entries                   []FileEntry

	byPath map[string]int // path -> index into Entries, rebuilt on load
}

// BuildOptions configures a walk.
type BuildOptions struct {
	// ExtFilter is a comma-separated list of extensions (e.g. "go,ts,py").
	// Empty means no filter.
	ExtFilter string
	// ExcludeDirs are additional directory names to prune beyond the
	// built-in ignore set (.git, node_modules, vendor, …).
	ExcludeDirs []string
	// Workers bounds the number of directory-scan goroutines; 0 picks
	// GOMAXPROCS.
	Workers int
}

var defaultIgnoreDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	".hg": true, ".svn": true, "dist": true, "build": true,
	".idea": true, ".vscode": true, "target": true,
}

// Build walks root in parallel and returns a new FileIndex. Directory
// traversal fans out across a worker pool: each worker reads one directory's
// entries, pushes discovered subdirectories back onto the work channel, and
// appends file entries to a shared slice behind a mutex held only for the
// append itself.
func Build(root string, opts BuildOptions) (*FileIndex, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.IO("fileindex.Build", root, err)
	}

	exts := parseExtFilter(opts.ExtFilter)
	ignore := make(map[string]bool, len(defaultIgnoreDirs)+len(opts.ExcludeDirs))
	for k := range defaultIgnoreDirs {
		ignore[k] = true
	}
	for _, d := range opts.ExcludeDirs {
		ignore[d] = true
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	fi := &FileIndex{
		RootDir:                   absRoot,
		StalenessThresholdSeconds: 3600,
	}

	ignoreFile := loadGitignore(absRoot)

	type dirJob struct{ path string }

	jobs := make(chan dirJob, 4096)
	var pending sync.WaitGroup
	var mu sync.Mutex
	var entries []FileEntry

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				dirEntries, err := os.ReadDir(job.path)
				if err != nil {
					pending.Done()
					continue
				}
				var local []FileEntry
				for _, de := range dirEntries {
					full := filepath.Join(job.path, de.Name())
					if de.IsDir() {
						relDir := pathutil.Normalize(pathutil.ToRelative(full, absRoot))
						if ignore[de.Name()] || ignoreFile.Match(relDir) {
							continue
						}
						pending.Add(1)
						jobs <- dirJob{path: full}
						continue
					}
					if !de.Type().IsRegular() {
						continue
					}
					if len(exts) > 0 && !extMatches(de.Name(), exts) {
						continue
					}
					rel := pathutil.Normalize(pathutil.ToRelative(full, absRoot))
					if ignoreFile.Match(rel) {
						continue
					}
					info, err := de.Info()
					if err != nil {
						continue
					}
					local = append(local, FileEntry{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
				}
				if len(local) > 0 {
					mu.Lock()
					entries = append(entries, local...)
					mu.Unlock()
				}
				pending.Done()
			}
		}()
	}

	pending.Add(1)
	jobs <- dirJob{path: absRoot}

	go func() {
		pending.Wait()
		close(jobs)
	}()
	wg.Wait()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	fi.Entries = entries
	fi.reindex()
	return fi, nil
}

func (fi *FileIndex) reindex() {
	fi.byPath = make(map[string]int, len(fi.Entries))
	for i, e := range fi.Entries {
		fi.byPath[e.Path] = i
	}
}

func parseExtFilter(s string) map[string]bool {
	if s == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(strings.TrimPrefix(e, "."))
		if e != "" {
			out[e] = true
		}
	}
	return out
}

func extMatches(name string, exts map[string]bool) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return exts[ext]
}

// SearchOptions configures FileIndex.Search.
type SearchOptions struct {
	CaseInsensitive bool
	Regex           bool
	DirsOnly        bool
}

// Search returns entries matching pattern. An empty pattern with DirsOnly
// returns the distinct directory set instead of file entries (each
// synthesized as a FileEntry with Size 0 and a trailing-slash-free path).
// A regex pattern that fails to compile returns errors.InvalidInput.
func (fi *FileIndex) Search(pattern string, opts SearchOptions) ([]FileEntry, error) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	if pattern == "" && opts.DirsOnly {
		return fi.distinctDirs(), nil
	}

	if pattern == "" {
		out := make([]FileEntry, len(fi.Entries))
		copy(out, fi.Entries)
		return out, nil
	}

	var re *regexp.Regexp
	if opts.Regex {
		pat := pattern
		if opts.CaseInsensitive {
			pat = "(?i)" + pat
		}
		var err error
		re, err = regexp.Compile(pat)
		if err != nil {
			return nil, errors.InvalidInput("fileindex.Search", "invalid regex: "+err.Error())
		}
	}

	needle := pattern
	if opts.CaseInsensitive && !opts.Regex {
		needle = strings.ToLower(pattern)
	}

	var out []FileEntry
	for _, e := range fi.Entries {
		switch {
		case opts.Regex:
			if re.MatchString(e.Path) {
				out = append(out, e)
			}
		case opts.CaseInsensitive:
			if strings.Contains(strings.ToLower(e.Path), needle) {
				out = append(out, e)
			}
		default:
			if strings.Contains(e.Path, needle) {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (fi *FileIndex) distinctDirs() []FileEntry {
	seen := make(map[string]bool)
	var out []FileEntry
	for _, e := range fi.Entries {
		dir := filepath.Dir(e.Path)
		if dir == "." {
			dir = ""
		}
		for dir != "" && !seen[dir] {
			seen[dir] = true
			out = append(out, FileEntry{Path: dir})
			dir = filepath.Dir(dir)
			if dir == "." {
				dir = ""
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of indexed files.
func (fi *FileIndex) Len() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return len(fi.Entries)
}

// Get returns the entry for path, if present.
func (fi *FileIndex) Get(path string) (FileEntry, bool) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	idx, ok := fi.byPath[pathutil.Normalize(path)]
	if !ok {
		return FileEntry{}, false
	}
	return fi.Entries[idx], true
}

// Upsert (re-)records a single file's metadata, used by the watcher to keep
// the index current between full rebuilds.
func (fi *FileIndex) Upsert(e FileEntry) {
	e.Path = pathutil.Normalize(e.Path)

	fi.mu.Lock()
	defer fi.mu.Unlock()
	if idx, ok := fi.byPath[e.Path]; ok {
		fi.Entries[idx] = e
		return
	}
	fi.byPath[e.Path] = len(fi.Entries)
	fi.Entries = append(fi.Entries, e)
}

// Remove drops path from the index, used by the watcher on delete events.
func (fi *FileIndex) Remove(path string) {
	path = pathutil.Normalize(path)

	fi.mu.Lock()
	defer fi.mu.Unlock()
	idx, ok := fi.byPath[path]
	if !ok {
		return
	}
	last := len(fi.Entries) - 1
	fi.Entries[idx] = fi.Entries[last]
	fi.Entries = fi.Entries[:last]
	delete(fi.byPath, path)
	if idx != last {
		fi.byPath[fi.Entries[idx].Path] = idx
	}
}
