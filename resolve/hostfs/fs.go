// Package hostfs is a reference implementation of resolve.FileSystem
// backed by a real directory tree. It supplies the part of spec §6's
// file-system capability that is genuinely host-agnostic infrastructure —
// probing for `mod name;`/`include!` targets, taking a read-locked
// snapshot of a crate's sources before a build — while leaving actual
// source parsing to whatever ItemWalker the caller pairs it with (hostfs's
// own ItemSource is raw bytes; turning those into resolve-shaped items is
// not this package's concern, matching spec §1's "the core consumes a
// parsed item tree").
//
// Grounded on the teacher's vcs_source.go / project_manager.go pairing:
// CopyTree-based snapshotting into an isolated working directory before any
// read proceeds, so concurrent builds never observe each other's
// in-progress writes.
package hostfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	shutil "github.com/termie/go-shutil"
	"github.com/theckman/go-flock"

	"github.com/cratemap/cratemap/internal/log"
	"github.com/cratemap/cratemap/resolve"
)

// RawFile is hostfs's ItemSource: the raw bytes of one source file. The
// paired ItemWalker is expected to tokenize/parse this itself.
type RawFile struct {
	Path    string
	Content []byte
}

// File is a directory entry discovered during Open, identified by a
// resolve.FileID that is stable for the lifetime of one FileSystem.
type File struct {
	ID   resolve.FileID
	Path string
}

// FileSystem walks a crate's root directory once at Open time, assigning a
// stable FileID to every regular file found (via godirwalk, for the same
// reason the teacher uses it over filepath.Walk: avoiding a Lstat per
// node), and answers mod/include probes against that snapshot.
type FileSystem struct {
	root   string
	logger *log.Logger
	byID   map[resolve.FileID]string
	byPath map[string]resolve.FileID
	nextID int64

	// dirOfID is the literal directory containing a file, used by
	// ResolveInclude: `include!` is always resolved relative to the
	// including file's own location.
	dirOfID map[resolve.FileID]string

	// moduleDirOfID is the directory a module *file* owns for its own
	// `mod name;` declarations, which — per Rust's on-disk convention — is
	// a same-named sibling directory, not the file's own parent. Used by
	// ResolveModuleFile, keyed by the owning module file's FileID (the
	// ownedDir a ModData.OwnedDirectoryID carries once resolveFileModules
	// sets it).
	moduleDirOfID map[resolve.FileID]string
}

// Open snapshots dir's file list. It does not read file contents up front;
// ResolveModuleFile/ResolveInclude read a file (through readRaw) only when
// it is probed.
func Open(dir string, logger *log.Logger) (*FileSystem, error) {
	fs := &FileSystem{
		root:          dir,
		logger:        logger,
		byID:          make(map[resolve.FileID]string),
		byPath:        make(map[string]resolve.FileID),
		dirOfID:       make(map[resolve.FileID]string),
		moduleDirOfID: make(map[resolve.FileID]string),
	}

	var paths []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			paths = append(paths, osPathname)
			return nil
		},
		Unsorted: false,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fs.nextID++
		id := resolve.FileID(fs.nextID)
		fs.byID[id] = p
		fs.byPath[p] = id
		fs.dirOfID[id] = filepath.Dir(p)
		fs.moduleDirOfID[id] = ownedModuleDir(p)
	}
	if logger != nil {
		logger.Logf("hostfs: indexed %d files under %s", len(paths), dir)
	}
	return fs, nil
}

// SnapshotTo copies the indexed tree into dst (an isolated working
// directory), taking a read lock on a sibling `.cratemap.lock` file for
// the duration of the copy so a concurrent writer to root can't be
// observed mid-write (spec §5's concurrency note: "a build must behave as
// if it held a consistent read-only snapshot").
func (fs *FileSystem) SnapshotTo(dst string) error {
	lockPath := filepath.Join(filepath.Dir(fs.root), ".cratemap.lock")
	fl := flock.NewFlock(lockPath)
	locked, err := fl.TryRLock()
	if err != nil {
		return errors.Wrap(err, "acquiring read lock")
	}
	if !locked {
		return fmt.Errorf("hostfs: %s is held for writing", lockPath)
	}
	defer fl.Unlock()

	cfg := &shutil.CopyTreeOptions{
		Symlinks:     false,
		CopyFunction: shutil.Copy,
	}
	if err := shutil.CopyTree(fs.root, dst, cfg); err != nil {
		return errors.Wrapf(err, "snapshotting %s to %s", fs.root, dst)
	}
	return nil
}

// ownedModuleDir returns the directory a module file's own `mod name;`
// declarations probe into: for `mod.rs`, its own directory (child probes
// are siblings of mod.rs); for any other `name.rs`, the `name/` directory
// next to it — mirroring Rust's on-disk module convention, where a module
// declared from a file owns a same-named sibling directory for its
// children rather than sharing its parent's.
func ownedModuleDir(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if base == "mod.rs" {
		return dir
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ".rs"))
}

func (fs *FileSystem) fileIDOf(path string) (resolve.FileID, bool) {
	id, ok := fs.byPath[path]
	return id, ok
}

func (fs *FileSystem) readRaw(id resolve.FileID) (RawFile, bool) {
	path, ok := fs.byID[id]
	if !ok {
		return RawFile{}, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if fs.logger != nil {
			fs.logger.Miss("reading %s: %v", path, err)
		}
		return RawFile{}, false
	}
	return RawFile{Path: path, Content: content}, true
}

// ResolveModuleFile implements resolve.FileSystem: `mod name;` probes
// `<ownedDir>/name.rs` then `<ownedDir>/name/mod.rs`, in that order, per
// the on-disk module convention this reference host assumes.
func (fs *FileSystem) ResolveModuleFile(ownedDir resolve.FileID, name string) (resolve.FileID, resolve.ItemSource, bool, string) {
	dir, ok := fs.moduleDirOfID[ownedDir]
	if !ok {
		dir = fs.root
	}
	candidates := []string{
		filepath.Join(dir, name+".rs"),
		filepath.Join(dir, name, "mod.rs"),
	}
	for _, c := range candidates {
		if id, ok := fs.fileIDOf(c); ok {
			if raw, ok := fs.readRaw(id); ok {
				return id, raw, true, c
			}
		}
	}
	return 0, nil, false, candidates[0]
}

// ResolveInclude implements resolve.FileSystem: `include!(relPath)` is
// resolved relative to fromFile's own directory.
func (fs *FileSystem) ResolveInclude(fromFile resolve.FileID, relPath string) (resolve.FileID, resolve.ItemSource, bool, string) {
	dir, ok := fs.dirOfID[fromFile]
	if !ok {
		dir = fs.root
	}
	full := filepath.Join(dir, relPath)
	id, ok := fs.fileIDOf(full)
	if !ok {
		return 0, nil, false, full
	}
	raw, ok := fs.readRaw(id)
	if !ok {
		return 0, nil, false, full
	}
	return id, raw, true, full
}

// RootFile returns the FileID for name at the tree's root, used by callers
// wiring up a resolve.Crate's RootFileID.
func (fs *FileSystem) RootFile(name string) (resolve.FileID, bool) {
	return fs.fileIDOf(filepath.Join(fs.root, name))
}

// RootDirectory returns the FileID standing in for the root directory
// itself (the synthetic id 0 is never assigned to a real file by Open,
// since ids start at 1).
func (fs *FileSystem) RootDirectory() resolve.FileID { return 0 }
