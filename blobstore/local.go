package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hupe1980/symgo/internal/fs"
)

// LocalStore implements Store using the local file system.
//
// Object names map to paths below the root directory. Writes go to a temp
// file in the target directory and are renamed into place, so readers never
// observe partial objects.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root, fs: fs.Default}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Put writes an object atomically.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	path := s.path(name)
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write to a temp file in the same directory so the rename is atomic.
	tmp, err := s.fs.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = s.fs.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	_ = fs.SyncDir(s.fs, dir)

	tmpName = ""
	return nil
}

// Get reads an entire object.
//
// A missing object reports ErrNotFound because the os error already
// satisfies it.
func (s *LocalStore) Get(_ context.Context, name string) ([]byte, error) {
	f, err := s.fs.OpenFile(s.path(name), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Delete removes an object.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether an object exists.
func (s *LocalStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := s.fs.Stat(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns all object names with the given prefix, sorted.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.list("", &names, prefix); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) list(rel string, names *[]string, prefix string) error {
	entries, err := s.fs.ReadDir(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if rel != "" {
			name = rel + "/" + name
		}
		if e.IsDir() {
			if err := s.list(name, names, prefix); err != nil {
				return err
			}
			continue
		}
		if prefix == "" || strings.HasPrefix(name, prefix) {
			*names = append(*names, name)
		}
	}
	return nil
}

// LocalCommitStore implements CommitStore on the local file system.
//
// Each committed version is a file named after the zero-padded version
// number whose content is the manifest key. O_EXCL creation gives the
// compare-and-swap: the second writer of a version hits os.ErrExist.
type LocalCommitStore struct {
	dir string
	fs  fs.FileSystem
}

// NewLocalCommitStore creates a commit store in the given directory.
func NewLocalCommitStore(dir string) *LocalCommitStore {
	return &LocalCommitStore{dir: dir, fs: fs.Default}
}

// Commit records a version. Fails if the version was already committed.
func (s *LocalCommitStore) Commit(_ context.Context, version uint64, key string) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%020d", version))
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrConcurrentModification
		}
		return err
	}

	if _, err := f.Write([]byte(key)); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the commit is durable on POSIX.
	_ = fs.SyncDir(s.fs, s.dir)
	return nil
}

// Current returns the latest committed version and its key.
func (s *LocalCommitStore) Current(_ context.Context) (uint64, string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, "", nil
		}
		return 0, "", err
	}

	var latest uint64
	var latestName string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		v, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil {
			continue // not a version file
		}
		if v > latest {
			latest = v
			latestName = e.Name()
		}
	}
	if latest == 0 {
		return 0, "", nil
	}

	f, err := s.fs.OpenFile(filepath.Join(s.dir, latestName), os.O_RDONLY, 0)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()
	key, err := io.ReadAll(f)
	if err != nil {
		return 0, "", err
	}
	return latest, string(key), nil
}

// PruneBelow removes version files older than version.
func (s *LocalCommitStore) PruneBelow(_ context.Context, version uint64) error {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		v, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil {
			continue
		}
		if v < version {
			if err := s.fs.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	return nil
}
