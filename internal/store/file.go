package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
)

const fileExt = ".json"

// FileBackend keeps one JSON file per key. Writes go through a temp file and
// rename under an advisory lock so the CLI and the server can share a dir.
type FileBackend struct {
	dir  string
	lock *flock.Flock
}

func OpenFile(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir, lock: flock.New(filepath.Join(dir, ".lock"))}, nil
}

func (f *FileBackend) Name() string { return BackendFile }

func (f *FileBackend) Dir() string { return f.dir }

// keyFile maps a key to a file name; ':' is escaped so names stay portable.
func keyFile(key string) string {
	return strings.ReplaceAll(url.PathEscape(key), ":", "%3A") + fileExt
}

func fileKey(name string) (string, bool) {
	if !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	k, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
	if err != nil {
		return "", false
	}
	return k, true
}

func (f *FileBackend) path(key string) string { return filepath.Join(f.dir, keyFile(key)) }

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (f *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, key string) (bool, error) {
	if err := f.lock.Lock(); err != nil {
		return false, fmt.Errorf("lock data dir: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return true, nil
}

func (f *FileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		k, ok := fileKey(e.Name())
		if ok && strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileBackend) Close() error { return nil }
