package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const fileExt = ".json"

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// FileStore keeps one <key>.json file per entry in a directory. The file's
// modification time is the entry's StoredAt.
type FileStore struct {
	dir string
}

// NewFile returns a FileStore rooted at dir.
func NewFile(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, eris.New("file store: empty directory")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *FileStore) Dir() string { return s.dir }

// Migrate creates the cache directory.
func (s *FileStore) Migrate(_ context.Context) error {
	return eris.Wrap(os.MkdirAll(s.dir, 0o755), "file store: create dir")
}

func (s *FileStore) Close() error { return nil }

// fileName maps a key to a safe file name.
func fileName(key string) string {
	name := unsafeKeyChars.ReplaceAllString(key, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "_"
	}
	return name + fileExt
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

func (s *FileStore) Load(_ context.Context, key string) (*Entry, error) {
	p := s.path(key)
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file store: stat %s", key)
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file store: read %s", key)
	}
	return &Entry{Key: key, Data: data, StoredAt: info.ModTime().UTC()}, nil
}

// Save writes to a temp file in the same directory and renames it into place,
// so readers never observe a partial entry.
func (s *FileStore) Save(_ context.Context, e Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrap(err, "file store: create dir")
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-"+fileName(e.Key)+"-*")
	if err != nil {
		return eris.Wrapf(err, "file store: create temp for %s", e.Key)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(e.Data); err != nil {
		_ = tmp.Close()
		cleanup()
		return eris.Wrapf(err, "file store: write %s", e.Key)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return eris.Wrapf(err, "file store: sync %s", e.Key)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return eris.Wrapf(err, "file store: close %s", e.Key)
	}

	at := storedAt(e)
	if err := os.Chtimes(tmpName, at, at); err != nil {
		cleanup()
		return eris.Wrapf(err, "file store: set mtime %s", e.Key)
	}
	if err := os.Rename(tmpName, s.path(e.Key)); err != nil {
		cleanup()
		return eris.Wrapf(err, "file store: rename %s", e.Key)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrapf(err, "file store: delete %s", key)
	}
	return nil
}

// Clear removes every entry file. Other files in the directory are left alone.
func (s *FileStore) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists entries by file name. Keys that needed sanitizing come back in
// their sanitized form.
func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "file store: list")
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	return keys, nil
}

// Touch sets an entry's modification time. Used to age entries.
func (s *FileStore) Touch(key string, at time.Time) error {
	return eris.Wrapf(os.Chtimes(s.path(key), at, at), "file store: touch %s", key)
}
