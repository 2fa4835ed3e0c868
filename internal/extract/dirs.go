package extract

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// MakeDirs creates dir and any missing parents. An existing directory is
// not an error; any other failure is a *DirectoryCreationError.
func MakeDirs(dir string) error {
	err := os.MkdirAll(dir, 0755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return &DirectoryCreationError{Path: dir, Err: err}
}

// Dirs creates destination directories lazily, once per distinct
// directory per run. Keys are NFC-normalized so the composed and
// decomposed spellings of the same name share one entry.
type Dirs struct {
	mu   sync.Mutex
	seen map[string]struct{}
	log  *slog.Logger
}

// NewDirs creates an empty directory cache.
func NewDirs(log *slog.Logger) *Dirs {
	if log == nil {
		log = slog.Default()
	}
	return &Dirs{
		seen: make(map[string]struct{}),
		log:  log,
	}
}

// Ensure makes sure dir exists. created is true the first time a
// directory is requested in this run; later requests are no-ops.
func (d *Dirs) Ensure(dir string) (created bool, err error) {
	key := pathKey(dir)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	if err := MakeDirs(dir); err != nil {
		return false, err
	}
	d.seen[key] = struct{}{}
	d.log.Debug("directory ready", "dir", dir)
	return true, nil
}

// Created returns the number of distinct directories ensured so far.
func (d *Dirs) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// pathKey is the identity of a path within one run. Composed and
// decomposed spellings of a name map to the same key.
func pathKey(p string) string {
	return norm.NFC.String(filepath.Clean(p))
}
