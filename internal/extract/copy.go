package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// sourceReader remembers read-side failures so they can be told apart
// from write-side failures after io.Copy returns.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// CopyFile copies src to dst, preserving the source mode and modification
// time where the filesystem allows it. The content is written to a temp
// file in the destination directory and renamed into place, so dst is
// never observed half-written. The destination directory must exist.
//
// Returns ErrDestinationExists if dst exists and overwrite is false.
// Source-side failures wrap ErrSourceUnreadable; destination-side
// failures wrap ErrCopyFailed.
func CopyFile(src, dst string, overwrite bool) (int64, error) {
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return 0, ErrDestinationExists
		}
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("%w: stat source: %w", ErrSourceUnreadable, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s is not a regular file", ErrSourceUnreadable, src)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %w", ErrSourceUnreadable, err)
	}
	defer func() { _ = srcFile.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %w", ErrCopyFailed, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	reader := &sourceReader{r: srcFile}
	size, err := io.Copy(tmp, reader)
	if err != nil {
		if reader.err != nil {
			return 0, fmt.Errorf("%w: read source: %w", ErrSourceUnreadable, reader.err)
		}
		return 0, fmt.Errorf("%w: copy content: %w", ErrCopyFailed, err)
	}

	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("%w: sync: %w", ErrCopyFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: close: %w", ErrCopyFailed, err)
	}

	// Best effort: some filesystems (FAT, network shares) reject these.
	_ = os.Chmod(tmpPath, srcInfo.Mode().Perm())

	if err := os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("%w: rename into place: %w", ErrCopyFailed, err)
	}
	committed = true

	mtime := srcInfo.ModTime()
	_ = os.Chtimes(dst, mtime, mtime)

	return size, nil
}
