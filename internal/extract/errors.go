package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSource indicates the record has no source path or the
	// source could not be read at copy time.
	ErrMissingSource = errors.New("source file missing")

	// ErrSourceUnreadable indicates the source could not be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrCoverArtUnavailable indicates the cover art could not be copied.
	// It is logged and never returned from a transfer.
	ErrCoverArtUnavailable = errors.New("cover art unavailable")

	// ErrCopyFailed indicates writing the destination failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrDestinationExists indicates the destination file already exists.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrPathTraversal indicates a destination outside the output root.
	ErrPathTraversal = errors.New("path traversal detected")
)

// DirectoryCreationError is returned when a destination directory cannot
// be created for a reason other than already existing. It aborts a run.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error {
	return e.Err
}
