package ledger

import "errors"

var (
	// ErrNotFound indicates no run matches the requested ID.
	ErrNotFound = errors.New("run not found")

	// ErrAmbiguous indicates a run ID prefix that matches more than one run.
	ErrAmbiguous = errors.New("ambiguous run id")
)
