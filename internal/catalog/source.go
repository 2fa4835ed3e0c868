package catalog

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks . Source

var (
	// ErrSnapshot indicates the catalog database could not be snapshotted.
	ErrSnapshot = errors.New("snapshot catalog")

	// ErrQuery indicates the catalog query failed.
	ErrQuery = errors.New("query catalog")

	// ErrInvalidTable indicates a table name that is not a plain identifier.
	ErrInvalidTable = errors.New("invalid catalog table name")
)

// Source supplies a read-only snapshot of raw catalog rows, already
// filtered to file objects. Row order is the iteration order of the run.
type Source interface {
	Snapshot(ctx context.Context) ([]RawRecord, error)
}

// StaticSource is a Source over an in-memory slice.
type StaticSource []RawRecord

// Snapshot returns a copy of the rows.
func (s StaticSource) Snapshot(_ context.Context) ([]RawRecord, error) {
	out := make([]RawRecord, len(s))
	copy(out, s)
	return out, nil
}
