// Package ledger records extraction runs and their per-record outcomes in
// SQLite so follow-up items can be reviewed after the terminal scrolls away.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vmunix/xappli/internal/extract"
	"github.com/vmunix/xappli/internal/migrations"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one extraction run.
type Run struct {
	ID              string     `json:"id"`
	CatalogPath     string     `json:"catalog_path"`
	OutputRoot      string     `json:"output_root"`
	ConvertMode     string     `json:"convert_mode"`
	OverwritePolicy string     `json:"overwrite_policy"`
	Status          string     `json:"status"`
	Error           string     `json:"error,omitempty"`
	Ignored         int        `json:"ignored"`
	Dirs            int        `json:"dirs"`
	BytesWritten    int64      `json:"bytes_written"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`

	// Counts maps outcome names to record counts. Filled by Get and List.
	Counts map[string]int `json:"counts"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Entry is one recorded outcome.
type Entry struct {
	ID         int64  `json:"id"`
	RunID      string `json:"run_id"`
	Index      int    `json:"index"`
	Title      string `json:"title"`
	SourcePath string `json:"source_path,omitempty"`
	DestPath   string `json:"dest_path,omitempty"`
	StagedPath string `json:"staged_path,omitempty"`
	Action     string `json:"action"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	CoverArt   string `json:"cover_art"`
	SizeBytes  int64  `json:"size_bytes"`
	Error      string `json:"error,omitempty"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status *string
	Limit  int
}

// EntryFilter specifies criteria for listing entries of one run.
type EntryFilter struct {
	RunID string
	// Outcomes restricts the listing to these outcome names.
	Outcomes []string
	Limit    int
}

// FollowUpOutcomes are the outcome names that need manual attention.
func FollowUpOutcomes() []string {
	return []string{
		extract.OutcomeMissingSource.String(),
		extract.OutcomeConversionFailed.String(),
	}
}

// Open opens the ledger database at path, creating its directory and
// schema as needed.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return db, nil
}

// Store persists runs and entries.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a ledger store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Start inserts r as a running run. ID and StartedAt are assigned.
func (s *Store) Start(ctx context.Context, r *Run) error {
	r.ID = uuid.NewString()
	r.Status = StatusRunning
	r.StartedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, catalog_path, output_root, convert_mode, overwrite_policy, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CatalogPath, r.OutputRoot, r.ConvertMode, r.OverwritePolicy, r.Status, r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish records the report's results under the run and marks it
// completed, or failed when runErr is non-nil. A nil report records no
// entries.
func (s *Store) Finish(ctx context.Context, r *Run, report *extract.Report, runErr error) error {
	finished := s.now()
	r.FinishedAt = &finished
	r.Status = StatusCompleted
	if runErr != nil {
		r.Status = StatusFailed
		r.Error = runErr.Error()
	}
	if report != nil {
		r.Ignored = report.Ignored
		r.Dirs = report.Dirs
		r.BytesWritten = report.BytesWritten()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if report != nil {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO outcomes (run_id, record_index, title, source_path, dest_path, staged_path,
				action, outcome, reason, cover_art, size_bytes, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare outcome insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, res := range report.Results {
			_, err := stmt.ExecContext(ctx,
				r.ID, res.Index, res.Record.Title,
				nullable(res.Record.Source()), nullable(res.DestPath), nullable(res.StagedPath),
				res.Plan.Action.String(), res.Outcome.String(), nullable(res.Reason),
				res.CoverArt.String(), res.SizeBytes, errString(res.Err),
			)
			if err != nil {
				return fmt.Errorf("insert outcome %d: %w", res.Index, err)
			}
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, ignored = ?, dirs = ?, bytes_written = ?, finished_at = ?
		WHERE id = ?`,
		r.Status, nullable(r.Error), r.Ignored, r.Dirs, r.BytesWritten, finished, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the run whose ID equals id, or else the one run whose ID
// starts with it.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "%_") {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, runColumns+` FROM runs WHERE id LIKE ? ORDER BY id = ? DESC, id LIMIT 2`,
		id+"%", id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(runs) > 1 && runs[0].ID != id:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
	r := runs[0]
	if err := s.fillCounts(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// List returns runs matching the filter, most recent first.
func (s *Store) List(ctx context.Context, f RunFilter) ([]*Run, error) {
	query := runColumns + ` FROM runs`
	var args []any
	if f.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, *f.Status)
	}
	query += ` ORDER BY started_at DESC, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if err := s.fillCounts(ctx, r); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Entries returns a run's recorded outcomes in catalog order.
func (s *Store) Entries(ctx context.Context, f EntryFilter) ([]*Entry, error) {
	conditions := []string{"run_id = ?"}
	args := []any{f.RunID}

	if len(f.Outcomes) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Outcomes)), ",")
		conditions = append(conditions, "outcome IN ("+placeholders+")")
		for _, o := range f.Outcomes {
			args = append(args, o)
		}
	}

	query := `SELECT id, run_id, record_index, title, source_path, dest_path, staged_path,
			action, outcome, reason, cover_art, size_bytes, error
		FROM outcomes WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY record_index`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Entry
	for rows.Next() {
		e := &Entry{}
		var source, dest, staged, reason, errText sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Index, &e.Title, &source, &dest, &staged,
			&e.Action, &e.Outcome, &reason, &e.CoverArt, &e.SizeBytes, &errText); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		e.SourcePath = source.String
		e.DestPath = dest.String
		e.StagedPath = staged.String
		e.Reason = reason.String
		e.Error = errText.String
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return results, nil
}

const runColumns = `SELECT id, catalog_path, output_root, convert_mode, overwrite_policy, status, error,
	ignored, dirs, bytes_written, started_at, finished_at`

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var errText sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.CatalogPath, &r.OutputRoot, &r.ConvertMode, &r.OverwritePolicy,
			&r.Status, &errText, &r.Ignored, &r.Dirs, &r.BytesWritten, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Error = errText.String
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) fillCounts(ctx context.Context, r *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM outcomes WHERE run_id = ? GROUP BY outcome`, r.ID)
	if err != nil {
		return fmt.Errorf("count outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	r.Counts = make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return fmt.Errorf("scan count: %w", err)
		}
		r.Counts[outcome] = n
	}
	return rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}
