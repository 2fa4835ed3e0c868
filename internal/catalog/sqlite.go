package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultTable is the catalog table holding object rows.
const DefaultTable = "t_object"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads object rows from a SQLite export of the catalog.
type SQLiteSource struct {
	path     string
	table    string
	snapshot bool
	log      *slog.Logger
}

// SQLiteConfig configures a SQLiteSource.
type SQLiteConfig struct {
	Path  string
	Table string // empty uses DefaultTable
	// Snapshot copies the database to a temp dir before opening it, so a
	// running player that holds the file is never read mid-write.
	Snapshot bool
}

// NewSQLiteSource creates a source for the database at cfg.Path.
func NewSQLiteSource(cfg SQLiteConfig, log *slog.Logger) (*SQLiteSource, error) {
	if log == nil {
		log = slog.Default()
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &SQLiteSource{
		path:     cfg.Path,
		table:    table,
		snapshot: cfg.Snapshot,
		log:      log,
	}, nil
}

// Snapshot returns all file rows in table order.
func (s *SQLiteSource) Snapshot(ctx context.Context) ([]RawRecord, error) {
	path := s.path
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}

	if s.snapshot {
		tmpDir, err := os.MkdirTemp("", "xappli-catalog-")
		if err != nil {
			return nil, fmt.Errorf("%w: create temp dir: %w", ErrSnapshot, err)
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		copied := filepath.Join(tmpDir, filepath.Base(path))
		if err := copyDatabase(path, copied); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
		}
		s.log.Debug("catalog snapshot taken", "source", path, "copy", copied)
		path = copied
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrQuery, err)
	}
	defer func() { _ = db.Close() }()

	return s.query(ctx, db)
}

func (s *SQLiteSource) query(ctx context.Context, db *sql.DB) ([]RawRecord, error) {
	cols := Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteColumn(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = 2",
		strings.Join(quoted, ", "), s.table, quoteColumn(ColumnObjectType))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var results []RawRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		// Columns are matched by position; SQLite reports "[201]" as "201".
		raw := make(RawRecord, len(cols))
		for i, c := range cols {
			raw[c] = values[i]
		}
		results = append(results, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", ErrQuery, err)
	}

	s.log.Debug("catalog rows read", "table", s.table, "rows", len(results))
	return results, nil
}

// quoteColumn leaves bracketed codes alone and double-quotes the rest.
func quoteColumn(c string) string {
	if strings.HasPrefix(c, "[") && strings.HasSuffix(c, "]") {
		return c
	}
	return `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
}

// sidecars are the files SQLite keeps next to a database whose content
// is not yet in the main file. The copy carries them so a WAL-mode export
// is read with its un-checkpointed pages.
var sidecars = []string{"-wal", "-journal"}

// copyDatabase copies the database at src and any sidecar files to dst.
func copyDatabase(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	for _, suffix := range sidecars {
		err := copyFile(src+suffix, dst+suffix)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Sync()
}
