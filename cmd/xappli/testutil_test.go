package main

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// catalogRow is one t_object row; nil values are stored as NULL.
type catalogRow struct {
	kind                                         int
	name                                         string
	artist, cover, album, container, codec, file any
}

// createCatalog writes a catalog database with the t_object layout.
func createCatalog(t *testing.T, rows []catalogRow) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MtData1.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err, "open db")
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`CREATE TABLE t_object (
		ObjectId INTEGER PRIMARY KEY,
		ObjectSpecId INTEGER NOT NULL,
		ObjectName TEXT,
		[201] TEXT, [202] TEXT, [206] TEXT, [207] TEXT, [208] TEXT, [500] TEXT
	)`)
	require.NoError(t, err, "create table")

	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO t_object (ObjectSpecId, ObjectName, [201], [202], [206], [207], [208], [500])
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.kind, r.name, r.artist, r.cover, r.album, r.container, r.codec, r.file)
		require.NoError(t, err, "insert row")
	}
	return path
}

// newExtractTestCmd returns a command carrying the extract flags, parsed
// from args.
func newExtractTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "extract", RunE: func(*cobra.Command, []string) error { return nil }}
	addSourceFlags(cmd)
	addExtractFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}
