package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vmunix/xappli/internal/catalog"
	"github.com/vmunix/xappli/internal/convert"
	"github.com/vmunix/xappli/internal/extract"
	"github.com/vmunix/xappli/internal/ledger"
)

// lockName is the lock file held in the output root for the length of a run.
const lockName = ".xappli.lock"

var extractCmd = &cobra.Command{
	Use:   "extract [output_directory]",
	Short: "Copy the catalog's music into an Artist/Album tree",
	Long: `Reads every file object from the catalog and places it under
<output_directory>/<artist>/<album>/, copying cover art alongside.
MP4/3GP AAC files are converted to FLAC unless --rename or --no-convert
is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtractCmd,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addSourceFlags(extractCmd)
	addExtractFlags(extractCmd)
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("ignore-missing", "i", false, "Don't warn when a file in the catalog is missing on disk")
	cmd.Flags().BoolP("overwrite", "y", false, "Overwrite existing files without prompting")
	cmd.Flags().BoolP("skip-existing", "n", false, "Skip existing files without prompting")
	cmd.Flags().IntP("workers", "w", 1, "Concurrent transfers (prompting forces 1)")
	cmd.Flags().Bool("no-history", false, "Don't record this run in the history database")
	cmd.MarkFlagsMutuallyExclusive("overwrite", "skip-existing")
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, cfg, args)
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var prompter extract.Prompter
	if settings.Policy == extract.PromptEachTime {
		if isTerminal(os.Stdin) {
			prompter = extract.NewLinePrompter(os.Stdin, cmd.ErrOrStderr())
		} else {
			log.Warn("stdin is not a terminal, existing files will be skipped")
			settings.Policy = extract.SkipExisting
		}
	}

	report, runID, err := runExtract(ctx, settings, prompter, log)
	if report != nil {
		if jsonOutput {
			printJSON(cmd.OutOrStdout(), newReportJSON(runID, report))
		} else {
			printReport(cmd.OutOrStdout(), runID, report)
		}
	}
	return err
}

// runExtract performs one extraction run under the output-root lock and
// records it in the ledger when enabled. The run ID is empty without a
// ledger.
func runExtract(ctx context.Context, s runSettings, prompter extract.Prompter, log *slog.Logger) (*extract.Report, string, error) {
	if err := extract.MakeDirs(s.Output); err != nil {
		return nil, "", err
	}

	lock := flock.New(filepath.Join(s.Output, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, "", fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, "", fmt.Errorf("output %s is in use by another run", s.Output)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("release lock failed", "path", lock.Path(), "error", err)
		}
	}()

	source, err := catalog.NewSQLiteSource(catalog.SQLiteConfig{
		Path:     s.CatalogPath,
		Table:    s.Table,
		Snapshot: s.Snapshot,
	}, log.With("component", "catalog"))
	if err != nil {
		return nil, "", err
	}

	var store *ledger.Store
	var run *ledger.Run
	if s.HistoryPath != "" {
		db, err := ledger.Open(s.HistoryPath)
		if err != nil {
			return nil, "", err
		}
		defer func() { _ = db.Close() }()

		store = ledger.NewStore(db)
		run = &ledger.Run{
			CatalogPath:     s.CatalogPath,
			OutputRoot:      s.Output,
			ConvertMode:     string(s.Mode),
			OverwritePolicy: s.Policy.String(),
		}
		if err := store.Start(ctx, run); err != nil {
			return nil, "", err
		}
		log = log.With("run_id", run.ID)
	}

	var converter convert.Converter
	if s.Mode == extract.ModeFLAC {
		ff := convert.NewFFmpeg(s.FFmpeg, log.With("component", "ffmpeg"))
		if err := ff.Available(); err != nil {
			log.Warn("ffmpeg not found, conversions will fail", "binary", s.FFmpeg, "error", err)
		}
		converter = ff
	}

	pipeline := extract.New(source, extract.Config{
		Root:             s.Output,
		Mode:             s.Mode,
		Policy:           s.Policy,
		Prompter:         prompter,
		Converter:        converter,
		CompressionLevel: s.Compression,
		Workers:          s.Workers,
		IgnoreMissing:    s.IgnoreMissing,
	}, log.With("component", "pipeline"))

	report, runErr := pipeline.Run(ctx)

	if store == nil {
		return report, "", runErr
	}
	// The run context may be canceled; the record is still written.
	if err := store.Finish(context.WithoutCancel(ctx), run, report, runErr); err != nil {
		log.Error("record run failed", "error", err)
	}
	return report, run.ID, runErr
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
