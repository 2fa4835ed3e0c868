package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/xappli/internal/config"
	"github.com/vmunix/xappli/internal/extract"
)

// runSettings is the effective configuration of one extract or plan run:
// the config file overlaid with command-line flags.
type runSettings struct {
	CatalogPath   string
	Table         string
	Snapshot      bool
	Output        string
	Policy        extract.OverwritePolicy
	Mode          extract.ConvertMode
	FFmpeg        string
	Compression   int
	Workers       int
	IgnoreMissing bool
	// HistoryPath is empty when the ledger is disabled.
	HistoryPath string
}

// loadConfig resolves the config file named by --config or discovered on
// the search path.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Resolve(configPath)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, path, err
		}
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// resolveSettings overlays the extraction flags registered on cmd onto cfg.
// A positional argument names the output directory.
func resolveSettings(cmd *cobra.Command, cfg *config.Config, args []string) (runSettings, error) {
	s := runSettings{
		CatalogPath:   cfg.Catalog.Path,
		Table:         cfg.Catalog.Table,
		Snapshot:      cfg.Catalog.Snapshot,
		Output:        cfg.Extract.Output,
		FFmpeg:        cfg.Convert.FFmpeg,
		Compression:   cfg.Convert.CompressionLevel,
		Workers:       cfg.Extract.Workers,
		IgnoreMissing: cfg.Extract.IgnoreMissing,
	}
	if cfg.History.Enabled {
		s.HistoryPath = cfg.History.Path
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		s.CatalogPath, _ = flags.GetString("catalog")
	}
	if flags.Changed("table") {
		s.Table, _ = flags.GetString("table")
	}
	if noSnapshot, _ := flags.GetBool("no-snapshot"); noSnapshot {
		s.Snapshot = false
	}
	if len(args) > 0 {
		s.Output = args[0]
	}
	if flags.Changed("workers") {
		s.Workers, _ = flags.GetInt("workers")
	}
	if ignore, _ := flags.GetBool("ignore-missing"); ignore {
		s.IgnoreMissing = true
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		s.HistoryPath = ""
	}

	policy := cfg.Extract.Overwrite
	if v, _ := flags.GetBool("overwrite"); v {
		policy = "overwrite"
	}
	if v, _ := flags.GetBool("skip-existing"); v {
		policy = "skip"
	}
	var err error
	if s.Policy, err = extract.ParsePolicy(policy); err != nil {
		return s, err
	}

	mode := cfg.Convert.Mode
	if v, _ := flags.GetBool("convert"); v {
		mode = string(extract.ModeFLAC)
	}
	if v, _ := flags.GetBool("rename"); v {
		mode = string(extract.ModeRename)
	}
	if v, _ := flags.GetBool("no-convert"); v {
		mode = string(extract.ModeOff)
	}
	if s.Mode, err = extract.ParseConvertMode(mode); err != nil {
		return s, err
	}

	if s.CatalogPath == "" {
		return s, errors.New("no catalog: pass --catalog or set catalog.path")
	}
	if s.Output == "" {
		return s, errors.New("no output directory: pass it as an argument or set extract.output")
	}
	if s.Workers < 1 || s.Workers > config.MaxWorkers {
		return s, fmt.Errorf("workers must be between 1 and %d, got %d", config.MaxWorkers, s.Workers)
	}
	if s.Output, err = filepath.Abs(s.Output); err != nil {
		return s, fmt.Errorf("resolve output: %w", err)
	}
	return s, nil
}

// addSourceFlags registers the flags shared by extract and plan.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog", "", "Catalog database (overrides catalog.path)")
	cmd.Flags().String("table", "", "Catalog table (overrides catalog.table)")
	cmd.Flags().Bool("no-snapshot", false, "Read the catalog in place instead of a temp copy")
	cmd.Flags().BoolP("convert", "c", false, "Convert 3gp/mp4 (AAC-LC) files to FLAC (requires ffmpeg)")
	cmd.Flags().BoolP("rename", "r", false, "Copy 3gp/mp4 files with the codec's extension (e.g. .aac)")
	cmd.Flags().Bool("no-convert", false, "Copy 3gp/mp4 files unchanged")
	cmd.MarkFlagsMutuallyExclusive("convert", "rename", "no-convert")
}
