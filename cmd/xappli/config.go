package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/xappli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, field values, and environment variable substitution without running an extraction.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd, configInitCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(w, configErr)
			// Show what the file resolves to so the bad values are in context.
			if parsed, perr := config.LoadWithoutValidation(path); perr == nil {
				printConfigSummary(w, parsed)
			}
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(w, cfg)
	fmt.Fprintln(w, "\nConfiguration valid!")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w, use --force to overwrite", err)
		}
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if sections := e.Sections(); len(sections) > 0 {
		fmt.Fprintf(w, "Sections to fix: %s\n\n", strings.Join(sections, ", "))
	}
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Log level:  %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  Catalog:    %s (table %s, snapshot: %t)\n", orUnset(cfg.Catalog.Path), cfg.Catalog.Table, cfg.Catalog.Snapshot)
	fmt.Fprintf(w, "  Output:     %s\n", orUnset(cfg.Extract.Output))
	fmt.Fprintf(w, "  Overwrite:  %s\n", cfg.Extract.Overwrite)
	fmt.Fprintf(w, "  Workers:    %d\n", cfg.Extract.Workers)
	fmt.Fprintf(w, "  Convert:    %s", cfg.Convert.Mode)
	if cfg.Convert.Mode == "flac" {
		fmt.Fprintf(w, " (%s, level %d)", cfg.Convert.FFmpeg, cfg.Convert.CompressionLevel)
	}
	fmt.Fprintln(w)
	if cfg.History.Enabled {
		fmt.Fprintf(w, "  History:    %s\n", cfg.History.Path)
	} else {
		fmt.Fprintln(w, "  History:    disabled")
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
