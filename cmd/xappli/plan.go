package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/xappli/internal/catalog"
	"github.com/vmunix/xappli/internal/extract"
)

var planCmd = &cobra.Command{
	Use:   "plan [output_directory]",
	Short: "Show where each catalog file would go, without writing anything",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlanCmd,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addSourceFlags(planCmd)
}

type planJSON struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	Action string `json:"action"`
	Dest   string `json:"dest,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, cfg, args)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, verbose)

	source, err := catalog.NewSQLiteSource(catalog.SQLiteConfig{
		Path:     settings.CatalogPath,
		Table:    settings.Table,
		Snapshot: settings.Snapshot,
	}, log.With("component", "catalog"))
	if err != nil {
		return err
	}

	pipeline := extract.New(source, extract.Config{Root: settings.Output, Mode: settings.Mode}, log)
	planned, ignored, err := pipeline.Plan(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		out := make([]planJSON, 0, len(planned))
		for _, p := range planned {
			pj := planJSON{
				Index:  p.Index,
				Title:  p.Record.Title,
				Source: p.Record.Source(),
				Action: p.Plan.Action.String(),
				Reason: p.Plan.Reason,
			}
			if p.Plan.Action != extract.ActionSkip {
				pj.Dest = p.Plan.DestPath()
			}
			out = append(out, pj)
		}
		printJSON(cmd.OutOrStdout(), out)
		return nil
	}

	printPlan(cmd.OutOrStdout(), settings.Output, planned, ignored)
	return nil
}

// printPlan lists destinations relative to root.
func printPlan(w io.Writer, root string, planned []extract.PlannedRecord, ignored int) {
	if len(planned) == 0 {
		fmt.Fprintln(w, "No files in catalog")
		return
	}

	t := newTable(numCol("#"), col("Title"), col("Action"), wrapCol("Destination"))
	actions := make(map[extract.Action]int)
	for _, p := range planned {
		actions[p.Plan.Action]++
		dest := p.Plan.Reason
		if p.Plan.Action != extract.ActionSkip {
			if rel, err := filepath.Rel(root, p.Plan.DestPath()); err == nil {
				dest = rel
			} else {
				dest = p.Plan.DestPath()
			}
		}
		t.add(p.Index+1, p.Record.Title, p.Plan.Action, dest)
	}
	fmt.Fprintln(w, t.render())
	fmt.Fprintf(w, "%d to copy, %d to convert, %d to skip, %d non-file objects ignored (output: %s)\n",
		actions[extract.ActionCopy], actions[extract.ActionConvert], actions[extract.ActionSkip], ignored, root)
}
