package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/xappli/internal/extract"
	"github.com/vmunix/xappli/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past extraction runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCmd,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the items of a run that need attention",
	Long:  "Shows missing sources and failed conversions of a run. The run ID may be abbreviated to any unique prefix.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShowCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntP("limit", "l", 20, "Maximum runs to show (0 for all)")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (running, completed, failed)")
	historyShowCmd.Flags().BoolP("all", "a", false, "Show every record, not only follow-ups")
}

func openLedger() (*ledger.Store, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil, errors.New("history is disabled (history.enabled = false)")
	}
	db, err := ledger.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewStore(db), func() { _ = db.Close() }, nil
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")

	store, closeDB, err := openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	filter := ledger.RunFilter{Limit: limit}
	if status != "" {
		filter.Status = &status
	}
	runs, err := store.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), runs)
		return nil
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")

	store, closeDB, err := openLedger()
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	filter := ledger.EntryFilter{RunID: run.ID}
	if !all {
		filter.Outcomes = ledger.FollowUpOutcomes()
	}
	entries, err := store.Entries(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), struct {
			Run     *ledger.Run     `json:"run"`
			Entries []*ledger.Entry `json:"entries"`
		}{run, entries})
		return nil
	}
	printRun(cmd.OutOrStdout(), run, entries)
	return nil
}

func printRuns(w io.Writer, runs []*ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}

	t := newTable(col("Run"), col("Started"), col("Status"), numCol("Placed"), numCol("Follow-ups"), numCol("Written"), wrapCol("Output"))
	for _, r := range runs {
		t.add(
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			r.Counts[extract.OutcomeTransferred.String()]+r.Counts[extract.OutcomeConverted.String()],
			r.Counts[extract.OutcomeMissingSource.String()]+r.Counts[extract.OutcomeConversionFailed.String()],
			humanize.Bytes(uint64(r.BytesWritten)),
			r.OutputRoot,
		)
	}
	fmt.Fprintln(w, t.render())
}

func printRun(w io.Writer, r *ledger.Run, entries []*ledger.Entry) {
	fmt.Fprintf(w, "Run:      %s (%s)\n", r.ID, r.Status)
	fmt.Fprintf(w, "Started:  %s (%s)\n", r.StartedAt.Local().Format(time.RFC1123), humanize.Time(r.StartedAt))
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(w, "Duration: %s\n", d.Round(time.Second))
	}
	fmt.Fprintf(w, "Catalog:  %s\n", r.CatalogPath)
	fmt.Fprintf(w, "Output:   %s (convert: %s, overwrite: %s)\n", r.OutputRoot, r.ConvertMode, r.OverwritePolicy)
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "Nothing needs attention")
		return
	}

	t := newTable(numCol("#"), col("Title"), col("Outcome"), wrapCol("Detail"), wrapCol("Path"))
	for _, e := range entries {
		path := e.SourcePath
		if e.StagedPath != "" {
			path = e.StagedPath
		} else if e.Outcome != extract.OutcomeMissingSource.String() && e.DestPath != "" {
			path = e.DestPath
		}
		if path == "" {
			path = "-"
		}
		detail := e.Reason
		if e.Error != "" {
			detail = e.Error
		}
		t.add(e.Index+1, e.Title, e.Outcome, detail, path)
	}
	fmt.Fprintln(w, t.render())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
