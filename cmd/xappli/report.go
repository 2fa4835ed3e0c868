package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/vmunix/xappli/internal/extract"
)

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// printReport writes the outcome summary and the follow-up list.
func printReport(w io.Writer, runID string, r *extract.Report) {
	counts := r.Counts()
	summary := newTable(col("Outcome"), numCol("Records"))
	for _, o := range extract.Outcomes {
		summary.add(o.String(), counts[o])
	}
	summary.add("ignored (not a file)", r.Ignored)
	summary.total("catalog rows", len(r.Results)+r.Ignored)
	fmt.Fprintln(w, summary.render())

	fmt.Fprintf(w, "Wrote %s into %d new directories", humanize.Bytes(uint64(r.BytesWritten())), r.Dirs)
	if copied := r.CoverCount(extract.CoverCopied); copied > 0 {
		fmt.Fprintf(w, ", %d cover images", copied)
	}
	fmt.Fprintln(w)
	if runID != "" {
		fmt.Fprintf(w, "Run %s\n", runID)
	}

	followUps := r.FollowUps()
	if len(followUps) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d items need attention:\n", len(followUps))
	fmt.Fprintln(w, followUpTable(followUps).render())
}

// followUpTable lists records needing manual action. Failed conversions
// point at the staged copy the user can retry from.
func followUpTable(results []extract.Result) *outputTable {
	t := newTable(numCol("#"), col("Title"), wrapCol("Problem"), wrapCol("Path"))
	for _, res := range results {
		path := res.Record.Source()
		problem := res.Outcome.String()
		if res.Outcome == extract.OutcomeConversionFailed {
			path = res.StagedPath
			if res.Err != nil {
				problem = res.Err.Error()
			}
		}
		if path == "" {
			path = "-"
		}
		t.add(res.Index+1, res.Record.Title, problem, path)
	}
	return t
}

type resultJSON struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Source   string `json:"source,omitempty"`
	Action   string `json:"action"`
	Outcome  string `json:"outcome"`
	Reason   string `json:"reason,omitempty"`
	Dest     string `json:"dest,omitempty"`
	Staged   string `json:"staged,omitempty"`
	CoverArt string `json:"cover_art"`
	Size     int64  `json:"size_bytes,omitempty"`
	Error    string `json:"error,omitempty"`
}

type reportJSON struct {
	RunID        string         `json:"run_id,omitempty"`
	Counts       map[string]int `json:"counts"`
	Ignored      int            `json:"ignored"`
	Dirs         int            `json:"dirs"`
	BytesWritten int64          `json:"bytes_written"`
	Results      []resultJSON   `json:"results"`
}

func newReportJSON(runID string, r *extract.Report) reportJSON {
	out := reportJSON{
		RunID:        runID,
		Counts:       make(map[string]int, len(extract.Outcomes)),
		Ignored:      r.Ignored,
		Dirs:         r.Dirs,
		BytesWritten: r.BytesWritten(),
		Results:      make([]resultJSON, 0, len(r.Results)),
	}
	for o, n := range r.Counts() {
		out.Counts[o.String()] = n
	}
	for _, res := range r.Results {
		rj := resultJSON{
			Index:    res.Index,
			Title:    res.Record.Title,
			Source:   res.Record.Source(),
			Action:   res.Plan.Action.String(),
			Outcome:  res.Outcome.String(),
			Reason:   res.Reason,
			Dest:     res.DestPath,
			Staged:   res.StagedPath,
			CoverArt: res.CoverArt.String(),
			Size:     res.SizeBytes,
		}
		if res.Err != nil {
			rj.Error = res.Err.Error()
		}
		out.Results = append(out.Results, rj)
	}
	return out
}
