// Package extract turns catalog records into an Artist/Album/Track
// directory tree: it plans each destination, copies or converts the audio
// file with its cover art, and reports a per-record outcome.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/xappli/internal/catalog"
	"github.com/vmunix/xappli/internal/convert"
)

// Config for the extraction pipeline.
type Config struct {
	Root             string
	Mode             ConvertMode
	Policy           OverwritePolicy
	Prompter         Prompter
	Converter        convert.Converter
	CompressionLevel int
	// Workers bounds concurrent transfers. Values below 1 mean 1.
	// Prompting always runs with a single worker.
	Workers       int
	IgnoreMissing bool
}

// Pipeline drives a whole extraction run.
type Pipeline struct {
	source        catalog.Source
	planner       *Planner
	executor      *Executor
	dirs          *Dirs
	root          string
	workers       int
	ignoreMissing bool
	log           *slog.Logger
}

// New creates a pipeline reading from source.
func New(source catalog.Source, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 || cfg.Policy == PromptEachTime {
		workers = 1
	}
	return &Pipeline{
		source:  source,
		planner: NewPlanner(cfg.Root, cfg.Mode),
		executor: NewExecutor(ExecutorConfig{
			Converter:        cfg.Converter,
			Policy:           cfg.Policy,
			Prompter:         cfg.Prompter,
			CompressionLevel: cfg.CompressionLevel,
		}, log.With("component", "executor")),
		dirs:          NewDirs(log),
		root:          cfg.Root,
		workers:       workers,
		ignoreMissing: cfg.IgnoreMissing,
		log:           log,
	}
}

// PlannedRecord pairs a file record with its placement.
type PlannedRecord struct {
	Index  int
	Record catalog.Record
	Plan   Plan
}

// Plan resolves and plans every file record without touching the output
// tree. The second result counts ignored non-file rows.
func (p *Pipeline) Plan(ctx context.Context) ([]PlannedRecord, int, error) {
	raws, err := p.source.Snapshot(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("read catalog: %w", err)
	}

	var planned []PlannedRecord
	ignored := 0
	for i, raw := range raws {
		rec := catalog.Resolve(raw)
		if !rec.IsFile() {
			ignored++
			continue
		}
		planned = append(planned, PlannedRecord{Index: i, Record: rec, Plan: p.planner.Plan(rec)})
	}
	return planned, ignored, nil
}

// Run extracts every file record in catalog order.
//
// Per-record failures become outcomes and never stop the run. Failing to
// create the output root or a destination directory, or to read the
// catalog, is fatal: Run returns the partial report with the error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.log.Info("extraction started", "root", p.root, "workers", p.workers)

	if err := MakeDirs(p.root); err != nil {
		return nil, err
	}

	raws, err := p.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	report := &Report{IgnoreMissing: p.ignoreMissing}
	results := make([]*Result, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	claimed := make(claims)

	var runErr error
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		rec := catalog.Resolve(raw)
		if !rec.IsFile() {
			report.Ignored++
			p.log.Debug("ignoring non-file object", "index", i, "type", rec.Type, "title", rec.Title)
			continue
		}

		plan := p.planner.Plan(rec)
		p.log.Info("processing", "index", i+1, "total", len(raws), "title", rec.Title, "action", plan.Action)

		var prev <-chan struct{}
		done := make(chan struct{})
		if plan.Action != ActionSkip {
			if _, err := p.dirs.Ensure(plan.Dir); err != nil {
				p.log.Error("directory creation failed", "dir", plan.Dir, "error", err)
				runErr = err
				break
			}
			prev = claimed.take(plan.DestPath(), done)
		}

		g.Go(func() error {
			defer close(done)
			if prev != nil {
				<-prev
			}
			res := p.executor.Execute(gctx, plan, rec)
			res.Index = i
			results[i] = &res
			p.logResult(res)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res != nil {
			report.Results = append(report.Results, *res)
		}
	}
	report.Dirs = p.dirs.Created()

	p.log.Info("extraction finished",
		"records", len(report.Results),
		"transferred", report.Count(OutcomeTransferred),
		"converted", report.Count(OutcomeConverted),
		"skipped", report.Count(OutcomeSkipped),
		"missing", report.Count(OutcomeMissingSource),
		"conversion_failed", report.Count(OutcomeConversionFailed),
		"failed", report.Count(OutcomeFailed),
		"ignored", report.Ignored)

	return report, runErr
}

// claims serializes records that share a destination. A record waits for
// the previous claimant of its path, so collisions resolve the same way
// with any number of workers as they do sequentially.
type claims map[string]chan struct{}

// take records done as the latest claimant of dest and returns the
// previous claimant's channel, or nil.
func (c claims) take(dest string, done chan struct{}) <-chan struct{} {
	key := pathKey(dest)
	prev := c[key]
	c[key] = done
	return prev
}

func (p *Pipeline) logResult(res Result) {
	switch res.Outcome {
	case OutcomeTransferred, OutcomeConverted:
		p.log.Debug("record done", "title", res.Record.Title, "outcome", res.Outcome, "dest", res.DestPath)
	case OutcomeSkipped:
		p.log.Info("record skipped", "title", res.Record.Title, "reason", res.Reason, "dest", res.DestPath)
	case OutcomeMissingSource:
		if p.ignoreMissing {
			p.log.Debug("source file not found", "title", res.Record.Title, "source", res.Record.Source())
			return
		}
		p.log.Warn("source file not found", "title", res.Record.Title, "source", res.Record.Source())
	case OutcomeConversionFailed:
		p.log.Warn("conversion failed", "title", res.Record.Title, "staged", res.StagedPath, "error", res.Err)
	default:
		p.log.Warn("record failed", "title", res.Record.Title, "error", res.Err)
	}
}
