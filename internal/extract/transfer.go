package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmunix/xappli/internal/catalog"
	"github.com/vmunix/xappli/internal/convert"
)

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Converter        convert.Converter // required for ActionConvert
	Policy           OverwritePolicy
	Prompter         Prompter
	CompressionLevel int // 0 uses convert.MaxCompressionLevel
}

// Executor performs planned transfers.
type Executor struct {
	converter   convert.Converter
	policy      OverwritePolicy
	prompter    Prompter
	compression int
	log         *slog.Logger

	mu     sync.Mutex
	covers map[string]bool // cover destinations already handled this run
}

// NewExecutor creates an executor.
func NewExecutor(cfg ExecutorConfig, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	compression := cfg.CompressionLevel
	if compression == 0 {
		compression = convert.MaxCompressionLevel
	}
	return &Executor{
		converter:   cfg.Converter,
		policy:      cfg.Policy,
		prompter:    cfg.Prompter,
		compression: compression,
		log:         log,
		covers:      make(map[string]bool),
	}
}

// Execute carries out plan for rec. It never returns an error: every
// failure is folded into the Result.
func (e *Executor) Execute(ctx context.Context, plan Plan, rec catalog.Record) Result {
	res := Result{Record: rec, Plan: plan}

	switch plan.Action {
	case ActionSkip:
		if plan.Missing() {
			res.Outcome = OutcomeMissingSource
			res.Err = ErrMissingSource
		} else {
			res.Outcome = OutcomeSkipped
		}
		res.Reason = plan.Reason
		return res
	case ActionCopy:
		res.CoverArt = e.copyCoverArt(plan.Dir, rec)
		e.copyAudio(plan, rec, &res)
	case ActionConvert:
		res.CoverArt = e.copyCoverArt(plan.Dir, rec)
		e.convertAudio(ctx, plan, rec, &res)
	default:
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("unknown action %d", plan.Action)
	}
	return res
}

func (e *Executor) copyAudio(plan Plan, rec catalog.Record, res *Result) {
	dest := plan.DestPath()
	res.DestPath = dest

	ok, err := allowWrite(dest, e.policy, e.prompter)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("overwrite prompt: %w", err)
		return
	}
	if !ok {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonDestinationExists
		return
	}

	size, err := CopyFile(rec.Source(), dest, e.policy != SkipExisting)
	if errors.Is(err, ErrDestinationExists) {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonDestinationExists
		return
	}
	if err != nil {
		e.copyFailed(res, err)
		return
	}
	e.log.Debug("file copied", "src", rec.Source(), "dest", dest, "size_bytes", size)
	if catalog.IsDRMContainer(rec.ContainerType) {
		e.log.Warn("drm protected file copied as-is", "dest", dest, "container", rec.ContainerType)
	}
	res.Outcome = OutcomeTransferred
	res.SizeBytes = size
}

func (e *Executor) convertAudio(ctx context.Context, plan Plan, rec catalog.Record, res *Result) {
	output := plan.DestPath()
	res.DestPath = output

	if e.converter == nil {
		res.Outcome = OutcomeConversionFailed
		res.Err = fmt.Errorf("%w: no converter configured", convert.ErrConversionFailed)
		return
	}

	ok, err := allowWrite(output, e.policy, e.prompter)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("overwrite prompt: %w", err)
		return
	}
	if !ok {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonDestinationExists
		return
	}

	staged, err := stage(plan.Dir, rec.Source())
	if err != nil {
		e.copyFailed(res, err)
		return
	}

	e.log.Info("converting", "src", staged, "dest", output)
	err = e.converter.Convert(ctx, convert.Request{
		Input:            staged,
		Output:           output,
		Codec:            convert.CodecFLAC,
		CompressionLevel: e.compression,
		Overwrite:        true,
	})
	if err != nil {
		res.Outcome = OutcomeConversionFailed
		res.StagedPath = staged
		if !errors.Is(err, convert.ErrConversionFailed) {
			err = fmt.Errorf("%w: %w", convert.ErrConversionFailed, err)
		}
		res.Err = err
		return
	}

	if err := os.Remove(staged); err != nil {
		e.log.Warn("remove staged copy failed", "path", staged, "error", err)
	}

	res.Outcome = OutcomeConverted
	if info, err := os.Stat(output); err == nil {
		res.SizeBytes = info.Size()
	}
}

// stage copies src into dir under a fresh hidden name for the converter
// to read. The name never matches a file already in the tree or another
// record's staged copy.
func stage(dir, src string) (string, error) {
	f, err := os.CreateTemp(dir, "."+sourceBase(src)+".*.stage")
	if err != nil {
		return "", fmt.Errorf("%w: create staged copy: %w", ErrCopyFailed, err)
	}
	staged := f.Name()
	_ = f.Close()

	if _, err := CopyFile(src, staged, true); err != nil {
		_ = os.Remove(staged)
		return "", err
	}
	return staged, nil
}

// copyFailed classifies a CopyFile error into the result.
func (e *Executor) copyFailed(res *Result, err error) {
	if errors.Is(err, ErrSourceUnreadable) {
		res.Outcome = OutcomeMissingSource
		res.Reason = ReasonMissingSource
		res.Err = fmt.Errorf("%w: %w", ErrMissingSource, err)
		return
	}
	res.Outcome = OutcomeFailed
	res.Err = err
}

// copyCoverArt places the record's cover art next to the audio file under
// its original name. Failures never propagate: unreadable sources are
// expected and logged at debug; anything else is a warning.
func (e *Executor) copyCoverArt(dir string, rec catalog.Record) CoverStatus {
	src := rec.CoverArt()
	if src == "" {
		return CoverNone
	}
	dest := filepath.Join(dir, sourceBase(src))

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.covers[dest] {
		return CoverPresent
	}

	ok, err := allowWrite(dest, e.policy, e.prompter)
	if err != nil {
		e.log.Warn("cover art prompt failed", "dest", dest, "error", err)
		return CoverFailed
	}
	if !ok {
		e.covers[dest] = true
		return CoverPresent
	}

	if _, err := CopyFile(src, dest, e.policy != SkipExisting); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			e.covers[dest] = true
			return CoverPresent
		}
		if errors.Is(err, ErrSourceUnreadable) {
			e.log.Debug("cover art unavailable", "src", src, "error", err)
			return CoverUnavailable
		}
		e.log.Warn("cover art copy failed", "src", src, "dest", dest,
			"error", fmt.Errorf("%w: %w", ErrCoverArtUnavailable, err))
		return CoverFailed
	}
	e.covers[dest] = true
	e.log.Debug("cover art copied", "src", src, "dest", dest)
	return CoverCopied
}
