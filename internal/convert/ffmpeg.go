package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is looked up on PATH when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// FFmpeg runs conversions through the ffmpeg command line tool.
type FFmpeg struct {
	binary string
	log    *slog.Logger
}

// NewFFmpeg creates a converter using the given binary.
// An empty binary uses DefaultBinary.
func NewFFmpeg(binary string, log *slog.Logger) *FFmpeg {
	if binary == "" {
		binary = DefaultBinary
	}
	if log == nil {
		log = slog.Default()
	}
	return &FFmpeg{binary: binary, log: log}
}

// Available reports whether the binary can be found.
func (f *FFmpeg) Available() error {
	_, err := exec.LookPath(f.binary)
	return err
}

// Args builds the ffmpeg argument list for a request, binary excluded.
func Args(req Request) []string {
	overwrite := "-n"
	if req.Overwrite {
		overwrite = "-y"
	}
	args := []string{
		"-loglevel", "quiet",
		overwrite,
		"-i", req.Input,
		"-c:a", string(req.Codec),
	}
	if req.CompressionLevel > 0 {
		args = append(args, "-compression_level", strconv.Itoa(req.CompressionLevel))
	}
	return append(args, req.Output)
}

// Convert runs ffmpeg and waits for it to exit.
// Any non-zero exit is reported as ErrConversionFailed.
func (f *FFmpeg) Convert(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	args := Args(req)
	cmd := exec.CommandContext(ctx, f.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.log.Debug("ffmpeg started", "input", req.Input, "output", req.Output, "codec", req.Codec)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			f.log.Debug("ffmpeg stderr", "output", req.Output, "stderr", msg)
		}
		return fmt.Errorf("%w: %s: %v", ErrConversionFailed, req.Input, err)
	}
	f.log.Debug("ffmpeg finished", "output", req.Output)
	return nil
}

// Ensure FFmpeg implements Converter.
var _ Converter = (*FFmpeg)(nil)
