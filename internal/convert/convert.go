// Package convert describes transcoding requests and runs them through an
// external converter. Callers only see success or failure.
package convert

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_converter.go -package=mocks . Converter

// Codec is a transcoding target.
type Codec string

const (
	CodecFLAC Codec = "flac"
)

// Extension returns the file extension for the codec, without a dot.
func (c Codec) Extension() string {
	return string(c)
}

// MaxCompressionLevel is the highest FLAC compression effort ffmpeg accepts.
const MaxCompressionLevel = 12

var (
	// ErrConversionFailed indicates the converter reported failure.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrInvalidRequest indicates a request missing a path or codec.
	ErrInvalidRequest = errors.New("invalid conversion request")
)

// Request is a declarative conversion request.
type Request struct {
	Input            string
	Output           string
	Codec            Codec
	CompressionLevel int
	// Overwrite allows replacing an existing output file.
	Overwrite bool
}

// Validate checks the request is complete.
func (r Request) Validate() error {
	switch {
	case r.Input == "":
		return errors.Join(ErrInvalidRequest, errors.New("input path required"))
	case r.Output == "":
		return errors.Join(ErrInvalidRequest, errors.New("output path required"))
	case r.Codec == "":
		return errors.Join(ErrInvalidRequest, errors.New("codec required"))
	case r.Input == r.Output:
		return errors.Join(ErrInvalidRequest, errors.New("input and output are the same file"))
	}
	return nil
}

// Converter transcodes one file. It blocks until the conversion finishes.
type Converter interface {
	Convert(ctx context.Context, req Request) error
}
