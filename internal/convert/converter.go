// Package convert executes single-file audio conversions against the
// ffmpeg toolchain and classifies their failures.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"audio-convert/internal/formats"
)

// Job describes one file's conversion request. Zero values for SampleRate
// and Channels mean "leave unchanged from source"; a zero GainDB means no
// gain adjustment; an empty Bitrate means the codec default.
type Job struct {
	InputPath    string
	OutputPath   string
	OutputFormat string
	Bitrate      string
	SampleRate   int
	Channels     int
	GainDB       float64
}

// Converter runs jobs against an Engine with OS dependencies injected
// for tests.
type Converter struct {
	engine   Engine
	stat     func(name string) (os.FileInfo, error)
	mkdirAll func(path string, perm os.FileMode) error
	remove   func(name string) error
}

// NewConverter constructs the production converter backed by ffmpeg.
func NewConverter() *Converter {
	return NewConverterWithEngine(NewFFmpegEngine())
}

// NewConverterWithEngine constructs a converter around a custom engine.
func NewConverterWithEngine(engine Engine) *Converter {
	return &Converter{
		engine:   engine,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
		remove:   os.Remove,
	}
}

// NewConverterForTests constructs a converter with injectable dependencies.
func NewConverterForTests(
	engine Engine,
	stat func(name string) (os.FileInfo, error),
	mkdirAll func(path string, perm os.FileMode) error,
	remove func(name string) error,
) *Converter {
	return &Converter{
		engine:   engine,
		stat:     stat,
		mkdirAll: mkdirAll,
		remove:   remove,
	}
}

// Convert runs one job. Progress is reported at fixed checkpoints: 0.1
// after the input check, 0.3 after a successful load, 0.6 after parameter
// application, 1.0 after the output is written, and a terminal 0.0 on any
// failure path. The input file is checked at execution time, not when the
// job was built. Context cancellation propagates unclassified so batch
// callers can tell a cancelled job from a failed one.
func (c *Converter) Convert(ctx context.Context, job Job, onProgress func(fraction float64)) error {
	if err := ctx.Err(); err != nil {
		emitProgress(onProgress, 0)
		return err
	}

	// Pre-flight, in the same order the checks have always run: input
	// existence first, then format support.
	if _, err := c.stat(job.InputPath); err != nil {
		emitProgress(onProgress, 0)
		return &Error{
			Kind:    KindFileAccess,
			Path:    job.InputPath,
			Message: "input file does not exist or is unreadable",
			Err:     err,
		}
	}

	info, ok := formats.Get(job.OutputFormat)
	if !ok {
		emitProgress(onProgress, 0)
		return &Error{
			Kind:    KindUnsupportedFormat,
			Path:    job.InputPath,
			Message: fmt.Sprintf("unsupported output format: %s", job.OutputFormat),
		}
	}

	// MkdirAll is idempotent, so concurrent jobs racing on the same output
	// directory cannot fail each other here.
	if err := c.mkdirAll(filepath.Dir(job.OutputPath), 0o755); err != nil {
		emitProgress(onProgress, 0)
		return &Error{
			Kind:    KindConversion,
			Path:    job.OutputPath,
			Message: fmt.Sprintf("cannot create output directory: %v", err),
			Err:     err,
		}
	}

	emitProgress(onProgress, 0.1)

	clip, err := c.engine.Load(ctx, job.InputPath)
	if err != nil {
		return c.fail(ctx, onProgress, &Error{
			Kind:    KindConversion,
			Path:    job.InputPath,
			Message: fmt.Sprintf("cannot load audio file: %v", err),
			Err:     err,
		})
	}

	emitProgress(onProgress, 0.3)

	// Fixed application order keeps output deterministic: sample rate,
	// then channels, then gain.
	if job.SampleRate > 0 {
		clip = clip.WithSampleRate(job.SampleRate)
	}
	if job.Channels > 0 {
		clip = clip.WithChannels(job.Channels)
	}
	if job.GainDB != 0 {
		clip = clip.WithGain(job.GainDB)
	}

	emitProgress(onProgress, 0.6)

	opts := ExportOptions{Bitrate: job.Bitrate}
	if err := clip.Export(ctx, job.OutputPath, info, opts); err != nil {
		// A failed encode may have written part of the output file.
		_ = c.remove(job.OutputPath)
		return c.fail(ctx, onProgress, &Error{
			Kind:    KindConversion,
			Path:    job.InputPath,
			Message: fmt.Sprintf("export failed: %v", err),
			Err:     err,
		})
	}

	emitProgress(onProgress, 1.0)
	return nil
}

// fail emits the terminal zero progress and maps mid-flight cancellation
// back to the context error.
func (c *Converter) fail(ctx context.Context, onProgress func(float64), convErr *Error) error {
	emitProgress(onProgress, 0)
	if err := ctx.Err(); err != nil {
		return err
	}
	return convErr
}

// emitProgress forwards a checkpoint when a callback is configured.
func emitProgress(cb func(float64), fraction float64) {
	if cb != nil {
		cb(fraction)
	}
}
