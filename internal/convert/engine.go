package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"audio-convert/internal/formats"
)

// ExportOptions carries per-export encoder knobs. An empty Bitrate leaves
// the encoder at its codec default.
type ExportOptions struct {
	Bitrate string
}

// Clip is decoded audio with pending parameter adjustments. The With*
// methods return derived clips and never mutate the receiver; adjustments
// are applied in the order they were requested when the clip is exported.
type Clip interface {
	WithSampleRate(hz int) Clip
	WithChannels(n int) Clip
	WithGain(db float64) Clip
	Export(ctx context.Context, path string, info formats.Info, opts ExportOptions) error
}

// Engine decodes input media into a Clip. Implementations wrap the actual
// codec toolchain; callers only ever see their errors as message text.
type Engine interface {
	Load(ctx context.Context, path string) (Clip, error)
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// FFmpegEngine drives ffprobe for decoding checks and ffmpeg for the
// transform+encode step.
type FFmpegEngine struct {
	ffmpegPath  string
	ffprobePath string
	runner      commandRunner
}

// NewFFmpegEngine constructs the production engine using tools from PATH.
func NewFFmpegEngine() *FFmpegEngine {
	return &FFmpegEngine{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &execRunner{},
	}
}

// NewEngineForTests constructs an engine with an injectable runner.
func NewEngineForTests(ffmpegPath, ffprobePath string, runner commandRunner) *FFmpegEngine {
	return &FFmpegEngine{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      runner,
	}
}

// Load verifies the input decodes to an audio stream and returns a clip
// bound to it. ffmpeg does the actual sample work at export time; Load is
// the cheap decode check that catches corrupt or non-audio inputs early.
func (e *FFmpegEngine) Load(ctx context.Context, path string) (Clip, error) {
	args := buildProbeArgs(path)
	result, err := e.runner.Run(ctx, e.ffprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("probe input: %s", toolFailure(result, err))
	}
	if strings.TrimSpace(result.Stdout) == "" {
		return nil, fmt.Errorf("no audio stream found in %s", path)
	}

	return &ffmpegClip{engine: e, source: path}, nil
}

// ffmpegClip accumulates requested adjustments and renders them as one
// ffmpeg invocation on export.
type ffmpegClip struct {
	engine     *FFmpegEngine
	source     string
	sampleRate int
	channels   int
	gainDB     float64
	hasGain    bool
}

func (c *ffmpegClip) WithSampleRate(hz int) Clip {
	out := *c
	out.sampleRate = hz
	return &out
}

func (c *ffmpegClip) WithChannels(n int) Clip {
	out := *c
	out.channels = n
	return &out
}

func (c *ffmpegClip) WithGain(db float64) Clip {
	out := *c
	out.gainDB = db
	out.hasGain = true
	return &out
}

// Export runs ffmpeg with the accumulated adjustments and writes path.
func (c *ffmpegClip) Export(ctx context.Context, path string, info formats.Info, opts ExportOptions) error {
	args := c.buildExportArgs(path, info, opts)
	result, err := c.engine.runner.Run(ctx, c.engine.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("encode %s: %s", info.ID, toolFailure(result, err))
	}
	return nil
}

// buildExportArgs assembles the single ffmpeg command for this clip.
func (c *ffmpegClip) buildExportArgs(outPath string, info formats.Info, opts ExportOptions) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", c.source,
		"-vn",
	}

	if c.sampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(c.sampleRate))
	}
	if c.channels > 0 {
		args = append(args, "-ac", strconv.Itoa(c.channels))
	}
	if c.hasGain {
		args = append(args, "-filter:a", fmt.Sprintf("volume=%gdB", c.gainDB))
	}
	args = append(args, codecArgs(info.ID)...)
	if opts.Bitrate != "" {
		args = append(args, "-b:a", opts.Bitrate)
	}

	return append(args, outPath)
}

// buildProbeArgs builds the ffprobe decode-check for the first audio stream.
func buildProbeArgs(inputPath string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels",
		"-of", "default=noprint_wrappers=1",
		inputPath,
	}
}

// codecArgs pins encoders where extension inference is unreliable.
func codecArgs(formatID string) []string {
	switch formatID {
	case "mp3":
		return []string{"-c:a", "libmp3lame"}
	case "ogg":
		return []string{"-c:a", "libvorbis"}
	case "wma":
		return []string{"-c:a", "wmav2"}
	case "aac":
		return []string{"-c:a", "aac", "-f", "adts"}
	default:
		return nil
	}
}

// toolFailure reduces a failed tool invocation to plain message text.
func toolFailure(result commandResult, err error) string {
	detail := strings.TrimSpace(result.Stderr)
	if len(detail) > 300 {
		detail = detail[:300] + "..."
	}
	if detail == "" {
		return err.Error()
	}
	return detail
}
