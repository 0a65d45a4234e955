package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"audio-convert/internal/formats"
)

// fakeRunner simulates tool invocations.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// TestEngineLoadProbesFirstAudioStream checks the ffprobe invocation.
func TestEngineLoadProbesFirstAudioStream(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			gotName = name
			gotArgs = append([]string{}, args...)
			return commandResult{Stdout: "codec_name=pcm_s16le\nsample_rate=44100\nchannels=2\n"}, nil
		},
	}

	engine := NewEngineForTests("ffmpeg-x", "ffprobe-x", runner)
	clip, err := engine.Load(context.Background(), "/music/in.wav")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if clip == nil {
		t.Fatal("expected clip")
	}
	if gotName != "ffprobe-x" {
		t.Fatalf("probe tool = %q", gotName)
	}
	if gotArgs[len(gotArgs)-1] != "/music/in.wav" {
		t.Fatalf("probe args = %v", gotArgs)
	}
}

// TestEngineLoadFailureCarriesStderrText checks message-only wrapping.
func TestEngineLoadFailureCarriesStderrText(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stderr: "moov atom not found", ExitCode: 1}, errors.New("exit status 1")
		},
	}

	engine := NewEngineForTests("ffmpeg", "ffprobe", runner)
	_, err := engine.Load(context.Background(), "/music/bad.m4a")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("error = %v, want stderr text", err)
	}
}

// TestEngineLoadRejectsStreamlessInput checks the no-audio guard.
func TestEngineLoadRejectsStreamlessInput(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stdout: "  \n"}, nil
		},
	}

	engine := NewEngineForTests("ffmpeg", "ffprobe", runner)
	if _, err := engine.Load(context.Background(), "/music/cover.jpg"); err == nil {
		t.Fatal("expected no-audio-stream error")
	}
}

// TestClipExportArgs checks argument assembly for a fully adjusted clip.
func TestClipExportArgs(t *testing.T) {
	engine := NewEngineForTests("ffmpeg", "ffprobe", &fakeRunner{})
	base := &ffmpegClip{engine: engine, source: "/music/in.flac"}

	clip := base.WithSampleRate(44100).WithChannels(1).WithGain(2.5)
	fc, ok := clip.(*ffmpegClip)
	if !ok {
		t.Fatalf("clip type = %T", clip)
	}

	info, _ := formats.Get("mp3")
	args := fc.buildExportArgs("/out/in.mp3", info, ExportOptions{Bitrate: "192k"})

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i /music/in.flac",
		"-ar 44100",
		"-ac 1",
		"-filter:a volume=2.5dB",
		"-c:a libmp3lame",
		"-b:a 192k",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != "/out/in.mp3" {
		t.Fatalf("output path must be last, args = %v", args)
	}

	// The sample rate flag must precede the channel flag, and both must
	// precede the gain filter.
	ar := strings.Index(joined, "-ar")
	ac := strings.Index(joined, "-ac")
	vol := strings.Index(joined, "volume=")
	if !(ar < ac && ac < vol) {
		t.Fatalf("adjustment order wrong: %q", joined)
	}
}

// TestClipWithMethodsDoNotMutateReceiver checks value semantics.
func TestClipWithMethodsDoNotMutateReceiver(t *testing.T) {
	engine := NewEngineForTests("ffmpeg", "ffprobe", &fakeRunner{})
	base := &ffmpegClip{engine: engine, source: "/music/in.wav"}

	_ = base.WithSampleRate(96000)
	_ = base.WithGain(-6)
	if base.sampleRate != 0 || base.hasGain {
		t.Fatalf("receiver mutated: %+v", base)
	}
}

// TestClipExportDefaultBitrateOmitsFlag checks codec-default behavior.
func TestClipExportDefaultBitrateOmitsFlag(t *testing.T) {
	engine := NewEngineForTests("ffmpeg", "ffprobe", &fakeRunner{})
	base := &ffmpegClip{engine: engine, source: "/music/in.wav"}

	info, _ := formats.Get("flac")
	args := base.buildExportArgs("/out/in.flac", info, ExportOptions{})
	if strings.Contains(strings.Join(args, " "), "-b:a") {
		t.Fatalf("lossless export should not set bitrate, args = %v", args)
	}
}
