package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV encodes a silent PCM WAV file and returns its path.
func writeTestWAV(t *testing.T, sampleRate, channels, seconds int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}

	encoder := wav.NewEncoder(file, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, sampleRate*channels*seconds),
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

// TestInspectWAV checks header decoding for a PCM WAV file.
func TestInspectWAV(t *testing.T) {
	path := writeTestWAV(t, 8000, 2, 1)

	info := Inspect(path)
	if info.Format != "wav" {
		t.Fatalf("format = %q, want wav", info.Format)
	}
	if info.SampleRate != 8000 || info.Channels != 2 {
		t.Fatalf("rate/channels = %d/%d, want 8000/2", info.SampleRate, info.Channels)
	}
	if info.Seconds < 0.9 || info.Seconds > 1.1 {
		t.Fatalf("seconds = %f, want about 1", info.Seconds)
	}
	if info.SizeBytes == 0 || info.SizeLabel == "" {
		t.Fatalf("size missing: %+v", info)
	}
}

// TestInspectMissingFile checks the graceful degradation path.
func TestInspectMissingFile(t *testing.T) {
	info := Inspect(filepath.Join(t.TempDir(), "nope.mp3"))
	if info.Format != "mp3" {
		t.Fatalf("format = %q, want mp3 from extension", info.Format)
	}
	if info.Name != "nope.mp3" {
		t.Fatalf("name = %q", info.Name)
	}
	if info.SizeBytes != 0 || info.SampleRate != 0 {
		t.Fatalf("expected empty metadata, got %+v", info)
	}
}

// TestInspectUndecodableFile checks that junk bytes still yield basics.
func TestInspectUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	info := Inspect(path)
	if info.Format != "wav" || info.SizeBytes == 0 {
		t.Fatalf("info = %+v", info)
	}
	if info.SampleRate != 0 || info.Seconds != 0 {
		t.Fatalf("expected no decoded metadata, got %+v", info)
	}
}

// TestInspectAllPreservesOrder checks the batch helper.
func TestInspectAllPreservesOrder(t *testing.T) {
	a := writeTestWAV(t, 8000, 1, 1)
	b := filepath.Join(t.TempDir(), "b.flac")

	infos := InspectAll([]string{a, b})
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	if infos[0].Path != a || infos[1].Path != b {
		t.Fatalf("order broken: %+v", infos)
	}
	if infos[1].Format != "flac" {
		t.Fatalf("format = %q, want flac", infos[1].Format)
	}
}
