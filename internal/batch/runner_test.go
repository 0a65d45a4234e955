package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"audio-convert/internal/convert"
	"audio-convert/internal/formats"
)

// stubClip writes a marker output file on export.
type stubClip struct{}

func (c *stubClip) WithSampleRate(int) convert.Clip { return c }
func (c *stubClip) WithChannels(int) convert.Clip   { return c }
func (c *stubClip) WithGain(float64) convert.Clip   { return c }

func (c *stubClip) Export(ctx context.Context, path string, info formats.Info, opts convert.ExportOptions) error {
	return os.WriteFile(path, []byte("converted"), 0o644)
}

// stubEngine loads every readable input successfully.
type stubEngine struct{}

func (e *stubEngine) Load(ctx context.Context, path string) (convert.Clip, error) {
	return &stubClip{}, nil
}

func newTestRunner() *Runner {
	return NewRunnerForTests(convert.NewConverterWithEngine(&stubEngine{}))
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("pcm"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestRunCountsMixedOutcomes covers the canonical three-file scenario:
// one missing input must not prevent the other two conversions.
func TestRunCountsMixedOutcomes(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "out")
	a := writeInput(t, root, "a.wav")
	b := filepath.Join(root, "b.wav") // never created
	c := writeInput(t, root, "c.wav")

	summary, err := newTestRunner().Run(context.Background(), Request{
		Files:        []string{a, b, c},
		OutputDir:    outDir,
		OutputFormat: "mp3",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	succeeded, failed := summary.Counts()
	if succeeded != 2 || failed != 1 {
		t.Fatalf("counts = (%d, %d), want (2, 1)", succeeded, failed)
	}
	for _, out := range []string{"a.mp3", "c.mp3"} {
		if _, err := os.Stat(filepath.Join(outDir, out)); err != nil {
			t.Fatalf("missing output %s: %v", out, err)
		}
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Path != b {
		t.Fatalf("failures = %+v", summary.Failures)
	}
	if summary.Failures[0].Kind != convert.KindFileAccess {
		t.Fatalf("failure kind = %s", summary.Failures[0].Kind)
	}
}

// TestRunSequentialProgressOrdering checks job i callbacks precede job i+1.
func TestRunSequentialProgressOrdering(t *testing.T) {
	root := t.TempDir()
	files := []string{
		writeInput(t, root, "1.wav"),
		writeInput(t, root, "2.wav"),
		writeInput(t, root, "3.wav"),
	}

	var indices []int
	summary, err := newTestRunner().Run(context.Background(), Request{
		Files:        files,
		OutputDir:    filepath.Join(root, "out"),
		OutputFormat: "flac",
	}, func(index int, fraction float64) {
		indices = append(indices, index)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Succeeded != 3 {
		t.Fatalf("succeeded = %d", summary.Succeeded)
	}

	if !sort.IntsAreSorted(indices) {
		t.Fatalf("progress indices out of order: %v", indices)
	}
	if indices[len(indices)-1] != 2 {
		t.Fatalf("last index = %d, want 2", indices[len(indices)-1])
	}
}

// TestRunCancelledBeforeStartReturnsSentinel checks pre-cancelled batches.
func TestRunCancelledBeforeStartReturnsSentinel(t *testing.T) {
	root := t.TempDir()
	input := writeInput(t, root, "a.wav")
	outDir := filepath.Join(root, "out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestRunner().Run(ctx, Request{
		Files:        []string{input},
		OutputDir:    outDir,
		OutputFormat: "ogg",
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	succeeded, failed := summary.Counts()
	if succeeded != -1 || failed != -1 {
		t.Fatalf("counts = (%d, %d), want sentinel (-1, -1)", succeeded, failed)
	}
	if _, err := os.Stat(filepath.Join(outDir, "a.ogg")); err == nil {
		t.Fatal("no job should have started")
	}
}

// TestRunCancelMidBatchKeepsEarlierOutputs checks cancellation between jobs.
func TestRunCancelMidBatchKeepsEarlierOutputs(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "out")
	files := []string{
		writeInput(t, root, "first.wav"),
		writeInput(t, root, "second.wav"),
		writeInput(t, root, "third.wav"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	summary, err := newTestRunner().Run(ctx, Request{
		Files:        files,
		OutputDir:    outDir,
		OutputFormat: "wav",
	}, func(index int, fraction float64) {
		if index == 1 && fraction == 0.1 {
			cancel()
		}
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !summary.Cancelled {
		t.Fatal("expected cancelled summary")
	}
	if _, err := os.Stat(filepath.Join(outDir, "first.wav")); err != nil {
		t.Fatalf("completed output should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "third.wav")); err == nil {
		t.Fatal("job after the cancel point must not start")
	}
}

// TestRunPoolModeAggregates checks bounded-pool counting with a failure mix.
func TestRunPoolModeAggregates(t *testing.T) {
	root := t.TempDir()
	files := []string{
		writeInput(t, root, "a.wav"),
		filepath.Join(root, "gone.wav"),
		writeInput(t, root, "b.wav"),
		writeInput(t, root, "c.wav"),
	}

	var mu sync.Mutex
	fractions := make(map[int]float64)
	summary, err := newTestRunner().Run(context.Background(), Request{
		Files:        files,
		OutputDir:    filepath.Join(root, "out"),
		OutputFormat: "mp3",
		Workers:      3,
	}, func(index int, fraction float64) {
		mu.Lock()
		fractions[index] = fraction
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Succeeded != 3 || summary.Failed != 1 {
		t.Fatalf("counts = (%d, %d), want (3, 1)", summary.Succeeded, summary.Failed)
	}
	for _, index := range []int{0, 2, 3} {
		if fractions[index] != 1.0 {
			t.Fatalf("job %d final fraction = %v, want 1.0", index, fractions[index])
		}
	}
	if fractions[1] != 0 {
		t.Fatalf("failed job final fraction = %v, want 0", fractions[1])
	}
}

// TestRunRequiresOutputDir checks the programmer-error contract.
func TestRunRequiresOutputDir(t *testing.T) {
	if _, err := newTestRunner().Run(context.Background(), Request{
		Files:        []string{"x.wav"},
		OutputFormat: "mp3",
	}, nil); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

// TestSummaryErrAggregatesFailures checks the single-error view.
func TestSummaryErrAggregatesFailures(t *testing.T) {
	summary := Summary{
		Total:  2,
		Failed: 2,
		Failures: []Failure{
			{Path: "/music/a.wav", Kind: convert.KindFileAccess, Message: "missing"},
			{Path: "/music/b.wav", Kind: convert.KindConversion, Message: "encode failed"},
		},
	}

	err := summary.Err()
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "2 file(s)") || !strings.Contains(msg, "/music/a.wav") {
		t.Fatalf("aggregate message = %q", msg)
	}

	if (Summary{Cancelled: true}).Err() != nil {
		t.Fatal("cancelled summary must not surface an aggregate error")
	}
	if (Summary{Succeeded: 3}).Err() != nil {
		t.Fatal("clean summary must not surface an aggregate error")
	}
}

// TestOutputPathFor checks deterministic destination derivation.
func TestOutputPathFor(t *testing.T) {
	got := OutputPathFor("/music/in/My Song.flac", "/music/out", "mp3")
	want := filepath.Join("/music/out", "My Song.mp3")
	if got != want {
		t.Fatalf("OutputPathFor = %q, want %q", got, want)
	}
}
