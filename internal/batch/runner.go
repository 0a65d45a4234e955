// Package batch drives lists of conversion jobs, aggregating per-file
// outcomes and honoring cooperative cancellation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"audio-convert/internal/convert"
	"audio-convert/internal/formats"
)

// interJobYield is the voluntary pause between sequential jobs so a host
// event loop can interleave cancellation checks and UI updates.
const interJobYield = 10 * time.Millisecond

// Params are the per-batch parameter overrides shared by every job.
type Params struct {
	Bitrate    string
	SampleRate int
	Channels   int
	GainDB     float64
}

// Request describes one batch invocation. Workers <= 1 selects the
// sequential mode with in-order progress; larger values fan jobs out
// across a bounded pool with no inter-job ordering guarantees.
type Request struct {
	Files        []string
	OutputDir    string
	OutputFormat string
	Params       Params
	Workers      int
}

// Progress receives (job index, fraction in [0,1]) at each checkpoint.
// In pool mode it may be called from multiple goroutines.
type Progress func(index int, fraction float64)

// Failure records one file that did not convert.
type Failure struct {
	Path    string       `json:"path"`
	Kind    convert.Kind `json:"kind"`
	Message string       `json:"message"`
}

// Summary is the aggregate outcome of a batch.
type Summary struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Cancelled bool      `json:"cancelled"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Counts returns the classic (succeeded, failed) pair, with the (-1, -1)
// sentinel standing in for "batch was cancelled".
func (s Summary) Counts() (int, int) {
	if s.Cancelled {
		return -1, -1
	}
	return s.Succeeded, s.Failed
}

// Err collapses recorded failures into a single aggregate error for
// callers that prefer one error over per-file handling. It returns nil
// for clean or cancelled batches.
func (s Summary) Err() error {
	if s.Cancelled || len(s.Failures) == 0 {
		return nil
	}
	return &Error{Failures: s.Failures}
}

// Error aggregates the failed files of one batch.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "batch failed"
	}
	paths := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		paths = append(paths, failure.Path)
	}
	return fmt.Sprintf("%d file(s) failed to convert: %s", len(e.Failures), strings.Join(paths, ", "))
}

// Runner executes batches against a Converter. A Runner holds no state
// across batches; construct one per application, call Run per batch.
type Runner struct {
	conv  *convert.Converter
	yield time.Duration
}

// NewRunner builds a runner around the given converter.
func NewRunner(conv *convert.Converter) *Runner {
	return &Runner{conv: conv, yield: interJobYield}
}

// NewRunnerForTests builds a runner without the inter-job yield.
func NewRunnerForTests(conv *convert.Converter) *Runner {
	return &Runner{conv: conv}
}

// Run converts every file in the request. Individual failures are counted
// and recorded but never abort the remaining batch; the returned error is
// reserved for conditions that invalidate the whole run, such as an
// unusable output directory.
func (r *Runner) Run(ctx context.Context, req Request, onProgress Progress) (Summary, error) {
	if strings.TrimSpace(req.OutputDir) == "" {
		return Summary{}, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	jobs := buildJobs(req)
	if req.Workers > 1 {
		return r.runPool(ctx, jobs, req.Workers, onProgress), nil
	}
	return r.runSequential(ctx, jobs, onProgress), nil
}

// buildJobs derives one job per input file with the deterministic output
// path <outputDir>/<input base name>.<format extension>.
func buildJobs(req Request) []convert.Job {
	jobs := make([]convert.Job, 0, len(req.Files))
	for _, inputPath := range req.Files {
		jobs = append(jobs, convert.Job{
			InputPath:    inputPath,
			OutputPath:   OutputPathFor(inputPath, req.OutputDir, req.OutputFormat),
			OutputFormat: req.OutputFormat,
			Bitrate:      req.Params.Bitrate,
			SampleRate:   req.Params.SampleRate,
			Channels:     req.Params.Channels,
			GainDB:       req.Params.GainDB,
		})
	}
	return jobs
}

// OutputPathFor returns the destination path for one input file.
func OutputPathFor(inputPath, outputDir, formatID string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+formats.ExtensionFor(formatID))
}

// runSequential processes jobs in list order on the calling goroutine.
// Progress callbacks for job i always precede those for job i+1.
func (r *Runner) runSequential(ctx context.Context, jobs []convert.Job, onProgress Progress) Summary {
	summary := Summary{Total: len(jobs)}

	for i, job := range jobs {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		err := r.conv.Convert(ctx, job, jobProgress(onProgress, i))
		if ctx.Err() != nil {
			// The in-flight job was interrupted; its output is unreliable
			// and it counts as neither success nor failure.
			summary.Cancelled = true
			break
		}
		r.record(&summary, job, err)

		if r.yield > 0 && i < len(jobs)-1 {
			time.Sleep(r.yield)
		}
	}

	return summary
}

// runPool fans jobs out across a bounded worker pool. Only the final
// aggregate counts are deterministic, not the interleaving of callbacks.
func (r *Runner) runPool(ctx context.Context, jobs []convert.Job, workers int, onProgress Progress) Summary {
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type indexedJob struct {
		index int
		job   convert.Job
	}

	jobCh := make(chan indexedJob)
	summary := Summary{Total: len(jobs)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobCh {
				if ctx.Err() != nil {
					continue
				}
				err := r.conv.Convert(ctx, item.job, jobProgress(onProgress, item.index))
				if ctx.Err() != nil {
					continue
				}
				mu.Lock()
				r.record(&summary, item.job, err)
				mu.Unlock()
			}
		}()
	}

enqueue:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			break enqueue
		case jobCh <- indexedJob{index: i, job: job}:
		}
	}
	close(jobCh)
	wg.Wait()

	if ctx.Err() != nil {
		summary.Cancelled = true
	}
	return summary
}

// record tallies one finished job under the summary.
func (r *Runner) record(summary *Summary, job convert.Job, err error) {
	if err == nil {
		summary.Succeeded++
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	summary.Failed++
	summary.Failures = append(summary.Failures, Failure{
		Path:    job.InputPath,
		Kind:    convert.KindOf(err),
		Message: err.Error(),
	})
}

// jobProgress scopes the caller's progress sink to one job index.
func jobProgress(onProgress Progress, index int) func(float64) {
	if onProgress == nil {
		return nil
	}
	return func(fraction float64) {
		onProgress(index, fraction)
	}
}
