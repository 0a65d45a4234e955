package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"audio-convert/internal/batch"
	"audio-convert/internal/config"
	"audio-convert/internal/convert"
	"audio-convert/internal/formats"
	"audio-convert/internal/history"
)

const progressResolution = 1000

func newConvertCommand() *cobra.Command {
	var (
		dir        string
		recursive  bool
		format     string
		outputDir  string
		bitrate    string
		sampleRate int
		channels   int
		gainDB     float64
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert audio files to another format",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if dir != "" {
				collected, err := batch.CollectFiles(dir, recursive)
				if err != nil {
					return err
				}
				files = append(files, collected...)
			}
			if len(files) == 0 {
				return fmt.Errorf("no input files: pass file paths or --dir")
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("format") {
				settings.OutputFormat = strings.ToLower(strings.TrimSpace(format))
			}
			if flags.Changed("output") {
				settings.OutputDir = outputDir
			}
			if flags.Changed("bitrate") {
				settings.Bitrate = bitrate
			}
			if flags.Changed("sample-rate") {
				settings.SampleRate = sampleRate
			}
			if flags.Changed("channels") {
				settings.Channels = channels
			}
			if flags.Changed("gain") {
				settings.GainDB = gainDB
			}
			if flags.Changed("workers") {
				settings.Workers = workers
			}

			if !formats.IsSupported(settings.OutputFormat) {
				return fmt.Errorf("unsupported output format: %s", settings.OutputFormat)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runner := batch.NewRunner(convert.NewConverter())

			bar := progressbar.NewOptions(progressResolution,
				progressbar.OptionSetDescription(fmt.Sprintf("converting %d file(s)", len(files))),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionClearOnFinish(),
			)

			total := len(files)
			var progressMu sync.Mutex
			fractions := make([]float64, total)

			summary, err := runner.Run(ctx, batch.Request{
				Files:        files,
				OutputDir:    settings.OutputDir,
				OutputFormat: settings.OutputFormat,
				Params: batch.Params{
					Bitrate:    settings.Bitrate,
					SampleRate: settings.SampleRate,
					Channels:   settings.Channels,
					GainDB:     settings.GainDB,
				},
				Workers: settings.Workers,
			}, func(index int, fraction float64) {
				progressMu.Lock()
				fractions[index] = fraction
				var sum float64
				for _, f := range fractions {
					sum += f
				}
				progressMu.Unlock()
				_ = bar.Set(int(sum / float64(total) * progressResolution))
			})
			_ = bar.Clear()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.Cancelled {
				fmt.Fprintln(out, "Conversion cancelled")
				return context.Canceled
			}

			recordRun(files, settings, summary)

			if len(summary.Failures) > 0 {
				rows := make([][]string, 0, len(summary.Failures))
				for _, failure := range summary.Failures {
					rows = append(rows, []string{failure.Path, string(failure.Kind), failure.Message})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"File", "Kind", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			fmt.Fprintf(out, "%d succeeded, %d failed (output: %s, %s written)\n",
				summary.Succeeded, summary.Failed, settings.OutputDir,
				humanize.Bytes(outputSize(files, settings.OutputDir, settings.OutputFormat)))

			return summary.Err()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Convert every supported file in this directory")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories of --dir")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format id (mp3, wav, flac, ...)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	cmd.Flags().StringVarP(&bitrate, "bitrate", "b", "", "Target bitrate, e.g. 192k (empty for codec default)")
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, "Target sample rate in Hz (0 keeps the source rate)")
	cmd.Flags().IntVar(&channels, "channels", 0, "Target channel count (0 keeps the source layout)")
	cmd.Flags().Float64Var(&gainDB, "gain", 0, "Gain adjustment in dB")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversions (1 for sequential)")

	return cmd
}

// outputSize sums the sizes of the files this run produced.
func outputSize(files []string, outputDir, formatID string) uint64 {
	var total uint64
	for _, inputPath := range files {
		info, err := os.Stat(batch.OutputPathFor(inputPath, outputDir, formatID))
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total
}

// recordRun persists per-file outcomes, mirroring the desktop app.
func recordRun(files []string, settings settingsWithHome, summary batch.Summary) {
	if !settings.KeepHistory {
		return
	}

	store, err := history.Open(config.HistoryPath(settings.homeDir))
	if err != nil {
		return
	}
	defer store.Close()

	failedPaths := make(map[string]string, len(summary.Failures))
	for _, failure := range summary.Failures {
		failedPaths[failure.Path] = failure.Message
	}

	batchID := uuid.NewString()
	entries := make([]history.Entry, 0, len(files))
	for _, inputPath := range files {
		entry := history.Entry{
			BatchID:   batchID,
			InputPath: inputPath,
			Format:    settings.OutputFormat,
			Status:    history.StatusSuccess,
		}
		if message, isFailed := failedPaths[inputPath]; isFailed {
			entry.Status = history.StatusFailed
			entry.Message = message
		} else {
			entry.OutputPath = batch.OutputPathFor(inputPath, settings.OutputDir, settings.OutputFormat)
		}
		entries = append(entries, entry)
	}

	ctx := context.Background()
	if err := store.Record(ctx, entries); err != nil {
		return
	}
	if settings.MaxHistory > 0 {
		_ = store.Prune(ctx, settings.MaxHistory)
	}
}
