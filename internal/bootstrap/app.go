package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"audio-convert/internal/batch"
	"audio-convert/internal/config"
	"audio-convert/internal/convert"
	"audio-convert/internal/diagnostics"
	"audio-convert/internal/domain"
	"audio-convert/internal/formats"
	"audio-convert/internal/history"
	"audio-convert/internal/jobs"
	"audio-convert/internal/probe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// audioDialogFilter lists every decodable extension for the open dialog.
func audioDialogFilter() []wailsruntime.FileFilter {
	patterns := make([]string, 0, len(formats.All()))
	for _, info := range formats.All() {
		patterns = append(patterns, "*"+info.Extension)
	}

	return []wailsruntime.FileFilter{
		{
			DisplayName: "Audio files",
			Pattern:     strings.Join(patterns, ";"),
		},
		{
			DisplayName: "All files",
			Pattern:     "*",
		},
	}
}

// App wires configuration, batch execution, history, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Runner      batchRunner
	Diagnostics domain.DiagnosticReport
	History     historyStore
	assets      fs.FS
	checker     *diagnostics.Checker

	mu            sync.Mutex
	activeBatchID string
	cancel        context.CancelFunc
	events        *jobs.EventBus
	runtimeCtx    context.Context
}

// batchRunner isolates batch execution behind an interface.
type batchRunner interface {
	Run(ctx context.Context, req batch.Request, onProgress batch.Progress) (batch.Summary, error)
}

// historyStore isolates history persistence behind an interface.
type historyStore interface {
	Record(ctx context.Context, entries []history.Entry) error
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Prune(ctx context.Context, max int) error
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return nil, fmt.Errorf("prepare local tool path: %w", err)
	}

	store := config.NewJSONStore(config.SettingsPath(homeDir))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	historyDB, err := history.Open(config.HistoryPath(homeDir))
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Runner:      batch.NewRunner(convert.NewConverter()),
		Diagnostics: report,
		History:     historyDB,
		assets:      assets,
		checker:     checker,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Audio Convert",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// ListFormats returns all supported output formats for the format picker.
func (a *App) ListFormats() []formats.Info {
	return formats.All()
}

// PickInputFiles opens a native multi-select dialog for audio files.
func (a *App) PickInputFiles() ([]string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return nil, err
	}

	paths, err := wailsruntime.OpenMultipleFilesDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select audio files",
		Filters: audioDialogFilter(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// PickInputFolder opens a native directory picker for folder conversion.
func (a *App) PickInputFolder() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select folder with audio files",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for converted files.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// InspectFiles returns display metadata for the given paths.
func (a *App) InspectFiles(paths []string) []domain.FileInfo {
	return probe.InspectAll(paths)
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	return a.Diagnostics, nil
}

// StartBatch creates a batch over the given files and runs it asynchronously.
func (a *App) StartBatch(paths []string) (domain.Batch, error) {
	if len(paths) == 0 {
		return domain.Batch{}, fmt.Errorf("no input files selected")
	}
	return a.startBatch(paths)
}

// StartFolder collects audio files under dir and runs them as one batch.
func (a *App) StartFolder(dir string, recursive bool) (domain.Batch, error) {
	files, err := batch.CollectFiles(dir, recursive)
	if err != nil {
		return domain.Batch{}, err
	}
	if len(files) == 0 {
		return domain.Batch{}, fmt.Errorf("no supported audio files in %s", dir)
	}
	return a.startBatch(files)
}

func (a *App) startBatch(files []string) (domain.Batch, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Batch{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	batchID := uuid.NewString()
	if err := a.Jobs.Start(batchID, len(files)); err != nil {
		return domain.Batch{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeBatchID = batchID
	a.cancel = cancel
	a.Settings = settings
	a.mu.Unlock()

	a.publishStatus(batchID, domain.BatchStatusPreparing, fmt.Sprintf("Batch started with %d file(s)", len(files)))

	go a.runBatch(ctx, batchID, files, settings)
	return a.Jobs.Current(), nil
}

// CancelBatch cancels the currently running batch, if any.
func (a *App) CancelBatch() error {
	a.mu.Lock()
	cancel := a.cancel
	activeBatchID := a.activeBatchID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningBatch
	}

	cancel()
	if err := a.Jobs.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningBatch) {
		return err
	}

	if activeBatchID != "" {
		a.publishStatus(activeBatchID, domain.BatchStatusCancelled, "Cancellation requested")
	}
	return nil
}

// CurrentBatch returns current batch metadata and status.
func (a *App) CurrentBatch() domain.Batch {
	return a.Jobs.Current()
}

// BatchEvents returns all events with sequence greater than sinceSeq.
func (a *App) BatchEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// RecentHistory returns the newest recorded conversions.
func (a *App) RecentHistory(limit int) ([]history.Entry, error) {
	if a.History == nil {
		return nil, nil
	}
	return a.History.Recent(context.Background(), limit)
}

// runBatch executes the batch and maps outcomes to events and history.
func (a *App) runBatch(ctx context.Context, batchID string, files []string, settings domain.Settings) {
	if err := a.Jobs.Transition(domain.BatchStatusConverting); err == nil {
		a.publishStatus(batchID, domain.BatchStatusConverting, "Converting files")
	}

	total := len(files)
	var progressMu sync.Mutex
	fractions := make([]float64, total)

	summary, err := a.Runner.Run(ctx, batch.Request{
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
		overall := sum / float64(total)
		progressMu.Unlock()

		a.publishEvent(jobs.Event{
			BatchID:   batchID,
			Type:      jobs.EventTypeProgress,
			FileIndex: index,
			Fraction:  fraction,
			Overall:   overall,
			Path:      files[index],
		})
	})
	if err != nil {
		_ = a.Jobs.Transition(domain.BatchStatusFailed)
		a.publishStatus(batchID, domain.BatchStatusFailed, "Batch failed")
		a.publishEvent(jobs.Event{
			BatchID: batchID,
			Type:    jobs.EventTypeError,
			Status:  domain.BatchStatusFailed,
			Message: err.Error(),
		})
		a.clearActiveBatch(batchID)
		return
	}

	succeeded, failed := summary.Counts()
	a.Jobs.SetCounts(succeeded, failed)

	if summary.Cancelled {
		_ = a.Jobs.Transition(domain.BatchStatusCancelled)
		a.publishStatus(batchID, domain.BatchStatusCancelled, "Batch cancelled")
		a.clearActiveBatch(batchID)
		return
	}

	for _, failure := range summary.Failures {
		a.publishEvent(jobs.Event{
			BatchID: batchID,
			Type:    jobs.EventTypeError,
			Message: failure.Message,
			Path:    failure.Path,
		})
	}

	a.recordHistory(batchID, files, settings, summary)

	if err := a.Jobs.Transition(domain.BatchStatusDone); err == nil {
		a.publishStatus(batchID, domain.BatchStatusDone, "Batch completed")
	}
	a.publishEvent(jobs.Event{
		BatchID:   batchID,
		Type:      jobs.EventTypeResult,
		Status:    domain.BatchStatusDone,
		Message:   fmt.Sprintf("%d succeeded, %d failed", summary.Succeeded, summary.Failed),
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	})
	a.clearActiveBatch(batchID)
}

// recordHistory persists per-file outcomes for completed batches.
func (a *App) recordHistory(batchID string, files []string, settings domain.Settings, summary batch.Summary) {
	if a.History == nil || !settings.KeepHistory {
		return
	}

	failedPaths := make(map[string]string, len(summary.Failures))
	for _, failure := range summary.Failures {
		failedPaths[failure.Path] = failure.Message
	}

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
	if err := a.History.Record(ctx, entries); err != nil {
		a.publishEvent(jobs.Event{
			BatchID: batchID,
			Type:    jobs.EventTypeError,
			Message: fmt.Sprintf("record history: %v", err),
		})
		return
	}
	if settings.MaxHistory > 0 {
		if err := a.History.Prune(ctx, settings.MaxHistory); err != nil {
			a.publishEvent(jobs.Event{
				BatchID: batchID,
				Type:    jobs.EventTypeError,
				Message: fmt.Sprintf("prune history: %v", err),
			})
		}
	}
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(batchID string, status domain.BatchStatus, message string) {
	a.publishEvent(jobs.Event{
		BatchID: batchID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "batch:event", published)
	}
}

// clearActiveBatch clears cancellation handles for finished batch IDs.
func (a *App) clearActiveBatch(batchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeBatchID == batchID {
		a.activeBatchID = ""
		a.cancel = nil
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims inputs and backfills unusable values with defaults.
func normalizeSettings(settings domain.Settings) domain.Settings {
	defaults := config.DefaultSettings()

	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.OutputFormat = strings.ToLower(strings.TrimSpace(settings.OutputFormat))
	settings.Bitrate = strings.TrimSpace(settings.Bitrate)

	if !formats.IsSupported(settings.OutputFormat) {
		settings.OutputFormat = defaults.OutputFormat
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	if settings.MaxHistory < 0 {
		settings.MaxHistory = defaults.MaxHistory
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
