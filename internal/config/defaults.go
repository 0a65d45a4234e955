package config

import (
	"os"
	"path/filepath"
	"runtime"

	"audio-convert/internal/domain"
)

// AppDirName is the per-user dot directory holding settings and history.
const AppDirName = ".audio-convert"

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		OutputDir:    filepath.Join(homeDir, "Music", "Converted"),
		OutputFormat: "mp3",
		Bitrate:      "320k",
		SampleRate:   44100,
		Channels:     2,
		Workers:      runtime.NumCPU(),
		KeepHistory:  true,
		MaxHistory:   100,
	}
}

// SettingsPath returns the location of the persisted settings file.
func SettingsPath(homeDir string) string {
	return filepath.Join(homeDir, AppDirName, "settings.json")
}

// HistoryPath returns the location of the conversion history database.
func HistoryPath(homeDir string) string {
	return filepath.Join(homeDir, AppDirName, "history.db")
}
