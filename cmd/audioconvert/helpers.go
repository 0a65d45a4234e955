package main

import (
	"fmt"
	"os"

	"audio-convert/internal/config"
	"audio-convert/internal/domain"
)

// settingsWithHome bundles persisted settings with the resolved home
// directory so commands can derive per-user paths from it.
type settingsWithHome struct {
	domain.Settings
	homeDir string
}

func loadSettings() (settingsWithHome, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return settingsWithHome{}, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(config.SettingsPath(homeDir))
	settings, err := store.Load()
	if err != nil {
		return settingsWithHome{}, fmt.Errorf("load settings: %w", err)
	}

	return settingsWithHome{Settings: settings, homeDir: homeDir}, nil
}
