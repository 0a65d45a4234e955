package bootstrap

import (
	"fmt"
	"strings"

	"audio-convert/internal/domain"
)

var presetCatalog = []domain.Preset{
	{
		ID:           "mp3-archive",
		Name:         "MP3 Archive",
		Description:  "Highest quality MP3 for long-term listening copies.",
		OutputFormat: "mp3",
		Bitrate:      "320k",
		SampleRate:   44100,
		Channels:     2,
	},
	{
		ID:           "mp3-portable",
		Name:         "MP3 Portable",
		Description:  "Smaller MP3 files for phones and players.",
		OutputFormat: "mp3",
		Bitrate:      "192k",
		SampleRate:   44100,
		Channels:     2,
	},
	{
		ID:           "flac-lossless",
		Name:         "FLAC Lossless",
		Description:  "Bit-exact archival copies with FLAC compression.",
		OutputFormat: "flac",
	},
	{
		ID:           "aac-streaming",
		Name:         "AAC Streaming",
		Description:  "AAC tuned for streaming and Apple devices.",
		OutputFormat: "aac",
		Bitrate:      "256k",
		SampleRate:   44100,
		Channels:     2,
	},
	{
		ID:           "ogg-web",
		Name:         "OGG Web",
		Description:  "Vorbis audio for web playback.",
		OutputFormat: "ogg",
		Bitrate:      "192k",
		SampleRate:   44100,
		Channels:     2,
	},
	{
		ID:           "wav-editing",
		Name:         "WAV Editing",
		Description:  "Uncompressed PCM for editing and mastering.",
		OutputFormat: "wav",
		SampleRate:   48000,
		Channels:     2,
	},
	{
		ID:           "voice-mono",
		Name:         "Voice Mono",
		Description:  "Compact mono MP3 for spoken-word recordings.",
		OutputFormat: "mp3",
		Bitrate:      "96k",
		SampleRate:   22050,
		Channels:     1,
	},
}

// GetPresets returns built-in conversion presets for one-click selection.
func (a *App) GetPresets() []domain.Preset {
	presets := make([]domain.Preset, len(presetCatalog))
	copy(presets, presetCatalog)
	return presets
}

// ApplyPreset copies a preset's parameters into persisted settings.
func (a *App) ApplyPreset(presetID string) (domain.Settings, error) {
	id := strings.TrimSpace(presetID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("preset id is required")
	}

	preset, found := getPresetByID(id)
	if !found {
		return domain.Settings{}, fmt.Errorf("unknown preset id: %s", id)
	}

	if a.Store == nil {
		return domain.Settings{}, fmt.Errorf("settings store is not configured")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	settings.OutputFormat = preset.OutputFormat
	settings.Bitrate = preset.Bitrate
	settings.SampleRate = preset.SampleRate
	settings.Channels = preset.Channels
	settings.GainDB = preset.GainDB

	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	a.mu.Unlock()

	return normalized, nil
}

func getPresetByID(id string) (domain.Preset, bool) {
	for _, preset := range presetCatalog {
		if preset.ID == id {
			return preset, true
		}
	}
	return domain.Preset{}, false
}
