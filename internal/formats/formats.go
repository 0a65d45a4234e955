// Package formats holds the closed registry of supported output formats
// and their encoding constraints.
package formats

import (
	"path/filepath"
	"sort"
	"strings"
)

// Info describes one supported audio format.
type Info struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Extension   string   `json:"extension"`
	MIMEType    string   `json:"mimeType"`
	Lossy       bool     `json:"lossy"`
	// DefaultBitrate is empty for lossless formats; for lossy formats it is
	// used when the caller does not request a bitrate.
	DefaultBitrate string   `json:"defaultBitrate,omitempty"`
	Bitrates       []string `json:"bitrates,omitempty"`
	SampleRates    []int    `json:"sampleRates,omitempty"`
}

var registry = map[string]Info{
	"mp3": {
		ID:             "mp3",
		Name:           "MP3",
		Description:    "MPEG-1 Audio Layer III",
		Extension:      ".mp3",
		MIMEType:       "audio/mpeg",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k", "320k"},
		SampleRates:    []int{44100, 48000},
	},
	"wav": {
		ID:          "wav",
		Name:        "WAV",
		Description: "Waveform Audio File Format",
		Extension:   ".wav",
		MIMEType:    "audio/wav",
		SampleRates: []int{44100, 48000, 96000, 192000},
	},
	"flac": {
		ID:          "flac",
		Name:        "FLAC",
		Description: "Free Lossless Audio Codec",
		Extension:   ".flac",
		MIMEType:    "audio/flac",
		SampleRates: []int{44100, 48000, 96000, 192000},
	},
	"aac": {
		ID:             "aac",
		Name:           "AAC",
		Description:    "Advanced Audio Coding",
		Extension:      ".aac",
		MIMEType:       "audio/aac",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k"},
		SampleRates:    []int{44100, 48000},
	},
	"ogg": {
		ID:             "ogg",
		Name:           "OGG",
		Description:    "Ogg Vorbis",
		Extension:      ".ogg",
		MIMEType:       "audio/ogg",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k", "320k"},
		SampleRates:    []int{44100, 48000},
	},
	"m4a": {
		ID:             "m4a",
		Name:           "M4A",
		Description:    "MPEG-4 Audio",
		Extension:      ".m4a",
		MIMEType:       "audio/m4a",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k"},
		SampleRates:    []int{44100, 48000},
	},
	"wma": {
		ID:             "wma",
		Name:           "WMA",
		Description:    "Windows Media Audio",
		Extension:      ".wma",
		MIMEType:       "audio/x-ms-wma",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k"},
		SampleRates:    []int{44100, 48000},
	},
	"aiff": {
		ID:          "aiff",
		Name:        "AIFF",
		Description: "Audio Interchange File Format",
		Extension:   ".aiff",
		MIMEType:    "audio/aiff",
		SampleRates: []int{44100, 48000, 96000},
	},
	"ape": {
		ID:          "ape",
		Name:        "APE",
		Description: "Monkey's Audio",
		Extension:   ".ape",
		MIMEType:    "audio/ape",
		SampleRates: []int{44100, 48000, 96000},
	},
	"ac3": {
		ID:             "ac3",
		Name:           "AC3",
		Description:    "Audio Codec 3",
		Extension:      ".ac3",
		MIMEType:       "audio/ac3",
		Lossy:          true,
		DefaultBitrate: "192k",
		Bitrates:       []string{"128k", "192k", "256k", "384k", "448k"},
		SampleRates:    []int{44100, 48000},
	},
}

// ChannelOptions lists the channel layouts offered in the UI.
var ChannelOptions = []int{1, 2}

// IsSupported reports whether id names a supported output format.
func IsSupported(id string) bool {
	_, ok := registry[normalize(id)]
	return ok
}

// Get returns format details for id.
func Get(id string) (Info, bool) {
	info, ok := registry[normalize(id)]
	return info, ok
}

// ExtensionFor returns the file extension for id, including the leading dot.
// Unknown ids fall back to ".<id>" so callers can still build a path.
func ExtensionFor(id string) string {
	if info, ok := registry[normalize(id)]; ok {
		return info.Extension
	}
	return "." + normalize(id)
}

// DetectFromPath maps a file name to a format id by extension.
func DetectFromPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	for id, info := range registry {
		if info.Extension == ext {
			return id, true
		}
	}
	// .aif is a common spelling for AIFF files.
	if ext == ".aif" {
		return "aiff", true
	}
	return "", false
}

// All returns every supported format sorted by id.
func All() []Info {
	out := make([]Info, 0, len(registry))
	for _, info := range registry {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
