// Package probe inspects candidate input files for the file list UI.
// WAV, AIFF, MP3 and OGG headers are decoded in-process; other formats
// report extension-derived format and size only, leaving full validation
// to the conversion pipeline.
package probe

import (
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"audio-convert/internal/domain"
	"audio-convert/internal/formats"
)

// Inspect returns what can cheaply be learned about one file. It never
// fails: unreadable or undecodable files simply come back with fewer
// fields filled in.
func Inspect(path string) domain.FileInfo {
	info := domain.FileInfo{
		Path: path,
		Name: filepath.Base(path),
	}
	if id, ok := formats.DetectFromPath(path); ok {
		info.Format = id
	}

	stat, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.SizeBytes = stat.Size()
	info.SizeLabel = humanize.Bytes(uint64(stat.Size()))

	file, err := os.Open(path)
	if err != nil {
		return info
	}
	defer file.Close()

	switch info.Format {
	case "wav":
		inspectWAV(file, &info)
	case "aiff":
		inspectAIFF(file, &info)
	case "mp3":
		inspectMP3(file, &info)
	case "ogg":
		inspectOGG(file, &info)
	}

	return info
}

// InspectAll inspects files in order.
func InspectAll(paths []string) []domain.FileInfo {
	out := make([]domain.FileInfo, 0, len(paths))
	for _, path := range paths {
		out = append(out, Inspect(path))
	}
	return out
}

func inspectWAV(file *os.File, info *domain.FileInfo) {
	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return
	}

	info.SampleRate = int(decoder.SampleRate)
	info.Channels = int(decoder.NumChans)
	if duration, err := decoder.Duration(); err == nil {
		info.Seconds = duration.Seconds()
	}
}

func inspectAIFF(file *os.File, info *domain.FileInfo) {
	decoder := aiff.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return
	}

	info.SampleRate = int(decoder.SampleRate)
	info.Channels = int(decoder.NumChans)
	if duration, err := decoder.Duration(); err == nil {
		info.Seconds = duration.Seconds()
	}
}

func inspectMP3(file *os.File, info *domain.FileInfo) {
	decoder, err := gomp3.NewDecoder(file)
	if err != nil {
		return
	}

	info.SampleRate = decoder.SampleRate()
	// go-mp3 always renders 16-bit stereo PCM.
	info.Channels = 2
	if rate := decoder.SampleRate(); rate > 0 {
		info.Seconds = float64(decoder.Length()) / 4 / float64(rate)
	}
}

func inspectOGG(file *os.File, info *domain.FileInfo) {
	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		return
	}

	info.SampleRate = reader.SampleRate()
	info.Channels = reader.Channels()
	if rate := reader.SampleRate(); rate > 0 {
		info.Seconds = float64(reader.Length()) / float64(rate)
	}
}
