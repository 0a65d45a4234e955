package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"audio-convert/internal/formats"
)

// CollectFiles gathers the audio files under dir whose extension matches
// the supported format set. With recursive false only the top level is
// scanned. Results come back in lexical walk order.
func CollectFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a folder: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := formats.DetectFromPath(entry.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan input folder: %w", err)
	}

	return files, nil
}
