package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// pickDirectory walks the current directory and lets the user fuzzy-pick
// the directory to analyze. Returns "" when the user aborts.
func pickDirectory() (string, error) {
	candidates := []string{"."}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries just don't show up in the picker.
			return nil
		}
		if path == "." || !d.IsDir() {
			return nil
		}
		if _, ok := excludedDirs[d.Name()]; ok {
			return fs.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error scanning for directories: %w", err)
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the directory to analyze. Enter to confirm, Esc to abort."
			}
			path := candidates[i]
			entries, readErr := os.ReadDir(path)
			if readErr != nil {
				return fmt.Sprintf("Path: %s\nError reading directory: %v", path, readErr)
			}
			files, dirs := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirs++
				} else {
					files++
				}
			}
			return fmt.Sprintf("Path: %s\nEntries: %d files, %d directories", path, files, dirs)
		}),
	)
	if err != nil {
		if err == fuzzyfinder.ErrAbort { // User pressed Esc or Ctrl+C
			return "", nil
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return candidates[idx], nil
}
