package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chriserin/ploughman/internal/parser"
)

const featureExt = ".feature"

// collectFiles expands directories into the feature files beneath them, in
// lexical order. Files named explicitly are kept whatever their extension.
func collectFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isFeatureFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func isFeatureFile(path string) bool {
	return filepath.Ext(path) == featureExt
}

// loadFeatures collects and parses every feature file under paths. A bad
// path is a usage error.
func loadFeatures(paths []string) ([]string, []parser.Feature, error) {
	files, err := collectFiles(paths)
	if err != nil {
		return nil, nil, usageError(err)
	}
	features, err := parser.ParseFiles(files...)
	if err != nil {
		return files, nil, err
	}
	return files, features, nil
}
