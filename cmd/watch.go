package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chriserin/ploughman/internal/steps"
)

// WatchDebounceDelay is how long the watcher waits for changes to settle
// before re-running.
var WatchDebounceDelay = 300 * time.Millisecond

// WatchFeatures runs the suite, then runs it again whenever a feature file
// under opts.Paths changes. Runs happen on this goroutine, so they never
// overlap. It returns when ctx is cancelled or on interrupt.
func WatchFeatures(ctx context.Context, w io.Writer, reg *steps.Registry, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(opts.Paths)
	if err != nil {
		return usageError(err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	runOnce := func() {
		if _, err := RunFeatures(w, reg, opts); err != nil {
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
		}
		fmt.Fprintf(w, "\nWatching for changes... (press Ctrl+C to stop)\n")
	}
	runOnce()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isFeatureFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(WatchDebounceDelay)
			} else {
				timer.Reset(WatchDebounceDelay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fmt.Fprintf(w, "\nChange detected, re-running...\n\n")
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "watcher error: %v\n", err)
		}
	}
}

// watchDirs lists every directory to watch for paths: directories with all
// their subdirectories, and the parent of each file.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
