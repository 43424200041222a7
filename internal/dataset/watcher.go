package dataset

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a data directory and invokes a reload callback when any
// pack file or the tag file changes. Rapid event bursts (editors writing
// in chunks) debounce into one reload.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
}

// NewWatcher creates a watcher for the data directory. onChange runs on
// the watcher goroutine after the debounce window closes.
func NewWatcher(dir string, onChange func()) *Watcher {
	return &Watcher{
		dir:      dir,
		debounce: 500 * time.Millisecond,
		onChange: onChange,
	}
}

// watchedFile reports whether an event path is a dataset fragment we care
// about.
func watchedFile(path string) bool {
	base := filepath.Base(path)
	if base == TagsFile {
		return true
	}
	for _, file := range PackFiles {
		if base == file {
			return true
		}
	}
	return false
}

// Run watches until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Printf("[Watcher] close error: %v", closeErr)
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}

	log.Printf("[Watcher] Monitoring %s for dataset changes...", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !watchedFile(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err := <-watcher.Errors:
			log.Printf("[Watcher] watch error: %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()
		}
	}
}
