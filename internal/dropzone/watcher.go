package dropzone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/elacheck/internal/logger"
)

// DefaultDelay is how long the folder must stay quiet before a drop is
// delivered. Copies land as a Create followed by several Writes.
const DefaultDelay = 300 * time.Millisecond

// Watcher turns files landing in a directory into dropped paths.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	drops   chan string
	log     *logger.Logger

	debounced func(func())

	closeOnce sync.Once
}

// New starts watching dir. The directory must exist.
func New(dir string, delay time.Duration, log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Discard()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access drop folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop folder %s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		cleanupWatcher(fw, log)
		return nil, fmt.Errorf("failed to watch drop folder: %w", err)
	}

	return &Watcher{
		dir:       dir,
		watcher:   fw,
		drops:     make(chan string, 1),
		log:       log.WithComponent("dropzone"),
		debounced: debounce.New(delay),
	}, nil
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}

// Drops delivers dropped file paths. Only the latest pending drop is kept.
func (w *Watcher) Drops() <-chan string {
	return w.drops
}

// Run processes filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

// Close stops the underlying watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if ignored(event.Name) {
		return
	}

	path := event.Name
	w.log.DebugWithFields("drop folder event", []logger.Field{
		logger.F("path", path),
		logger.F("op", event.Op.String()),
	})
	w.debounced(func() {
		w.deliver(path)
	})
}

// deliver replaces any undelivered drop with path.
func (w *Watcher) deliver(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	for {
		select {
		case w.drops <- path:
			w.log.Info("file dropped: %s", filepath.Base(path))
			return
		default:
		}
		select {
		case <-w.drops:
		default:
		}
	}
}

// ignored reports whether a name is a hidden or partial download file
func ignored(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
		return true
	}
	for _, suffix := range []string{".tmp", ".part", ".crdownload", ".swp"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			return true
		}
	}
	return false
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher, log *logger.Logger) {
	if err := watcher.Close(); err != nil {
		log.Warn("failed to close watcher: %v", err)
	}
}
