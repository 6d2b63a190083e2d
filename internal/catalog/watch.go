package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to catalog files under a directory tree.
// Bursts of events inside Interval are coalesced into one callback.
type Watcher struct {
	Dirs     []string
	Interval time.Duration
	onChange func(string) // called with the last path that changed
	logger   *slog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// NewWatcher watches root and root/banners for YAML changes.
func NewWatcher(root string, interval time.Duration, onChange func(string), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dirs := []string{root, filepath.Join(root, "banners")}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}
	return &Watcher{
		Dirs:     dirs,
		Interval: interval,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins delivering events in a goroutine until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isCatalogFile(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.Interval)
			} else {
				timer.Reset(w.Interval)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.logger.Info("catalog changed", "path", pending)
			if w.onChange != nil {
				w.onChange(pending)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
