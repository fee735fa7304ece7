package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// PromptWatcher reloads a PromptStore when template files change.
type PromptWatcher struct {
	dir    string
	store  driven.PromptStore
	notify func(name string)
}

// WatcherOption configures a PromptWatcher.
type WatcherOption func(*PromptWatcher)

// WithReloadHook is called with the template name after each reload.
func WithReloadHook(fn func(name string)) WatcherOption {
	return func(w *PromptWatcher) {
		w.notify = fn
	}
}

// NewPromptWatcher watches dir and reloads store on changes.
func NewPromptWatcher(dir string, store driven.PromptStore, opts ...WatcherOption) *PromptWatcher {
	w := &PromptWatcher{dir: dir, store: store}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is cancelled.
func (w *PromptWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("watching prompts in %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if name, changed := w.handleEvent(event); changed {
				w.store.Reload()
				logger.Info("prompt %s changed, reloaded", name)
				if w.notify != nil {
					w.notify(name)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// handleEvent reports which template an event touched, if any.
// Hidden files (editor swap files, atomic-write temps) and chmod-only
// events are ignored.
func (w *PromptWatcher) handleEvent(event fsnotify.Event) (string, bool) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != PromptExt {
		return "", false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	return strings.TrimSuffix(base, PromptExt), true
}
