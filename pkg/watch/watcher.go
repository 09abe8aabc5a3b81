// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package watch re-runs a callback when a definitions file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of writes into a single reload.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc is called after the watched file changes.
type ReloadFunc func(ctx context.Context, path string) error

// FileWatcher watches a single file and calls its reload function once per
// burst of changes.
type FileWatcher struct {
	path    string
	reload  ReloadFunc
	watcher *fsnotify.Watcher

	debounce time.Duration
	logger   zerolog.Logger

	// mu protects timer
	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the delay between the last change and the reload.
// Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger used by the watcher.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *FileWatcher) {
		w.logger = logger.With().Str("component", "watch").Logger()
	}
}

// New creates a watcher for path. Watching starts with Start.
func New(path string, reload ReloadFunc, opts ...Option) (*FileWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FileWatcher{
		path:     path,
		reload:   reload,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches the file until ctx is canceled or the watcher is closed.
//
// fsnotify watches directories, so the parent directory is added and events
// for other files are ignored. Editors that replace the file on save emit a
// create, which is treated like a write.
func (w *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)

	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error().Err(err).Str("dir", dir).Msg("Failed to watch directory")
		return err
	}

	w.logger.Info().Str("file", w.path).Dur("debounce", w.debounce).Msg("Started watching file")

	defer func() {
		w.stopTimer()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Info().Msg("Stopped watching file")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.logger.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("Detected file change")
				w.schedule(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// schedule resets the debounce timer.
func (w *FileWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.reload(ctx, w.path); err != nil {
			w.logger.Error().Err(err).Str("file", w.path).Msg("Reload failed")
			return
		}
		w.logger.Info().Str("file", w.path).Msg("Reloaded")
	})
}

func (w *FileWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops the watcher and releases resources.
func (w *FileWatcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
