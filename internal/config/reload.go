package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ManuGH/ratesd/internal/log"
)

// Holder keeps the current configuration and supports hot reload from the
// config file. Reload replaces the snapshot atomically; readers always see
// a complete configuration.
type Holder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	path    string

	onReload []func(AppConfig)
}

// NewHolder creates a holder seeded with cfg.
func NewHolder(cfg AppConfig, loader *Loader, path string) *Holder {
	return &Holder{current: cfg, loader: loader, path: path}
}

// Current returns the active configuration.
func (h *Holder) Current() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// OnReload registers a callback invoked after every successful reload.
func (h *Holder) OnReload(fn func(AppConfig)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReload = append(h.onReload, fn)
}

// Reload re-runs the loader and swaps the active configuration.
// A failed load keeps the previous configuration active.
func (h *Holder) Reload(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "config")

	cfg, err := h.loader.Load()
	if err != nil {
		logger.Error().Err(err).Str("event", "config.reload_failed").Msg("keeping previous configuration")
		return fmt.Errorf("config: reload: %w", err)
	}

	h.mu.Lock()
	h.current = cfg
	callbacks := make([]func(AppConfig), len(h.onReload))
	copy(callbacks, h.onReload)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}

	logger.Info().Str("event", "config.reloaded").Str("path", h.path).Msg("configuration reloaded")
	return nil
}

// Watch observes the config file and reloads on changes until ctx is done.
// Editors replace files rather than writing in place, so the watch is on
// the parent directory and filtered by name.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	logger := log.WithComponent("config")
	logger.Info().Str("path", h.path).Msg("watching config file for changes")

	// Debounce bursts of events from editors that write multiple times.
	var timer *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(h.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			if err := h.Reload(ctx); err != nil {
				logger.Warn().Err(err).Msg("hot reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}
