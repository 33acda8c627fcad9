package sapling

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ApplySettingsFile loads a TOML settings file into the document, reloads
// fonts, recalculates and redraws. Every top-level table the file defines
// replaces the stored one, so entries removed from a table are removed from
// the settings too. Top-level keys the file does not define are kept.
func (e *Engine) ApplySettingsFile(ctx context.Context, path string) error {
	_, err := e.applySettingsFile(ctx, path, nil)
	return err
}

// applySettingsFile is ApplySettingsFile that also deletes the top-level
// keys in previous the file no longer defines. It returns the keys the file
// defines now, or previous when the file could not be loaded.
func (e *Engine) applySettingsFile(ctx context.Context, path string, previous []string) ([]string, error) {
	values, err := LoadSettingsFile(path)
	if err != nil {
		return previous, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	for _, k := range previous {
		if _, ok := values[k]; !ok {
			e.doc.Settings.Delete(k)
		}
	}
	e.doc.Settings.Replace(values)

	e.ReloadFonts(ctx)
	if _, err := e.RecalculateDocument(ctx); err != nil {
		return keys, err
	}
	e.Redraw(nil)
	return keys, nil
}

// WatchSettings applies path once and then again whenever it changes, until
// ctx is done or the engine is closed. A top-level table dropped from the
// file between two applies is deleted from the settings. The containing
// directory is watched so editors that replace the file are picked up.
// Bursts of events are coalesced with Config.RecalcDebounce.
func (e *Engine) WatchSettings(ctx context.Context, path string) error {
	if e.isClosed() {
		return ErrClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	applied, err := e.applySettingsFile(ctx, abs, nil)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch settings %s: %w", abs, err)
	}

	var mu sync.Mutex
	reload := newDebouncer(e.cfg.RecalcDebounce.value(), func() {
		mu.Lock()
		defer mu.Unlock()
		var err error
		applied, err = e.applySettingsFile(ctx, abs, applied)
		if err != nil {
			e.logger.Error().Err(err).Str("path", abs).Msg("settings reload failed")
		}
	})

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		defer watcher.Close()
		defer reload.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					reload.Trigger()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Warn().Err(err).Str("path", abs).Msg("settings watcher error")
			}
		}
	}()
	return nil
}
